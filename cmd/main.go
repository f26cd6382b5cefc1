package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/order-service/internal/cache"
	"github.com/fjod/go_cart/order-service/internal/clients"
	"github.com/fjod/go_cart/order-service/internal/clock"
	"github.com/fjod/go_cart/order-service/internal/config"
	h "github.com/fjod/go_cart/order-service/internal/http"
	"github.com/fjod/go_cart/order-service/internal/service"
	"github.com/fjod/go_cart/order-service/internal/store"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	lg := logger.New(os.Stdout, level, cfg.ServiceName)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()

	// Tracing: spans are created and propagated to downstream services;
	// exporting is left to the deployment.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			lg.Warn(ctx, "tracer provider shutdown failed", "error", err)
		}
	}()

	opts := clients.Options{
		HTTPClient:  clients.NewHTTPClient(),
		Timeout:     cfg.RequestTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
		Logger:      lg,
	}

	// Optional product cache
	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// the cache is an optimisation; run without it
			lg.Warn(ctx, "redis ping failed, product cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			productCache = cache.NewRedisCache(redisClient, cfg.ProductCacheTTL)
			lg.Info(ctx, "product cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ProductCacheTTL.String())
		}
	}

	notifiers := clients.MultiNotifier{clients.NewHTTPNotifier(cfg.NotificationServiceURL, opts)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := clients.NewKafkaPublisher(cfg.KafkaTopic, cfg.RequestTimeout, cfg.KafkaBrokers...)
		defer func() {
			if err := publisher.Close(); err != nil {
				lg.Warn(ctx, "kafka publisher close failed", "error", err)
			}
		}()
		notifiers = append(notifiers, publisher)
		lg.Info(ctx, "order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	orderService := service.NewOrderService(
		clients.NewUserClient(cfg.UserServiceURL, opts),
		clients.NewProductClient(cfg.ProductServiceURL, productCache, opts),
		notifiers,
		store.NewMemoryStore(),
		clock.NewSystem(),
		lg,
	)

	router := h.NewRouter(h.NewOrdersHandler(orderService, lg), lg, h.RouterConfig{
		ServiceName:        cfg.ServiceName,
		RequestTimeout:     cfg.HandlerTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HandlerTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info(ctx, "order service starting", "port", cfg.HTTPPort,
			"user_service", cfg.UserServiceURL,
			"product_service", cfg.ProductServiceURL,
			"notification_service", cfg.NotificationServiceURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server forced to shutdown", "error", err)
		return
	}

	lg.Info(ctx, "server exited")
}
