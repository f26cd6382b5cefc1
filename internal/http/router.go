package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultMaxRequestBodySize = 1 << 20 // 1MB

type RouterConfig struct {
	ServiceName        string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter mounts the order API and health check behind the common
// middleware stack, instrumented with OpenTelemetry.
func NewRouter(orders *OrdersHandler, log *logger.Logger, cfg RouterConfig) http.Handler {
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = DefaultMaxRequestBodySize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", orders.CreateOrder)
		r.Get("/", orders.ListOrders)
		r.Get("/user/{userId}", orders.ListOrdersByUser)
		r.Get("/{id}", orders.GetOrder)
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
