package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort               string
	ServiceName            string
	LogLevel               string
	UserServiceURL         string
	ProductServiceURL      string
	NotificationServiceURL string
	RequestTimeout         time.Duration // per downstream call
	HandlerTimeout         time.Duration // whole inbound request
	ShutdownTimeout        time.Duration
	MaxRequestBodySize     int64

	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Load reads the configuration from the environment. Unset variables take
// their defaults; malformed values are errors.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8003"),
		ServiceName:        getEnv("SERVICE_NAME", "order-service"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "order-events"),
		MaxRequestBodySize: 1 << 20, // 1MB
	}

	var err error
	if cfg.UserServiceURL, err = baseURL("USER_SERVICE_URL", "http://user-service:8001"); err != nil {
		return nil, err
	}
	if cfg.ProductServiceURL, err = baseURL("PRODUCT_SERVICE_URL", "http://product-service:8002"); err != nil {
		return nil, err
	}
	if cfg.NotificationServiceURL, err = baseURL("NOTIFICATION_SERVICE_URL", "http://notification-service:8004"); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"REQUEST_TIMEOUT", 5 * time.Second, &cfg.RequestTimeout},
		{"HANDLER_TIMEOUT", 30 * time.Second, &cfg.HandlerTimeout},
		{"SHUTDOWN_TIMEOUT", 10 * time.Second, &cfg.ShutdownTimeout},
		{"PRODUCT_CACHE_TTL", 30 * time.Second, &cfg.ProductCacheTTL},
		{"BREAKER_OPEN_TIMEOUT", 30 * time.Second, &cfg.BreakerOpenTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	maxFailures, err := strconv.ParseUint(getEnv("BREAKER_MAX_FAILURES", "5"), 10, 32)
	if err != nil || maxFailures == 0 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES: must be a positive integer")
	}
	cfg.BreakerMaxFailures = uint32(maxFailures)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, raw)
	}
	return d, nil
}

// baseURL reads an absolute http(s) URL and drops trailing slashes so paths
// can be appended directly.
func baseURL(key, defaultValue string) (string, error) {
	raw := getEnv(key, defaultValue)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%s: %q is not an absolute http(s) URL", key, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
