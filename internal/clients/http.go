// Package clients holds the adapters for the services an order depends on:
// the user directory, the product catalog and the notification channels.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_cart/order-service/pkg/circuitbreaker"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 5 * time.Second

	// responses are only inspected for status and small JSON bodies
	maxBodyBytes = 1 << 20
)

// Options are shared by every HTTP client in this package.
type Options struct {
	HTTPClient  *http.Client
	Timeout     time.Duration // per call
	MaxFailures uint32
	OpenTimeout time.Duration
	Logger      *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = NewHTTPClient()
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	return o
}

func (o Options) breakerSettings(name string, isSuccessful func(error) bool) circuitbreaker.Settings {
	log := o.Logger
	return circuitbreaker.Settings{
		Name:         name,
		MaxFailures:  o.MaxFailures,
		OpenTimeout:  o.OpenTimeout,
		IsSuccessful: isSuccessful,
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name, from, to string) {
			log.Warn(context.Background(), "circuit breaker state changed", "breaker", name, "from", from, "to", to)
		},
	}
}

// errCallerGone marks a call whose caller canceled or ran out of time. It says
// nothing about the downstream, so breakers ignore it.
var errCallerGone = errors.New("caller gave up")

func callerGone(ctx context.Context) error {
	return fmt.Errorf("%w: %w", errCallerGone, ctx.Err())
}

// NewHTTPClient returns a client whose transport propagates trace context.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// StatusError is an unexpected HTTP status from a downstream service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func resourceURL(baseURL string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(escaped, "/")
}

func newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	return req, nil
}

// readBody reads at most maxBodyBytes and closes the body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
