package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/pkg/circuitbreaker"
	"github.com/fjod/go_cart/order-service/pkg/logger"
)

type UserClient struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
	breaker    *circuitbreaker.Breaker[struct{}]
	log        *logger.Logger
}

func NewUserClient(baseURL string, opts Options) *UserClient {
	opts = opts.withDefaults()
	return &UserClient{
		baseURL:    baseURL,
		httpClient: opts.HTTPClient,
		opts:       opts,
		breaker: circuitbreaker.New[struct{}](opts.breakerSettings("user-service", func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrUserNotFound)
		})),
		log: opts.Logger,
	}
}

// VerifyUser returns nil when the user directory knows userID,
// domain.ErrUserNotFound on 404 and a wrapped domain.ErrDownstreamUnavailable
// for every other failure. A caller that cancels or times out gets its own
// context error back.
func (c *UserClient) VerifyUser(ctx context.Context, userID string) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.fetchUser(ctx, userID)
	})
	if err == nil || errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if errors.Is(err, errCallerGone) {
		return fmt.Errorf("verify user %q: %w", userID, ctx.Err())
	}

	c.log.Error(ctx, "error verifying user", "user_id", userID, "error", err)
	return fmt.Errorf("verify user %q: %w: %w", userID, domain.ErrDownstreamUnavailable, err)
}

func (c *UserClient) fetchUser(ctx context.Context, userID string) error {
	userCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := newRequest(userCtx, http.MethodGet, resourceURL(c.baseURL, "api", "users", userID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return callerGone(ctx)
		}
		return fmt.Errorf("get user: %w", err)
	}
	body, err := readBody(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrUserNotFound
	case !isSuccess(resp.StatusCode):
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	case err != nil:
		return fmt.Errorf("read user response: %w", err)
	}
	return nil
}
