package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/pkg/circuitbreaker"
)

const NotificationTypeOrderConfirmation = "order_confirmation"

// Notifier delivers an order confirmation on one channel.
type Notifier interface {
	Notify(ctx context.Context, order domain.Order) error
}

type notificationRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func ConfirmationMessage(orderID string) string {
	return fmt.Sprintf("Your order #%s has been confirmed", orderID)
}

// HTTPNotifier posts confirmations to the notification service.
type HTTPNotifier struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
	breaker    *circuitbreaker.Breaker[struct{}]
}

func NewHTTPNotifier(baseURL string, opts Options) *HTTPNotifier {
	opts = opts.withDefaults()
	return &HTTPNotifier{
		baseURL:    baseURL,
		httpClient: opts.HTTPClient,
		opts:       opts,
		breaker:    circuitbreaker.New[struct{}](opts.breakerSettings("notification-service", nil)),
	}
}

// Notify returns a wrapped domain.ErrNotificationFailed on any failure.
func (n *HTTPNotifier) Notify(ctx context.Context, order domain.Order) error {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.send(ctx, order)
	})
	if err != nil {
		return fmt.Errorf("%w: order %s: %w", domain.ErrNotificationFailed, order.ID, err)
	}
	return nil
}

func (n *HTTPNotifier) send(ctx context.Context, order domain.Order) error {
	notifyCtx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	payload := notificationRequest{
		UserID:  order.UserID,
		Message: ConfirmationMessage(order.ID),
		Type:    NotificationTypeOrderConfirmation,
	}
	req, err := newRequest(notifyCtx, http.MethodPost, resourceURL(n.baseURL, "api", "notifications", "send"), payload)
	if err != nil {
		return err
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	body, _ := readBody(resp)
	if !isSuccess(resp.StatusCode) {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// MultiNotifier sends to every channel and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, order domain.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
