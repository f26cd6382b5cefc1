package domain

import "errors"

var (
	ErrInvalidOrder      = errors.New("invalid order data")
	ErrUserNotFound      = errors.New("user not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal transition of order status")

	// ErrDownstreamUnavailable means a verifier could not get an answer from
	// its service: timeout, network failure, unexpected status, malformed body
	// or an open circuit breaker.
	ErrDownstreamUnavailable = errors.New("downstream service unavailable")

	// ErrPricingContractViolation means the product catalog answered but the
	// record has no usable numeric price.
	ErrPricingContractViolation = errors.New("product record has no valid price")

	ErrNotificationFailed = errors.New("notification failed")
)
