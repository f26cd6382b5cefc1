package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/order-service/internal/domain"
)

type ProductCache interface {
	Get(ctx context.Context, productID string) (domain.ProductRecord, error)
	Set(ctx context.Context, productID string, record domain.ProductRecord) error
}

var ErrCacheMiss = errors.New("cache miss")
