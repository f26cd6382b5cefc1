package store

import (
	"context"

	"github.com/fjod/go_cart/order-service/internal/domain"
)

// OrderStore defines the storage operations for persisted orders
type OrderStore interface {
	// Put assigns a fresh identifier to order and inserts it.
	// Returns domain.ErrInvalidOrder if the order fails validation.
	Put(ctx context.Context, order domain.Order) (domain.Order, error)

	// Get returns the order with the given identifier or domain.ErrOrderNotFound.
	Get(ctx context.Context, id string) (domain.Order, error)

	// List returns a snapshot of all stored orders in no particular order.
	List(ctx context.Context) ([]domain.Order, error)

	// ListByUser returns the stored orders placed by userID.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// Len returns the number of stored orders
	Len() int
}
