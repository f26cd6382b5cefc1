package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single-product purchase. It has no ID and status pending until
// the store persists it.
type Order struct {
	ID         string
	UserID     string
	ProductID  string
	Quantity   int
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewOrder(userID, productID string, quantity int, now time.Time) Order {
	return Order{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate reports whether the caller-supplied fields are usable: both
// references non-empty and a positive quantity. Whitespace ids are left for
// the owning services to judge.
func (o Order) Validate() bool {
	return o.UserID != "" && o.ProductID != "" && o.Quantity > 0
}

// Confirm prices the order and moves it from pending to confirmed.
func (o *Order) Confirm(total decimal.Decimal, now time.Time) error {
	if !CanTransitionTo(o.Status, OrderStatusConfirmed) {
		return ErrIllegalTransition
	}
	o.TotalPrice = total
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = now
	return nil
}
