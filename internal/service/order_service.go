package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/order-service/internal/clock"
	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/internal/store"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"github.com/shopspring/decimal"
)

// UserVerifier confirms that a user exists.
type UserVerifier interface {
	VerifyUser(ctx context.Context, userID string) error
}

// ProductCatalog looks up a product record carrying its unit price.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (domain.ProductRecord, error)
}

type Notifier interface {
	Notify(ctx context.Context, order domain.Order) error
}

type CreateOrderRequest struct {
	UserID    string
	ProductID string
	Quantity  int
}

type OrderService struct {
	users    UserVerifier
	products ProductCatalog
	notifier Notifier // optional
	store    store.OrderStore
	clock    clock.Clock
	log      *logger.Logger
}

func NewOrderService(
	users UserVerifier,
	products ProductCatalog,
	notifier Notifier,
	orders store.OrderStore,
	clk clock.Clock,
	log *logger.Logger,
) *OrderService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderService{
		users:    users,
		products: products,
		notifier: notifier,
		store:    orders,
		clock:    clk,
		log:      log,
	}
}

// CreateOrder validates the request, confirms the user and the product with
// their owning services, prices the order and stores it. Nothing is stored
// unless every step before persistence succeeds. The confirmation
// notification is best effort: its failure is logged and the stored order is
// still returned.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	order := domain.NewOrder(req.UserID, req.ProductID, req.Quantity, s.clock.Now())
	log := s.log.With("user_id", order.UserID, "product_id", order.ProductID, "quantity", order.Quantity)

	if !order.Validate() {
		log.Debug(ctx, "order rejected", "reason", "validation")
		return domain.Order{}, domain.ErrInvalidOrder
	}
	log.Debug(ctx, "order validated")

	if err := s.users.VerifyUser(ctx, order.UserID); err != nil {
		return domain.Order{}, err
	}
	log.Debug(ctx, "user verified")

	product, err := s.products.GetProduct(ctx, order.ProductID)
	if err != nil {
		return domain.Order{}, err
	}
	log.Debug(ctx, "product verified")

	unitPrice, err := product.UnitPrice()
	if err != nil {
		log.Error(ctx, "product record has no usable price", "error", err)
		return domain.Order{}, fmt.Errorf("price product %q: %w", order.ProductID, err)
	}
	total := unitPrice.Mul(decimal.NewFromInt(int64(order.Quantity)))
	log.Debug(ctx, "order priced", "unit_price", unitPrice.String(), "total_price", total.String())

	if err := order.Confirm(total, s.clock.Now()); err != nil {
		return domain.Order{}, fmt.Errorf("confirm order: %w", err)
	}

	// the order is committed from here on; a caller that went away must not
	// leave it half processed
	persistCtx := context.WithoutCancel(ctx)

	stored, err := s.store.Put(persistCtx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("store order: %w", err)
	}
	log.Info(ctx, "order created", "order_id", stored.ID, "total_price", stored.TotalPrice.String())

	s.notify(persistCtx, stored)

	return stored, nil
}

func (s *OrderService) notify(ctx context.Context, order domain.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, order); err != nil {
		s.log.Warn(ctx, "order confirmation notification failed",
			"order_id", order.ID, "user_id", order.UserID, "error", err)
		return
	}
	s.log.Debug(ctx, "order confirmation sent", "order_id", order.ID)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("get order %q: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.store.List(ctx)
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.ListByUser(ctx, userID)
}
