package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/samber/lo"
)

// MemoryStore implements OrderStore with in-memory storage
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order // orderID -> order
	lastID uint64
}

// NewMemoryStore creates a new in-memory order store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]domain.Order),
	}
}

// Put issues the next identifier and inserts the order under the same lock,
// so identifiers never collide and increase in issuance order.
func (s *MemoryStore) Put(_ context.Context, order domain.Order) (domain.Order, error) {
	if !order.Validate() {
		return domain.Order{}, domain.ErrInvalidOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	order.ID = strconv.FormatUint(s.lastID, 10)
	s.orders[order.ID] = order

	return order, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	if !exists {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := lo.Values(s.orders)
	if result == nil {
		result = make([]domain.Order, 0)
	}
	return result, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := lo.Filter(lo.Values(s.orders), func(order domain.Order, _ int) bool {
		return order.UserID == userID
	})
	if result == nil {
		result = make([]domain.Order, 0)
	}
	return result, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
