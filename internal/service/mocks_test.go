package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/order-service/internal/domain"
)

// MockUserVerifier implements UserVerifier for testing
type MockUserVerifier struct {
	mu    sync.Mutex
	Err   error
	Calls []string
}

func (m *MockUserVerifier) VerifyUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, userID)
	return m.Err
}

// MockProductCatalog implements ProductCatalog for testing
type MockProductCatalog struct {
	mu       sync.Mutex
	Products map[string]domain.ProductRecord
	Err      error
	Calls    []string
}

func (m *MockProductCatalog) GetProduct(_ context.Context, productID string) (domain.ProductRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, productID)
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.Products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return rec, nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mu       sync.Mutex
	Err      error
	Notified []domain.Order
	CtxErr   error
}

func (m *MockNotifier) Notify(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notified = append(m.Notified, order)
	m.CtxErr = ctx.Err()
	return m.Err
}

// MockOrderStore implements store.OrderStore with a failing Put
type MockOrderStore struct {
	PutErr error
}

func (m *MockOrderStore) Put(context.Context, domain.Order) (domain.Order, error) {
	return domain.Order{}, m.PutErr
}

func (m *MockOrderStore) Get(context.Context, string) (domain.Order, error) {
	return domain.Order{}, domain.ErrOrderNotFound
}

func (m *MockOrderStore) List(context.Context) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (m *MockOrderStore) ListByUser(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (m *MockOrderStore) Len() int {
	return 0
}
