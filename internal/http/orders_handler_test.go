package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/internal/service"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock ---

type OrderServiceMock struct {
	order   domain.Order
	orders  []domain.Order
	err     error
	gotReq  service.CreateOrderRequest
	gotID   string
	gotUser string
}

func (m *OrderServiceMock) CreateOrder(_ context.Context, req service.CreateOrderRequest) (domain.Order, error) {
	m.gotReq = req
	return m.order, m.err
}

func (m *OrderServiceMock) GetOrder(_ context.Context, id string) (domain.Order, error) {
	m.gotID = id
	return m.order, m.err
}

func (m *OrderServiceMock) ListOrders(context.Context) ([]domain.Order, error) {
	return m.orders, m.err
}

func (m *OrderServiceMock) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.gotUser = userID
	return m.orders, m.err
}

// --- helper ---

var createdAt = time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)

func sampleOrder(id string) domain.Order {
	o := domain.NewOrder("u1", "p1", 3, createdAt)
	o.ID = id
	_ = o.Confirm(decimal.RequireFromString("28.5"), createdAt)
	return o
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- CreateOrder tests ---

func TestCreateOrder_Success(t *testing.T) {
	mock := &OrderServiceMock{order: sampleOrder("1")}
	handler := NewOrdersHandler(mock, logger.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"userId":"u1","productId":"p1","quantity":3}`))

	handler.CreateOrder(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/api/orders/1", rec.Header().Get("Location"))
	assert.Equal(t, service.CreateOrderRequest{UserID: "u1", ProductID: "p1", Quantity: 3}, mock.gotReq)

	assert.JSONEq(t, `{
		"id": "1",
		"userId": "u1",
		"productId": "p1",
		"quantity": 3,
		"totalPrice": 28.5,
		"status": "confirmed",
		"createdAt": "2026-02-12T10:00:00Z",
		"updatedAt": "2026-02-12T10:00:00Z"
	}`, rec.Body.String())
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `userId=u1`},
		{name: "empty body", body: ``},
		{name: "fractional quantity", body: `{"userId":"u1","productId":"p1","quantity":1.5}`},
		{name: "quantity as string", body: `{"userId":"u1","productId":"p1","quantity":"3"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &OrderServiceMock{}
			handler := NewOrdersHandler(mock, logger.NewNop())

			rec := httptest.NewRecorder()
			handler.CreateOrder(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decodeError(t, rec).Code)
			assert.Equal(t, service.CreateOrderRequest{}, mock.gotReq, "service must not be called")
		})
	}
}

func TestCreateOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid order", domain.ErrInvalidOrder, http.StatusBadRequest, "invalid_order"},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
		{"downstream unavailable", fmt.Errorf("verify user: %w: %w", domain.ErrDownstreamUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable, "service_unavailable"},
		{"request deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"pricing contract violation", fmt.Errorf("price: %w", domain.ErrPricingContractViolation), http.StatusInternalServerError, "internal_error"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrdersHandler(&OrderServiceMock{err: tt.err}, logger.NewNop())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"userId":"u1","productId":"p1","quantity":1}`))
			handler.CreateOrder(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

// --- GetOrder tests ---

func TestGetOrder_Success(t *testing.T) {
	mock := &OrderServiceMock{order: sampleOrder("42")}
	handler := NewOrdersHandler(mock, nil)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/orders/42", nil), "id", "42")
	handler.GetOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", mock.gotID)

	var resp OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "42", resp.ID)
	assert.Equal(t, json.Number("28.5"), resp.TotalPrice)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{err: domain.ErrOrderNotFound}, nil)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/orders/9", nil), "id", "9")
	handler.GetOrder(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"order not found","code":"not_found"}`, rec.Body.String())
}

func TestGetOrder_MissingID(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{}, nil)

	rec := httptest.NewRecorder()
	handler.GetOrder(rec, httptest.NewRequest(http.MethodGet, "/api/orders/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_order_id", decodeError(t, rec).Code)
}

// --- List tests ---

func TestListOrders_EmptyIsArray(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{orders: nil}, nil)

	rec := httptest.NewRecorder()
	handler.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListOrders_Success(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{orders: []domain.Order{sampleOrder("1"), sampleOrder("2")}}, nil)

	rec := httptest.NewRecorder()
	handler.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "1", resp[0].ID)
	assert.Equal(t, "2", resp[1].ID)
}

func TestListOrdersByUser(t *testing.T) {
	mock := &OrderServiceMock{orders: []domain.Order{sampleOrder("3")}}
	handler := NewOrdersHandler(mock, nil)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/orders/user/u1", nil), "userId", "u1")
	handler.ListOrdersByUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", mock.gotUser)

	var resp []OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "u1", resp[0].UserID)
}
