package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/internal/service"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// OrderService is the part of service.OrderService the handlers call.
type OrderService interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders OrderService
	log    *logger.Logger
}

func NewOrdersHandler(orders OrderService, log *logger.Logger) *OrdersHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrdersHandler{
		orders: orders,
		log:    log,
	}
}

type CreateOrderRequestDTO struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderResponseDTO struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	ProductID  string      `json:"productId"`
	Quantity   int         `json:"quantity"`
	TotalPrice json.Number `json:"totalPrice"`
	Status     string      `json:"status"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

func convertOrder(o domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:         o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		TotalPrice: json.Number(o.TotalPrice.String()),
		Status:     o.Status.String(),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func convertOrders(orders []domain.Order) []OrderResponseDTO {
	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	return dtos
}

// POST /api/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/orders/"+order.ID)
	respondJSON(w, http.StatusCreated, convertOrder(order))
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// GET /api/orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}

// GET /api/orders/user/{userId}
func (h *OrdersHandler) ListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user id is required")
		return
	}

	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrders(orders))
}

func (h *OrdersHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, "invalid_order", "userId, productId and a positive quantity are required")
	case errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, domain.ErrDownstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "a dependent service is unavailable, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
