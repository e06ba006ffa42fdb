package http

import (
	"context"
	"net/http"

	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/orders-service/pkg/orderapi"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	CreateOrder(ctx context.Context, merchantID, authorization string, shipping domain.ShippingDetails) (*domain.Order, error)
	ListOrders(ctx context.Context, merchantID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, id, merchantID string) (*domain.Order, error)
	GetOrderAdmin(ctx context.Context, id string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id, merchantID string) error
	PatchOrder(ctx context.Context, id, merchantID string, fields map[string]any) (*domain.Order, error)
	MarkPaid(ctx context.Context, token string) (*domain.Order, error)
}

var errMissingToken = apperr.New(apperr.Validation, "token is required")

type OrderHandler struct {
	service OrderService
}

func NewOrderHandler(s OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type deleteResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

func respondOrder(w http.ResponseWriter, status int, msg string, o *domain.Order) {
	httpx.RespondJSON(w, status, orderapi.Envelope[orderapi.Order]{Message: msg, Payload: toWire(o)})
}

// POST /order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var shipping domain.ShippingDetails
	if err := httpx.DecodeJSON(r, &shipping); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), id.UserID, id.Authorization, shipping)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	respondOrder(w, http.StatusCreated, "Order created successfully", order)
}

// GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	orders, err := h.service.ListOrders(r.Context(), id.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, orderapi.Envelope[[]orderapi.Order]{
		Message: "Orders fetched successfully",
		Payload: toWireList(orders),
	})
}

// GET /orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "orderId"), id.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	respondOrder(w, http.StatusOK, "Order fetched successfully", order)
}

// GET /admin/orders/{orderId}
func (h *OrderHandler) GetOrderAdmin(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrderAdmin(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	respondOrder(w, http.StatusOK, "Order fetched successfully", order)
}

// PATCH /orders/{orderId}
func (h *OrderHandler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var fields map[string]any
	if err := httpx.DecodeJSON(r, &fields); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.service.PatchOrder(r.Context(), chi.URLParam(r, "orderId"), id.UserID, fields)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	respondOrder(w, http.StatusOK, "Order updated successfully", order)
}

// DELETE /orders/{orderId}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	orderID := chi.URLParam(r, "orderId")
	if err := h.service.DeleteOrder(r.Context(), orderID, id.UserID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, deleteResponse{Message: "Order successfully deleted", OrderID: orderID})
}

// PUT /payment-status
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req orderapi.PaymentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, r, errMissingToken)
		return
	}

	order, err := h.service.MarkPaid(r.Context(), req.Token)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	respondOrder(w, http.StatusOK, "Payment status updated successfully", order)
}
