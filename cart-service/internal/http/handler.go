package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

// CartService is the subset of the cart service the handlers call.
type CartService interface {
	GetCart(ctx context.Context, userID string) (cartapi.Cart, error)
	AddItem(ctx context.Context, userID, productID string, req cartapi.ItemRequest) (cartapi.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, productID string, req cartapi.ItemRequest) (*cartapi.CartLine, error)
	RemoveItem(ctx context.Context, userID, productID string, variantIndex *int, source string) error
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	service CartService
}

func NewCartHandler(s CartService) *CartHandler {
	return &CartHandler{service: s}
}

type itemResponse struct {
	Message string            `json:"message"`
	Item    *cartapi.CartLine `json:"item,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// GET /
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	cart, err := h.service.GetCart(r.Context(), id.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if cart == nil {
		cart = cartapi.Cart{}
	}
	httpx.RespondJSON(w, http.StatusOK, cartapi.CartResponse{Items: cart})
}

// POST /items/{productId}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var req cartapi.ItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	line, err := h.service.AddItem(r.Context(), id.UserID, chi.URLParam(r, "productId"), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, itemResponse{Message: "Item added to cart", Item: &line})
}

// PATCH /items/{productId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var req cartapi.ItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	line, err := h.service.UpdateQuantity(r.Context(), id.UserID, chi.URLParam(r, "productId"), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if line == nil {
		httpx.RespondJSON(w, http.StatusOK, itemResponse{Message: "Item removed from cart"})
		return
	}
	httpx.RespondJSON(w, http.StatusOK, itemResponse{Message: "Cart updated", Item: line})
}

// DELETE /items/{productId}?variantIndex=&source=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	q := r.URL.Query()

	var variantIndex *int
	if raw := q.Get("variantIndex"); raw != "" && raw != "null" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, r, apperr.New(apperr.Validation, "variantIndex must be an integer"))
			return
		}
		variantIndex = &v
	}

	if err := h.service.RemoveItem(r.Context(), id.UserID, chi.URLParam(r, "productId"), variantIndex, q.Get("source")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, messageResponse{Message: "Item removed from cart"})
}

// DELETE /
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	if err := h.service.ClearCart(r.Context(), id.UserID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, messageResponse{Message: "Cart cleared"})
}
