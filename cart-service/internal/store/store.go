package store

import (
	"context"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/pkg/apperr"
)

var (
	ErrProductNotInCart = apperr.New(apperr.NotFound, "product not found in cart")
	ErrLineNotFound     = apperr.New(apperr.NotFound, "item not found in cart")
	ErrNegativeQuantity = apperr.New(apperr.Validation, "quantity cannot be negative")
	ErrInvalidQuantity  = apperr.New(apperr.Validation, "quantity must be greater than 0")
	ErrMissingQuantity  = apperr.New(apperr.Validation, "quantity is required")
	ErrConflict         = apperr.New(apperr.Conflict, "cart was modified concurrently, please retry")
)

// CartStore keeps one hash per user: field = product id, value = JSON list of lines.
type CartStore interface {
	Get(ctx context.Context, userID string) (cartapi.Cart, error)
	Add(ctx context.Context, userID string, line cartapi.CartLine) (cartapi.CartLine, error)
	// Update sets the quantity of an existing line. Zero removes the line and
	// the returned line is nil.
	Update(ctx context.Context, userID, productID string, key cartapi.Key, quantity int) (*cartapi.CartLine, error)
	Remove(ctx context.Context, userID, productID string, key cartapi.Key) error
	Clear(ctx context.Context, userID string) error
}
