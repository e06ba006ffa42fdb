package repository

import (
	"context"
	"time"

	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/pkg/apperr"
)

var (
	ErrOrderNotFound  = apperr.New(apperr.NotFound, "order not found")
	ErrInvalidOrderID = apperr.New(apperr.Validation, "invalid order id")
)

// OrderRepository persists orders. Lookups by id report ErrInvalidOrderID for
// ids that can never exist.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]*domain.Order, error)
	Delete(ctx context.Context, id, merchantID string) error
	Patch(ctx context.Context, id, merchantID string, patch domain.Patch) (*domain.Order, error)
	// MarkPaid moves the order to PD once. Calling it on a paid order returns
	// the order unchanged.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.Order, error)
}
