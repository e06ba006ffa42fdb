package service

import (
	"context"

	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

func (s *OrderService) ListOrders(ctx context.Context, merchantID string) ([]*domain.Order, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// GetOrder returns the order only to its owner.
func (s *OrderService) GetOrder(ctx context.Context, id, merchantID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.MerchantID != merchantID {
		logger.FromContext(ctx).Warn("order ownership mismatch",
			zap.String("order_id", id),
			zap.String("merchant_id", merchantID),
		)
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// GetOrderAdmin skips the ownership check. Callers must have verified the
// admin role.
func (s *OrderService) GetOrderAdmin(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id, merchantID string) error {
	if _, err := s.GetOrder(ctx, id, merchantID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, merchantID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("order deleted", zap.String("order_id", id))
	return nil
}

// PatchOrder merges the patchable subset of fields into the order.
func (s *OrderService) PatchOrder(ctx context.Context, id, merchantID string, fields map[string]any) (*domain.Order, error) {
	patch, err := domain.NewPatch(fields)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id, merchantID)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return order, nil
	}
	return s.repo.Patch(ctx, id, merchantID, patch)
}

// MarkPaid marks the order named by a payment-status capability token as
// paid. Repeated calls leave the first paid date in place.
func (s *OrderService) MarkPaid(ctx context.Context, token string) (*domain.Order, error) {
	orderID, err := s.capability.Verify(token)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.MarkPaid(ctx, orderID, s.now())
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("order marked paid", zap.String("order_id", orderID))
	return order, nil
}
