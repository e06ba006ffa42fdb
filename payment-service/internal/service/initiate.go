package service

import (
	"context"
	"fmt"

	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/internal/gateway"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

// Initiate starts a gateway checkout for an order the caller owns and records
// the pending payment. It returns the URL the buyer is redirected to.
func (s *PaymentService) Initiate(ctx context.Context, orderID, userID, authorization string) (string, error) {
	log := logger.FromContext(ctx).With(zap.String("order_id", orderID))

	order, err := s.orders.GetOrder(ctx, orderID, authorization)
	if err != nil {
		return "", err
	}
	if order.MerchantID != userID {
		log.Warn("order ownership mismatch", zap.String("merchant_id", order.MerchantID), zap.String("user_id", userID))
		return "", ErrNotOrderOwner
	}
	if !order.AwaitingPayment() {
		return "", apperr.Wrap(apperr.InvalidState, fmt.Errorf("pStatus %q", order.PaymentStatus), ErrOrderNotPayable.Message)
	}
	if !order.TotalAmount.IsPositive() {
		return "", ErrInvalidAmount
	}

	profile, err := s.users.Me(ctx, authorization)
	if err != nil {
		return "", err
	}
	phone := order.ShippingPhoneNumber
	if phone == "" {
		phone = profile.MobileNumber
	}
	if phone == "" || profile.Email == "" {
		return "", ErrMissingContactInfo
	}

	res, err := s.gateway.Pay(ctx, gateway.PayRequest{
		MerchantTransactionID: gateway.NewMerchantTransactionID(orderID),
		OrderID:               orderID,
		UserID:                userID,
		Amount:                order.TotalAmount,
		MobileNumber:          phone,
		Email:                 profile.Email,
	})
	if err != nil {
		return "", err
	}

	payment := &domain.Payment{
		MerchantTransactionID: res.MerchantTransactionID,
		UserID:                userID,
		OrderID:               orderID,
		Amount:                order.TotalAmount,
		Status:                domain.StatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return "", fmt.Errorf("record payment %s: %w", res.MerchantTransactionID, err)
	}

	log.Info("payment initiated",
		zap.String("merchant_transaction_id", res.MerchantTransactionID),
		zap.String("amount", order.TotalAmount.StringFixed(2)))
	return res.RedirectURL, nil
}
