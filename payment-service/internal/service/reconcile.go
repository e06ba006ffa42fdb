package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/internal/gateway"
	"github.com/fjod/tradecart/payment-service/internal/repository"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/fjod/tradecart/pkg/userapi"
	"go.uber.org/zap"
)

// CallbackResult is what the webhook reports back to the gateway.
type CallbackResult struct {
	// Processed is false when the callback carried nothing to reconcile.
	Processed     bool
	State         string
	TransactionID string
}

type callbackRequest struct {
	Response string `json:"response"`
}

// HandleCallback reconciles a gateway callback. Only malformed input and a
// failed checksum are reported as errors; reconciliation failures are logged
// so the gateway is never asked to redeliver because of them.
func (s *PaymentService) HandleCallback(ctx context.Context, body []byte, xVerify string) (*CallbackResult, error) {
	var req callbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, ErrInvalidWebhookBody.Message)
	}
	if req.Response == "" {
		return &CallbackResult{}, nil
	}

	if s.verifyCallback {
		if err := s.gateway.VerifyCallback(req.Response, xVerify); err != nil {
			return nil, err
		}
	}

	env, err := gateway.DecodeCallback(req.Response)
	if err != nil {
		return nil, err
	}
	if !env.Usable() {
		return &CallbackResult{}, nil
	}

	if _, err := s.reconcile(ctx, env.Data); err != nil {
		logger.FromContext(ctx).Error("failed to reconcile callback",
			zap.String("merchant_transaction_id", env.Data.MerchantTransactionID),
			zap.Error(err))
	}
	return &CallbackResult{
		Processed:     true,
		State:         env.Data.State,
		TransactionID: env.Data.TransactionID,
	}, nil
}

// CheckStatus asks the gateway for a payment's state and applies it, for
// buyers whose callback never arrived.
func (s *PaymentService) CheckStatus(ctx context.Context, merchantTransactionID, userID string) (*domain.Payment, error) {
	payment, err := s.repo.GetByMerchantTransactionID(ctx, merchantTransactionID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrNotPaymentOwner
	}

	env, err := s.gateway.CheckStatus(ctx, merchantTransactionID)
	if err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.State == "" {
		return payment, nil
	}

	data := *env.Data
	data.MerchantTransactionID = merchantTransactionID
	updated, err := s.reconcile(ctx, &data)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return payment, nil
	}
	return updated, nil
}

// maxApplyAttempts bounds how often a state is re-applied after losing the
// compare-and-swap to another writer.
const maxApplyAttempts = 3

// reconcile collapses concurrent deliveries of the same state for a
// transaction into one application. Different states never share a flight.
func (s *PaymentService) reconcile(ctx context.Context, data *gateway.TransactionData) (*domain.Payment, error) {
	key := data.MerchantTransactionID + "|" + data.State
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.applyState(ctx, data)
	})
	if err != nil {
		return nil, err
	}
	p, _ := v.(*domain.Payment)
	return p, nil
}

func (s *PaymentService) applyState(ctx context.Context, data *gateway.TransactionData) (*domain.Payment, error) {
	log := logger.FromContext(ctx).With(zap.String("merchant_transaction_id", data.MerchantTransactionID))
	target := domain.MapProviderState(data.State)

	details, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal payment details: %w", err)
	}

	for attempt := 1; ; attempt++ {
		payment, err := s.repo.GetByMerchantTransactionID(ctx, data.MerchantTransactionID)
		if errors.Is(err, repository.ErrPaymentNotFound) {
			log.Warn("gateway reported unknown transaction", zap.String("state", data.State))
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if target == payment.Status {
			return payment, nil
		}

		tr, err := s.repo.Transition(ctx, payment.MerchantTransactionID, payment.Status, target, details)
		if errors.Is(err, repository.ErrStaleTransition) && attempt < maxApplyAttempts {
			log.Info("payment changed concurrently, re-reading", zap.String("target", string(target)))
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info("payment status changed",
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.Payment.Status)))
		if tr.FirstSuccess {
			s.onFirstSuccess(ctx, tr.Payment)
		}
		return tr.Payment, nil
	}
}

// onFirstSuccess marks the order paid and mails the buyer. Failures are logged
// and never undo the payment.
func (s *PaymentService) onFirstSuccess(ctx context.Context, p *domain.Payment) {
	log := logger.FromContext(ctx).With(
		zap.String("merchant_transaction_id", p.MerchantTransactionID),
		zap.String("order_id", p.OrderID))

	if err := s.markOrderPaid(ctx, p.OrderID); err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
	}

	profile, err := s.users.Lookup(ctx, p.UserID)
	if err != nil {
		log.Error("failed to look up buyer email", zap.String("user_id", p.UserID), zap.Error(err))
		return
	}
	if profile.Email == "" {
		log.Warn("buyer has no email, skipping payment confirmation", zap.String("user_id", p.UserID))
		return
	}
	if err := s.users.SendEmail(ctx, confirmationEmail(profile.Email, p)); err != nil {
		log.Error("failed to send payment confirmation", zap.Error(err))
	}
}

func (s *PaymentService) markOrderPaid(ctx context.Context, orderID string) error {
	token, err := s.tokens.Issue(orderID)
	if err != nil {
		return err
	}
	_, err = s.orders.MarkPaid(ctx, token)
	return err
}

func confirmationEmail(to string, p *domain.Payment) userapi.Email {
	return userapi.Email{
		To:      to,
		Subject: "Payment Confirmation for Order " + p.OrderID,
		HTML: fmt.Sprintf(`<p>Dear User,</p>
<p>Your payment of ₹%s for order <strong>%s</strong> has been successfully processed.</p>
<p>Thank you for your purchase!</p>
<p>You can view your order details in your account.</p>`, p.Amount.StringFixed(2), p.OrderID),
	}
}
