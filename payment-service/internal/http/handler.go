package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/internal/service"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

const maxWebhookBytes = 1 << 20

type PaymentService interface {
	Initiate(ctx context.Context, orderID, userID, authorization string) (string, error)
	HandleCallback(ctx context.Context, body []byte, xVerify string) (*service.CallbackResult, error)
	CheckStatus(ctx context.Context, merchantTransactionID, userID string) (*domain.Payment, error)
}

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(s PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type payResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

type webhookResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	PaymentStatus string `json:"payment_status,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type statusResponse struct {
	MerchantTransactionID string          `json:"merchantTransactionId"`
	OrderID               string          `json:"orderId"`
	Status                string          `json:"status"`
	Amount                string          `json:"amount"`
	PaymentDetails        json.RawMessage `json:"paymentDetails,omitempty"`
	DateAdded             time.Time       `json:"dateAdded"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// POST /pay/{orderId}
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	url, err := h.service.Initiate(r.Context(), chi.URLParam(r, "orderId"), id.UserID, id.Authorization)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, payResponse{RedirectURL: url})
}

// POST /webhook/phonepe
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		httpx.WriteError(w, r, apperr.Wrap(apperr.Validation, err, service.ErrInvalidWebhookBody.Message))
		return
	}

	res, err := h.service.HandleCallback(r.Context(), body, r.Header.Get("X-VERIFY"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if !res.Processed {
		httpx.RespondJSON(w, http.StatusOK, webhookResponse{Status: "ignored", Message: "Webhook received, nothing to reconcile"})
		return
	}
	httpx.RespondJSON(w, http.StatusOK, webhookResponse{
		Status:        "success",
		Message:       "Payment processed",
		PaymentStatus: res.State,
		TransactionID: res.TransactionID,
	})
}

// GET /status/{merchantTransactionId}
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	p, err := h.service.CheckStatus(r.Context(), chi.URLParam(r, "merchantTransactionId"), id.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, statusResponse{
		MerchantTransactionID: p.MerchantTransactionID,
		OrderID:               p.OrderID,
		Status:                string(p.Status),
		Amount:                p.Amount.StringFixed(2),
		PaymentDetails:        p.PaymentDetails,
		DateAdded:             p.DateAdded,
		UpdatedAt:             p.UpdatedAt,
	})
}
