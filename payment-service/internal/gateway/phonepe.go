// Package gateway talks to the PhonePe payment gateway.
package gateway

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/upstream"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	payPath    = "/pg/v1/pay"
	statusPath = "/pg/v1/status"

	headerVerify     = "X-VERIFY"
	headerMerchantID = "X-MERCHANT-ID"
)

var (
	ErrBadGatewayResponse = apperr.New(apperr.UpstreamUnavailable, "bad response from payment gateway")
	ErrInvalidCallback    = apperr.New(apperr.Validation, "invalid callback payload")
	ErrChecksumMismatch   = apperr.New(apperr.Unauthorized, "callback checksum mismatch")
)

type Config struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	RedirectURL string
	CallbackURL string
}

type PhonePe struct {
	api *upstream.Client
	cfg Config
}

func NewPhonePe(api *upstream.Client, cfg Config) *PhonePe {
	return &PhonePe{api: api, cfg: cfg}
}

// PayRequest describes one checkout attempt.
type PayRequest struct {
	MerchantTransactionID string
	OrderID               string
	UserID                string
	Amount                decimal.Decimal
	MobileNumber          string
	Email                 string
}

type payPayload struct {
	Amount                int64             `json:"amount"`
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MerchantOrderID       string            `json:"merchantOrderId"`
	MobileNumber          string            `json:"mobileNumber"`
	Email                 string            `json:"email"`
	Message               string            `json:"message"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

type envelopeRequest struct {
	Request string `json:"request"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		InstrumentResponse    struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// PayResult is what the buyer needs to complete payment.
type PayResult struct {
	MerchantTransactionID string
	RedirectURL           string
}

// NewMerchantTransactionID builds MT-<first 8 of orderID>-<first 8 of a uuid>.
func NewMerchantTransactionID(orderID string) string {
	prefix := orderID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("MT-%s-%s", prefix, uuid.NewString()[:8])
}

// ToPaise converts a rupee amount to integer paise.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Pay starts a PAY_PAGE transaction and returns the redirect URL.
func (p *PhonePe) Pay(ctx context.Context, req PayRequest) (*PayResult, error) {
	payload := payPayload{
		Amount:                ToPaise(req.Amount),
		MerchantID:            p.cfg.MerchantID,
		MerchantTransactionID: req.MerchantTransactionID,
		MerchantUserID:        "User_" + req.UserID,
		RedirectURL:           p.cfg.RedirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           p.cfg.CallbackURL,
		MerchantOrderID:       req.OrderID,
		MobileNumber:          req.MobileNumber,
		Email:                 req.Email,
		Message:               "Payment for Order " + req.OrderID,
		PaymentInstrument:     paymentInstrument{Type: "PAY_PAGE"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal pay payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	header := http.Header{}
	header.Set(headerVerify, p.checksum(encoded+payPath))

	var resp payResponse
	if err := p.api.Do(ctx, http.MethodPost, payPath, header, envelopeRequest{Request: encoded}, &resp); err != nil {
		return nil, err
	}
	redirect := resp.Data.InstrumentResponse.RedirectInfo.URL
	if !resp.Success || redirect == "" {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, fmt.Errorf("gateway code %q", resp.Code), ErrBadGatewayResponse.Message)
	}

	mtid := resp.Data.MerchantTransactionID
	if mtid == "" {
		mtid = req.MerchantTransactionID
	}
	return &PayResult{MerchantTransactionID: mtid, RedirectURL: redirect}, nil
}

// TransactionData is the settled view of a transaction reported by the
// gateway, either in a callback or a status query.
type TransactionData struct {
	MerchantID            string          `json:"merchantId"`
	MerchantTransactionID string          `json:"merchantTransactionId"`
	TransactionID         string          `json:"transactionId"`
	Amount                int64           `json:"amount"`
	State                 string          `json:"state"`
	ResponseCode          string          `json:"responseCode"`
	PaymentInstrument     json.RawMessage `json:"paymentInstrument,omitempty"`
}

// TransactionEnvelope is the decoded body of a callback or status response.
type TransactionEnvelope struct {
	Success bool             `json:"success"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Data    *TransactionData `json:"data"`
}

// Usable reports whether the envelope carries transaction data to reconcile.
func (e *TransactionEnvelope) Usable() bool {
	return e.Success && e.Data != nil && e.Data.MerchantTransactionID != ""
}

// CheckStatus asks the gateway for the current state of a transaction.
func (p *PhonePe) CheckStatus(ctx context.Context, merchantTransactionID string) (*TransactionEnvelope, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPath, url.PathEscape(p.cfg.MerchantID), url.PathEscape(merchantTransactionID))

	header := http.Header{}
	header.Set(headerVerify, p.checksum(path))
	header.Set(headerMerchantID, p.cfg.MerchantID)

	var env TransactionEnvelope
	if err := p.api.Do(ctx, http.MethodGet, path, header, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodeCallback decodes the base64 "response" field of a callback.
func DecodeCallback(response string) (*TransactionEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(response)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, ErrInvalidCallback.Message)
	}
	var env TransactionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, ErrInvalidCallback.Message)
	}
	return &env, nil
}

// VerifyCallback checks X-VERIFY = sha256(response + saltKey) + "###" + saltIndex.
func (p *PhonePe) VerifyCallback(response, xVerify string) error {
	want := p.checksum(response)
	if subtle.ConstantTimeCompare([]byte(want), []byte(xVerify)) != 1 {
		return ErrChecksumMismatch
	}
	return nil
}

func (p *PhonePe) checksum(input string) string {
	sum := sha256.Sum256([]byte(input + p.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + p.cfg.SaltIndex
}
