// Package orderapi holds the order wire types and the client the payment
// service uses to read orders and mark them paid.
package orderapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status codes carried in "pStatus".
const (
	StatusUnpaid        = "UP"
	StatusPendingUpdate = "PU"
	StatusPaid          = "PD"
)

type OrderLine struct {
	SKU             string          `json:"sku"`
	SellerSKU       string          `json:"sellerSku"`
	Quantity        int             `json:"quantity"`
	QuantityShipped int             `json:"quantityShipped"`
	UnitPrice       decimal.Decimal `json:"consumerPrice"`
	Title           string          `json:"title"`
	Source          string          `json:"source"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
}

type Order struct {
	ID                  string          `json:"id"`
	MerchantID          string          `json:"merchantId"`
	MkpOrderID          string          `json:"mkpOrderId"`
	PaymentStatus       string          `json:"pStatus"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Lines               []OrderLine     `json:"orderDetails"`
	Currency            string          `json:"currency"`
	ShippingPhoneNumber string          `json:"shippingPhoneNumber"`
	ShippingAddress1    string          `json:"shippingAddress1"`
	ShippingAddress2    string          `json:"shippingAddress2"`
	ShippingAddress3    string          `json:"shippingAddress3"`
	RecipientName       string          `json:"recipientName"`
	ShippingCity        string          `json:"shippingCity"`
	ShippingState       string          `json:"shippingState"`
	ShippingPostalCode  string          `json:"shippingPostalCode"`
	ShippingCountry     string          `json:"shippingCountry"`
	ShippingMethod      string          `json:"shippingMethod"`
	Source              int             `json:"source"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           *time.Time      `json:"updatedAt,omitempty"`
	PaidDate            *time.Time      `json:"paidDate,omitempty"`
}

// Envelope is the {message, payload} wrapper every order response uses.
type Envelope[T any] struct {
	Message string `json:"message"`
	Payload T      `json:"payload"`
}

// AwaitingPayment reports whether a payment may be started for the order.
func (o *Order) AwaitingPayment() bool {
	return o.PaymentStatus == StatusUnpaid || o.PaymentStatus == StatusPendingUpdate
}

// PaymentStatusRequest is the body of PUT /payment-status.
type PaymentStatusRequest struct {
	Token string `json:"token"`
}
