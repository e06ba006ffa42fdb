package domain

import (
	"time"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UP"
	PaymentStatusPendingUpdate PaymentStatus = "PU"
	PaymentStatusPaid          PaymentStatus = "PD"
)

const DefaultShippingMethod = "Bluedart brands 500 g Surface"

// OrderLine is immutable once the order is created. Exactly one of the
// intra-state pair (CGST, SGST) or IGST is non-zero.
type OrderLine struct {
	SKU       string
	SellerSKU string
	Quantity  int
	UnitPrice decimal.Decimal
	Title     string
	Source    string
	CGST      decimal.Decimal
	SGST      decimal.Decimal
	IGST      decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type ShippingDetails struct {
	Currency      string `json:"currency"`
	PhoneNumber   string `json:"shippingPhoneNumber"`
	Address1      string `json:"shippingAddress1"`
	Address2      string `json:"shippingAddress2"`
	Address3      string `json:"shippingAddress3"`
	RecipientName string `json:"recipientName"`
	City          string `json:"shippingCity"`
	State         string `json:"shippingState"`
	PostalCode    string `json:"shippingPostalCode"`
	Country       string `json:"shippingCountry"`
	Source        int    `json:"source"`
}

func (s ShippingDetails) Validate() error {
	required := []struct {
		name, value string
	}{
		{"currency", s.Currency},
		{"shippingPhoneNumber", s.PhoneNumber},
		{"shippingAddress1", s.Address1},
		{"recipientName", s.RecipientName},
		{"shippingCity", s.City},
		{"shippingState", s.State},
		{"shippingPostalCode", s.PostalCode},
		{"shippingCountry", s.Country},
	}
	for _, f := range required {
		if f.value == "" {
			return apperr.Newf(apperr.Validation, "%s is required", f.name)
		}
	}
	return nil
}

type Order struct {
	ID             string
	MerchantID     string
	MkpOrderID     string
	Lines          []OrderLine
	TotalAmount    decimal.Decimal
	PaymentStatus  PaymentStatus
	Shipping       ShippingDetails
	ShippingMethod string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	PaidDate       *time.Time
}

// TotalOf sums quantity * unit price over lines.
func TotalOf(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func MkpOrderID(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405")
}
