package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Gateway transaction states.
const (
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
)

// MapProviderState maps a gateway state to a payment status. Anything the
// gateway has not settled stays pending.
func MapProviderState(state string) Status {
	switch state {
	case StateCompleted:
		return StatusSuccess
	case StateFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

type Payment struct {
	MerchantTransactionID string
	UserID                string
	OrderID               string
	Amount                decimal.Decimal
	Status                Status
	PaymentDetails        json.RawMessage
	DateAdded             time.Time
	UpdatedAt             time.Time
	// SucceededAt is set the first time the payment enters SUCCESS and never
	// changes afterwards.
	SucceededAt *time.Time
}

// Transition is the outcome of an applied status change.
type Transition struct {
	Payment      *Payment
	From         Status
	FirstSuccess bool
}
