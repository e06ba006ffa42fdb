// Package paymentevents describes the messages published on every payment
// status transition.
package paymentevents

import "time"

const (
	Topic     = "payment-events"
	EventType = "payment.status_changed"
)

type Event struct {
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	OrderID               string    `json:"order_id"`
	UserID                string    `json:"user_id"`
	Status                string    `json:"status"`
	PreviousStatus        string    `json:"previous_status"`
	Amount                string    `json:"amount"`
	OccurredAt            time.Time `json:"occurred_at"`
}
