package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/pkg/apperr"
)

var (
	ErrPaymentNotFound      = apperr.New(apperr.NotFound, "payment not found")
	ErrDuplicateTransaction = apperr.New(apperr.Conflict, "payment with this merchant transaction id already exists")
	// ErrStaleTransition means the stored status no longer matches the one the
	// caller read, so another writer got there first.
	ErrStaleTransition = apperr.New(apperr.Conflict, "payment status changed concurrently")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a payment event waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByMerchantTransactionID(ctx context.Context, mtid string) (*domain.Payment, error)
	// Transition moves a payment from one status to another only if it is
	// still in from, and records an outbox event in the same transaction.
	Transition(ctx context.Context, mtid string, from, to domain.Status, details json.RawMessage) (*domain.Transition, error)
}

// OutboxRepository is the side of the store the outbox poller drains.
type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
