package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/pkg/paymentevents"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

const paymentColumns = `merchant_transaction_id, user_id, order_id, amount, status, payment_details, date_added, updated_at, succeeded_at`

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return NewRepositoryFromDB(db), nil
}

// NewRepositoryFromDB wraps an open handle.
func NewRepositoryFromDB(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "payments_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Create(ctx context.Context, p *domain.Payment) error {
	now := r.now().UTC()
	if p.DateAdded.IsZero() {
		p.DateAdded = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO payments (merchant_transaction_id, user_id, order_id, amount, status, payment_details, date_added, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		p.MerchantTransactionID,
		p.UserID,
		p.OrderID,
		p.Amount.StringFixed(2),
		string(p.Status),
		nullableJSON(p.PaymentDetails),
		p.DateAdded,
		p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *Repository) GetByMerchantTransactionID(ctx context.Context, mtid string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE merchant_transaction_id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, mtid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment: %w", err)
	}
	return p, nil
}

func (r *Repository) Transition(ctx context.Context, mtid string, from, to domain.Status, details json.RawMessage) (*domain.Transition, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	var succeededAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT status, succeeded_at FROM payments WHERE merchant_transaction_id = $1 FOR UPDATE`,
		mtid).Scan(&current, &succeededAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock payment: %w", err)
	}
	if domain.Status(current) != from {
		return nil, ErrStaleTransition
	}

	now := r.now().UTC()
	firstSuccess := to == domain.StatusSuccess && !succeededAt.Valid

	update := `UPDATE payments
	           SET status = $2,
	               payment_details = COALESCE($3, payment_details),
	               updated_at = $4,
	               succeeded_at = CASE WHEN $5 THEN $4 ELSE succeeded_at END
	           WHERE merchant_transaction_id = $1
	           RETURNING ` + paymentColumns
	p, err := scanPayment(tx.QueryRowContext(ctx, update, mtid, string(to), nullableJSON(details), now, firstSuccess))
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	payload, err := json.Marshal(paymentevents.Event{
		MerchantTransactionID: p.MerchantTransactionID,
		OrderID:               p.OrderID,
		UserID:                p.UserID,
		Status:                string(to),
		PreviousStatus:        string(from),
		Amount:                p.Amount.StringFixed(2),
		OccurredAt:            now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment event: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_outbox (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
		mtid, paymentevents.EventType, string(payload))
	if err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return &domain.Transition{Payment: p, From: from, FirstSuccess: firstSuccess}, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM payment_outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Payload = payload
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payment_outbox SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d processed: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var status string
	var details []byte
	var succeededAt sql.NullTime
	if err := row.Scan(
		&p.MerchantTransactionID,
		&p.UserID,
		&p.OrderID,
		&p.Amount,
		&status,
		&details,
		&p.DateAdded,
		&p.UpdatedAt,
		&succeededAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	if len(details) > 0 {
		p.PaymentDetails = details
	}
	if succeededAt.Valid {
		t := succeededAt.Time
		p.SucceededAt = &t
	}
	return &p, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
