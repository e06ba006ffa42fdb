package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/pkg/paymentevents"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

var paymentColumnNames = []string{
	"merchant_transaction_id", "user_id", "order_id", "amount", "status",
	"payment_details", "date_added", "updated_at", "succeeded_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepositoryFromDB(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func paymentRow(status string, details []byte, succeededAt driver.Value) *sqlmock.Rows {
	return sqlmock.NewRows(paymentColumnNames).
		AddRow("MT-1", "user-1", "order-1", "100.50", status, details, fixedNow, fixedNow, succeededAt)
}

func TestCreate_InsertsPendingPayment(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs("MT-1", "user-1", "order-1", "100.50", "PENDING", nil, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Payment{
		MerchantTransactionID: "MT-1",
		UserID:                "user-1",
		OrderID:               "order-1",
		Amount:                decimal.RequireFromString("100.5"),
		Status:                domain.StatusPending,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Payment{MerchantTransactionID: "MT-1", Status: domain.StatusPending})

	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestGetByMerchantTransactionID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT merchant_transaction_id, user_id")).
		WithArgs("MT-1").
		WillReturnRows(paymentRow("SUCCESS", []byte(`{"state":"COMPLETED"}`), fixedNow))

	p, err := repo.GetByMerchantTransactionID(context.Background(), "MT-1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, p.Status)
	assert.True(t, decimal.RequireFromString("100.50").Equal(p.Amount))
	require.NotNil(t, p.SucceededAt)
	assert.JSONEq(t, `{"state":"COMPLETED"}`, string(p.PaymentDetails))
}

func TestGetByMerchantTransactionID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT merchant_transaction_id")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames))

	_, err := repo.GetByMerchantTransactionID(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestTransition_FirstSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)
	details := json.RawMessage(`{"state":"COMPLETED"}`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, succeeded_at FROM payments")).
		WithArgs("MT-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "succeeded_at"}).AddRow("PENDING", nil))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments")).
		WithArgs("MT-1", "SUCCESS", string(details), fixedNow, true).
		WillReturnRows(paymentRow("SUCCESS", details, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_outbox")).
		WithArgs("MT-1", paymentevents.EventType, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tr, err := repo.Transition(context.Background(), "MT-1", domain.StatusPending, domain.StatusSuccess, details)

	require.NoError(t, err)
	assert.True(t, tr.FirstSuccess)
	assert.Equal(t, domain.StatusPending, tr.From)
	assert.Equal(t, domain.StatusSuccess, tr.Payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_SuccessAlreadyRecorded(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, succeeded_at FROM payments")).
		WithArgs("MT-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "succeeded_at"}).AddRow("FAILED", fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments")).
		WithArgs("MT-1", "SUCCESS", nil, fixedNow, false).
		WillReturnRows(paymentRow("SUCCESS", nil, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_outbox")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tr, err := repo.Transition(context.Background(), "MT-1", domain.StatusFailed, domain.StatusSuccess, nil)

	require.NoError(t, err)
	assert.False(t, tr.FirstSuccess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_StaleStatusRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, succeeded_at FROM payments")).
		WithArgs("MT-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "succeeded_at"}).AddRow("SUCCESS", fixedNow))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "MT-1", domain.StatusPending, domain.StatusSuccess, nil)

	assert.ErrorIs(t, err, ErrStaleTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_OutboxFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, succeeded_at FROM payments")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "succeeded_at"}).AddRow("PENDING", nil))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments")).
		WillReturnRows(paymentRow("FAILED", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_outbox")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "MT-1", domain.StatusPending, domain.StatusFailed, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert outbox event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxQueries(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, aggregate_id, event_type, payload, created_at")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "aggregate_id", "event_type", "payload", "created_at"}).
			AddRow(int64(7), "MT-1", paymentevents.EventType, []byte(`{"status":"SUCCESS"}`), fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_outbox SET processed_at")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	events, err := repo.GetUnprocessedEvents(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].ID)
	assert.JSONEq(t, `{"status":"SUCCESS"}`, string(events[0].Payload))

	require.NoError(t, repo.MarkEventAsProcessed(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
