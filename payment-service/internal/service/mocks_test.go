package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fjod/tradecart/orders-service/pkg/orderapi"
	"github.com/fjod/tradecart/payment-service/internal/domain"
	"github.com/fjod/tradecart/payment-service/internal/gateway"
	"github.com/fjod/tradecart/payment-service/internal/repository"
	"github.com/fjod/tradecart/pkg/userapi"
)

// MockRepository is an in-memory repository.PaymentRepository whose
// Transition behaves like the row-locked compare-and-swap in Postgres.
type MockRepository struct {
	mu          sync.Mutex
	payments    map[string]*domain.Payment
	CreateErr   error
	GetErr      error
	Transitions int
}

func newMockRepository(seed ...*domain.Payment) *MockRepository {
	m := &MockRepository{payments: map[string]*domain.Payment{}}
	for _, p := range seed {
		cp := *p
		m.payments[p.MerchantTransactionID] = &cp
	}
	return m
}

func (m *MockRepository) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.payments[p.MerchantTransactionID]; ok {
		return repository.ErrDuplicateTransaction
	}
	cp := *p
	m.payments[p.MerchantTransactionID] = &cp
	return nil
}

func (m *MockRepository) GetByMerchantTransactionID(_ context.Context, mtid string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.payments[mtid]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockRepository) Transition(_ context.Context, mtid string, from, to domain.Status, details json.RawMessage) (*domain.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[mtid]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	if p.Status != from {
		return nil, repository.ErrStaleTransition
	}
	first := to == domain.StatusSuccess && p.SucceededAt == nil
	p.Status = to
	if details != nil {
		p.PaymentDetails = details
	}
	if first {
		now := time.Now()
		p.SucceededAt = &now
	}
	m.Transitions++
	cp := *p
	return &domain.Transition{Payment: &cp, From: from, FirstSuccess: first}, nil
}

func (m *MockRepository) status(mtid string) domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[mtid].Status
}

type MockOrders struct {
	mu          sync.Mutex
	Order       *orderapi.Order
	GetErr      error
	MarkPaidErr error
	PaidTokens  []string
}

func (m *MockOrders) GetOrder(context.Context, string, string) (*orderapi.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Order, nil
}

func (m *MockOrders) MarkPaid(_ context.Context, token string) (*orderapi.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaidTokens = append(m.PaidTokens, token)
	if m.MarkPaidErr != nil {
		return nil, m.MarkPaidErr
	}
	return m.Order, nil
}

func (m *MockOrders) markPaidCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PaidTokens)
}

type MockUsers struct {
	mu        sync.Mutex
	Profile   *userapi.Profile
	MeErr     error
	LookupErr error
	Sent      []userapi.Email
}

func (m *MockUsers) Me(context.Context, string) (*userapi.Profile, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return m.Profile, nil
}

func (m *MockUsers) Lookup(context.Context, string) (*userapi.Profile, error) {
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	return m.Profile, nil
}

func (m *MockUsers) SendEmail(_ context.Context, e userapi.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, e)
	return nil
}

func (m *MockUsers) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

type MockGateway struct {
	PayResult *gateway.PayResult
	PayErr    error
	Requested *gateway.PayRequest
	Status    *gateway.TransactionEnvelope
	StatusErr error
	VerifyErr error
}

func (m *MockGateway) Pay(_ context.Context, req gateway.PayRequest) (*gateway.PayResult, error) {
	m.Requested = &req
	if m.PayErr != nil {
		return nil, m.PayErr
	}
	if m.PayResult != nil {
		return m.PayResult, nil
	}
	return &gateway.PayResult{MerchantTransactionID: req.MerchantTransactionID, RedirectURL: "https://pay.example/r"}, nil
}

func (m *MockGateway) CheckStatus(context.Context, string) (*gateway.TransactionEnvelope, error) {
	return m.Status, m.StatusErr
}

func (m *MockGateway) VerifyCallback(string, string) error {
	return m.VerifyErr
}

type MockTokens struct {
	Err error
}

func (m *MockTokens) Issue(orderID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "token-for-" + orderID, nil
}
