package service

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/orders-service/internal/catalog"
	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/orders-service/internal/repository"
	"github.com/fjod/tradecart/pkg/userapi"
	"github.com/google/uuid"
)

// MockRepository is an in-memory repository.OrderRepository.
type MockRepository struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	CreateErr error
	Created   int
	Patches   []domain.Patch
}

func newMockRepository() *MockRepository {
	return &MockRepository{orders: map[string]*domain.Order{}}
}

func (m *MockRepository) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.Created++
	return nil
}

func (m *MockRepository) Get(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockRepository) ListByMerchant(_ context.Context, merchantID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.MerchantID == merchantID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRepository) Delete(_ context.Context, id, merchantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.MerchantID != merchantID {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockRepository) Patch(_ context.Context, id, merchantID string, patch domain.Patch) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, repository.ErrOrderNotFound
	}
	m.Patches = append(m.Patches, patch)
	cp := *o
	return &cp, nil
}

func (m *MockRepository) MarkPaid(_ context.Context, id string, paidAt time.Time) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if o.PaymentStatus != domain.PaymentStatusPaid {
		o.PaymentStatus = domain.PaymentStatusPaid
		o.PaidDate = &paidAt
	}
	cp := *o
	return &cp, nil
}

type MockCarts struct {
	Cart cartapi.Cart
	Err  error
}

func (m *MockCarts) Get(_ context.Context, _ string) (cartapi.Cart, error) {
	return m.Cart, m.Err
}

type MockProfiles struct {
	Profile *userapi.Profile
	Err     error
}

func (m *MockProfiles) Me(_ context.Context, _ string) (*userapi.Profile, error) {
	return m.Profile, m.Err
}

type MockProducts struct {
	Items        []catalog.Product
	Err          error
	RequestedIDs []string
}

func (m *MockProducts) Products(_ context.Context, ids []string) ([]catalog.Product, error) {
	m.RequestedIDs = ids
	return m.Items, m.Err
}

type MockCapability struct {
	OrderID string
	Err     error
}

func (m *MockCapability) Verify(_ string) (string, error) {
	return m.OrderID, m.Err
}
