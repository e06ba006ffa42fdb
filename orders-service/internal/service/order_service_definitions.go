package service

import (
	"context"
	"time"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/orders-service/internal/catalog"
	"github.com/fjod/tradecart/orders-service/internal/repository"
	"github.com/fjod/tradecart/pkg/userapi"
)

type CartReader interface {
	Get(ctx context.Context, authorization string) (cartapi.Cart, error)
}

type ProfileReader interface {
	Me(ctx context.Context, authorization string) (*userapi.Profile, error)
}

type ProductReader interface {
	Products(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// CapabilityVerifier resolves a payment-status token to the order it grants.
type CapabilityVerifier interface {
	Verify(token string) (string, error)
}

type OrderService struct {
	repo       repository.OrderRepository
	carts      CartReader
	profiles   ProfileReader
	products   ProductReader
	capability CapabilityVerifier
	now        func() time.Time
}

func NewOrderService(
	repo repository.OrderRepository,
	carts CartReader,
	profiles ProfileReader,
	products ProductReader,
	capability CapabilityVerifier,
) *OrderService {
	return &OrderService{
		repo:       repo,
		carts:      carts,
		profiles:   profiles,
		products:   products,
		capability: capability,
		now:        time.Now,
	}
}
