package service

import (
	"context"

	"github.com/fjod/tradecart/orders-service/pkg/orderapi"
	"github.com/fjod/tradecart/payment-service/internal/gateway"
	"github.com/fjod/tradecart/payment-service/internal/repository"
	"github.com/fjod/tradecart/pkg/userapi"
	"golang.org/x/sync/singleflight"
)

type OrderClient interface {
	GetOrder(ctx context.Context, orderID, authorization string) (*orderapi.Order, error)
	MarkPaid(ctx context.Context, token string) (*orderapi.Order, error)
}

type UserClient interface {
	Me(ctx context.Context, authorization string) (*userapi.Profile, error)
	Lookup(ctx context.Context, userID string) (*userapi.Profile, error)
	SendEmail(ctx context.Context, e userapi.Email) error
}

type Gateway interface {
	Pay(ctx context.Context, req gateway.PayRequest) (*gateway.PayResult, error)
	CheckStatus(ctx context.Context, merchantTransactionID string) (*gateway.TransactionEnvelope, error)
	VerifyCallback(response, xVerify string) error
}

// TokenIssuer mints payment-status capability tokens for an order.
type TokenIssuer interface {
	Issue(orderID string) (string, error)
}

type PaymentService struct {
	repo           repository.PaymentRepository
	gateway        Gateway
	orders         OrderClient
	users          UserClient
	tokens         TokenIssuer
	verifyCallback bool
	inflight       singleflight.Group
}

func NewPaymentService(
	repo repository.PaymentRepository,
	gw Gateway,
	orders OrderClient,
	users UserClient,
	tokens TokenIssuer,
	verifyCallback bool,
) *PaymentService {
	return &PaymentService{
		repo:           repo,
		gateway:        gw,
		orders:         orders,
		users:          users,
		tokens:         tokens,
		verifyCallback: verifyCallback,
	}
}
