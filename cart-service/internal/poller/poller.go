package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/tradecart/payment-service/pkg/paymentevents"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	groupID    = "cart-service-consumer"
	statusPaid = "SUCCESS"
)

// Reader is the part of *kafka.Reader the poller needs.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Poller empties a buyer's cart once their payment succeeds.
type Poller struct {
	carts  CartClearer
	reader Reader
	log    *zap.Logger
}

func NewPoller(carts CartClearer, log *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    paymentevents.Topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return NewPollerWithReader(carts, reader, log)
}

func NewPollerWithReader(carts CartClearer, reader Reader, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{carts: carts, reader: reader, log: log}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.clearPaidCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) clearPaidCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.log.Warn("error reading message", zap.Error(err))
		}
		return
	}

	var event paymentevents.Event
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.log.Warn("error parsing message", zap.Error(err), zap.Int64("offset", m.Offset))
		return
	}
	if event.UserID == "" {
		p.log.Warn("payment event without user_id", zap.String("merchant_transaction_id", event.MerchantTransactionID))
		return
	}
	if event.Status != statusPaid {
		return
	}

	if err := p.carts.Clear(ctx, event.UserID); err != nil {
		p.log.Error("failed to clear cart", zap.String("user_id", event.UserID), zap.Error(err))
		return
	}
	p.log.Info("cart cleared after payment",
		zap.String("user_id", event.UserID),
		zap.String("order_id", event.OrderID))
}
