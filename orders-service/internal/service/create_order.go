package service

import (
	"context"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/orders-service/internal/catalog"
	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/orders-service/internal/pricing"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

// firstVariantOnly prices only the first cart line of each product. Further
// variants of the same product are left out of the order.
// TODO: price every variant once the catalog exposes per-variant SKUs and prices.
const firstVariantOnly = true

// CreateOrder turns the caller's cart into a persisted order awaiting
// payment. Nothing is persisted unless every step succeeds.
func (s *OrderService) CreateOrder(ctx context.Context, merchantID, authorization string, shipping domain.ShippingDetails) (*domain.Order, error) {
	log := logger.FromContext(ctx).With(zap.String("merchant_id", merchantID))

	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, authorization)
	if err != nil {
		log.Warn("cart fetch failed", zap.Error(err))
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	profile, err := s.profiles.Me(ctx, authorization)
	if err != nil {
		log.Warn("buyer profile fetch failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, err, "user service unavailable")
	}

	products, err := s.products.Products(ctx, cart.ProductIDs())
	if err != nil {
		log.Warn("product fetch failed", zap.Error(err))
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductsNotFound
	}

	lines := buildLines(cart, products, profile.GSTNumber)
	if len(lines) == 0 {
		return nil, ErrProductsNotFound
	}

	now := s.now().UTC()
	order := &domain.Order{
		MerchantID:     merchantID,
		MkpOrderID:     domain.MkpOrderID(now),
		Lines:          lines,
		TotalAmount:    domain.TotalOf(lines),
		PaymentStatus:  domain.PaymentStatusPendingUpdate,
		Shipping:       shipping,
		ShippingMethod: domain.DefaultShippingMethod,
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		log.Error("order persist failed", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("mkp_order_id", order.MkpOrderID),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// buildLines prices the cart against the catalog. Products the cart does not
// hold are ignored.
func buildLines(cart cartapi.Cart, products []catalog.Product, buyerGSTNumber string) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(products))
	for _, p := range products {
		variants := cart[p.ID]
		if len(variants) == 0 {
			continue
		}
		if firstVariantOnly {
			variants = variants[:1]
		}

		for _, v := range variants {
			qty := max(1, v.Quantity)
			unit := p.UnitPrice(qty)
			gst := pricing.SplitGST(unit, p.GST, buyerGSTNumber)
			lines = append(lines, domain.OrderLine{
				SKU:       p.SKU,
				SellerSKU: p.SKU,
				Quantity:  qty,
				UnitPrice: unit,
				Title:     p.Name,
				Source:    string(v.Source),
				CGST:      gst.CGST,
				SGST:      gst.SGST,
				IGST:      gst.IGST,
			})
		}
	}
	return lines
}
