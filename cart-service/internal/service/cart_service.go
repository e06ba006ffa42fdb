package service

import (
	"context"
	"fmt"

	"github.com/fjod/tradecart/cart-service/internal/store"
	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

type CartService struct {
	store store.CartStore
}

func NewCartService(s store.CartStore) *CartService {
	return &CartService{store: s}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (cartapi.Cart, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("cart get failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, req cartapi.ItemRequest) (cartapi.CartLine, error) {
	key, err := parseKey(req.VariantIndex, req.Source)
	if err != nil {
		return cartapi.CartLine{}, err
	}
	if req.Quantity == nil {
		return cartapi.CartLine{}, store.ErrMissingQuantity
	}
	if *req.Quantity <= 0 {
		return cartapi.CartLine{}, store.ErrInvalidQuantity
	}

	result, err := s.store.Add(ctx, userID, cartapi.CartLine{
		ProductID:    productID,
		VariantIndex: key.VariantIndex,
		Source:       key.Source,
		Quantity:     *req.Quantity,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("cart add failed", zap.String("product_id", productID), zap.Error(err))
		return cartapi.CartLine{}, err
	}
	return result, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, req cartapi.ItemRequest) (*cartapi.CartLine, error) {
	key, err := parseKey(req.VariantIndex, req.Source)
	if err != nil {
		return nil, err
	}
	if req.Quantity == nil {
		return nil, store.ErrMissingQuantity
	}

	result, err := s.store.Update(ctx, userID, productID, key, *req.Quantity)
	if err != nil {
		logger.FromContext(ctx).Warn("cart update failed", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string, variantIndex *int, source string) error {
	key, err := parseKey(variantIndex, source)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, userID, productID, key); err != nil {
		logger.FromContext(ctx).Warn("cart remove failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		logger.FromContext(ctx).Error("cart clear failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func parseKey(variantIndex *int, source string) (cartapi.Key, error) {
	src, err := cartapi.ParseSource(source)
	if err != nil {
		return cartapi.Key{}, apperr.Wrap(apperr.Validation, err, fmt.Sprintf("invalid source %q", source))
	}
	if variantIndex != nil && *variantIndex < 0 {
		return cartapi.Key{}, apperr.New(apperr.Validation, "variant index must not be negative")
	}
	return cartapi.Key{VariantIndex: variantIndex, Source: src}, nil
}
