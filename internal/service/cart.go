package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/cache"
	"github.com/mmeshcher/piolas-market/internal/model"
)

// GetCart возвращает содержимое корзины пользователя, используя кэш при его наличии.
func (s *Service) GetCart(ctx context.Context, userID int64) ([]model.CartItem, error) {
	key := cache.CartKey(userID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var items []model.CartItem
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cart cache read", zap.Error(err))
	}

	items, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn("cart cache write", zap.Error(err))
		}
	}

	return items, nil
}

// AddToCart добавляет позицию в корзину или заменяет её количество.
func (s *Service) AddToCart(ctx context.Context, userID int64, item model.CartItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("cart item quantity must be positive")
	}

	// Товар должен существовать на момент добавления; наличие запаса
	// проверяется только при оформлении покупки.
	if _, err := s.repo.GetProduct(ctx, item.ProductID); err != nil {
		return err
	}

	if err := s.repo.UpsertCartItem(ctx, userID, item); err != nil {
		return err
	}
	s.invalidateCart(ctx, userID)
	return nil
}

// RemoveFromCart удаляет позицию из корзины.
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	if err := s.repo.RemoveCartItem(ctx, userID, productID); err != nil {
		return err
	}
	s.invalidateCart(ctx, userID)
	return nil
}

func (s *Service) invalidateCart(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, cache.CartKey(userID)); err != nil {
		s.logger.Warn("invalidate cart cache", zap.Error(err))
	}
}
