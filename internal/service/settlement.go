package service

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/cache"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
)

// settlement отслеживает этап обработки одной покупки.
type settlement struct {
	status model.PurchaseStatus
}

func (st *settlement) transition(next model.PurchaseStatus) error {
	if !st.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, st.status, next)
	}
	st.status = next
	return nil
}

func (st *settlement) fail(err error) error {
	stage := st.status
	st.status = model.PurchaseStatusFailed
	return &SettlementError{Stage: stage, Err: err}
}

// Checkout оформляет покупку содержимого корзины пользователя.
//
// Этапы строго последовательны: проверка запасов и подсчёт сумм, списание
// балансов, уменьшение запасов, инвалидация кэшей. Каждый этап — отдельные
// обращения к хранилищу, общей транзакции и компенсации при сбое нет:
// изменения, применённые до сбоя, остаются в силе.
func (s *Service) Checkout(ctx context.Context, userID int64) (*model.Purchase, error) {
	st := &settlement{status: model.PurchaseStatusValidating}

	items, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, st.fail(err)
	}
	if len(items) == 0 {
		return nil, st.fail(ErrEmptyCart)
	}

	products, totals, err := s.validateCart(ctx, items)
	if err != nil {
		return nil, st.fail(err)
	}

	if err := st.transition(model.PurchaseStatusDeducting); err != nil {
		return nil, st.fail(err)
	}
	if err := s.deductBalances(ctx, userID, totals); err != nil {
		return nil, st.fail(err)
	}

	if err := st.transition(model.PurchaseStatusDecrementing); err != nil {
		return nil, st.fail(err)
	}
	for _, item := range items {
		p := products[item.ProductID]
		if p.Quantity == nil {
			continue
		}
		if err := s.repo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, st.fail(err)
		}
	}

	if err := st.transition(model.PurchaseStatusInvalidating); err != nil {
		return nil, st.fail(err)
	}

	purchase := model.Purchase{
		ID:            uuid.New(),
		UserID:        userID,
		TotalPoints:   totals.Points,
		TotalStars:    totals.Stars,
		TotalCurrency: totals.Currency,
		CreatedAt:     time.Now(),
	}
	for _, item := range items {
		purchase.Items = append(purchase.Items, model.PurchaseItem{
			ProductID: item.ProductID,
			Name:      products[item.ProductID].Name,
			Quantity:  item.Quantity,
		})
	}

	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return nil, st.fail(err)
	}
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return nil, st.fail(err)
	}

	// Сигнал инвалидации читателям корзины, рейтинга и каталога.
	// Ошибки кэша не считаются сбоем покупки.
	keys := []string{cache.CartKey(userID), cache.KeyLeaderboard, cache.KeyProducts}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("settlement cache invalidation", zap.Error(err))
	}

	if err := st.transition(model.PurchaseStatusDone); err != nil {
		return nil, st.fail(err)
	}

	return &purchase, nil
}

// validateCart проверяет запасы и считает стоимость корзины в трёх валютах.
// Отсутствующая цена в валюте трактуется как ноль. При любой ошибке суммы не возвращаются.
func (s *Service) validateCart(ctx context.Context, items []model.CartItem) (map[int64]model.Product, model.Totals, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, model.Totals{}, err
	}

	var totals model.Totals
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, model.Totals{}, fmt.Errorf("%w: id %d", repository.ErrProductNotFound, item.ProductID)
		}
		if p.PriceCurrency == nil && p.PricePoints == nil && p.PriceStars == nil {
			return nil, model.Totals{}, fmt.Errorf("%w: product %q has no price record", repository.ErrProductNotFound, p.Name)
		}
		if p.Quantity != nil && item.Quantity > *p.Quantity {
			return nil, model.Totals{}, fmt.Errorf("%w: %q", ErrInsufficientStock, p.Name)
		}

		// Суммы считаются с контролем переполнения: отрицательный итог прошёл бы
		// проверку достаточности средств и обернулся бы начислением при списании.
		if p.PricePoints != nil {
			line, ok := mulInt64(*p.PricePoints, item.Quantity)
			if !ok || totals.Points > math.MaxInt64-line {
				return nil, model.Totals{}, fmt.Errorf("%w: %q", ErrCartOverflow, p.Name)
			}
			totals.Points += line
		}
		if p.PriceStars != nil {
			line, ok := mulInt64(*p.PriceStars, item.Quantity)
			if !ok || totals.Stars > math.MaxInt64-line {
				return nil, model.Totals{}, fmt.Errorf("%w: %q", ErrCartOverflow, p.Name)
			}
			totals.Stars += line
		}
		if p.PriceCurrency != nil {
			totals.Currency = totals.Currency.Add(p.PriceCurrency.Mul(decimal.NewFromInt(item.Quantity)))
		}
	}

	return products, totals, nil
}

// deductBalances списывает пиолы и звёзды пропорционально балансам пользователя
// на каналах. Каждая строка баланса обновляется независимым запросом.
//
// Доли округляются вниз, поэтому сумма списаний может быть меньше запрошенной
// на величину до (число каналов - 1) единиц; остаток не перераспределяется.
func (s *Service) deductBalances(ctx context.Context, userID int64, totals model.Totals) error {
	balances, err := s.repo.GetChannelBalances(ctx, userID)
	if err != nil {
		return err
	}

	var availablePoints, availableStars int64
	for _, b := range balances {
		availablePoints += b.Points
		availableStars += b.Stars
	}

	if totals.Points > availablePoints {
		return &InsufficientFundsError{Currency: "points", Shortfall: totals.Points - availablePoints}
	}
	if totals.Stars > availableStars {
		return &InsufficientFundsError{Currency: "stars", Shortfall: totals.Stars - availableStars}
	}

	if totals.Points == 0 && totals.Stars == 0 {
		return nil
	}

	for _, b := range balances {
		dp := proportionalShare(totals.Points, b.Points, availablePoints)
		ds := proportionalShare(totals.Stars, b.Stars, availableStars)
		if dp == 0 && ds == 0 {
			continue
		}
		if err := s.repo.SetChannelBalance(ctx, userID, b.Channel, b.Points-dp, b.Stars-ds); err != nil {
			return err
		}
	}

	return nil
}

// proportionalShare возвращает долю канала в списании: floor(total*channel/available),
// но не больше баланса самого канала. Произведение считается в 128 битах,
// чтобы большие балансы не переполняли int64.
func proportionalShare(total, channel, available int64) int64 {
	if available == 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(total), uint64(channel))
	if hi >= uint64(available) {
		// Частное не помещается в 64 бита и заведомо больше баланса канала.
		return channel
	}

	d, _ := bits.Div64(hi, lo, uint64(available))
	if d > uint64(channel) {
		return channel
	}
	return int64(d)
}

// mulInt64 перемножает неотрицательные значения с контролем переполнения.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}
