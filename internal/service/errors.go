package service

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/piolas-market/internal/model"
)

var (
	// ErrEmptyCart возвращается при попытке оформить покупку с пустой корзиной.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrInsufficientStock возвращается, если запрошенное количество превышает запас товара.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCartOverflow возвращается, когда стоимость корзины не помещается в int64.
	ErrCartOverflow = errors.New("cart totals out of range")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIllegalTransition возвращается при недопустимом переходе статуса покупки.
	ErrIllegalTransition = errors.New("illegal transition of purchase status")
	// ErrNotRoomHost возвращается, если номера пытается тянуть не ведущий комнаты.
	ErrNotRoomHost = errors.New("only the room host can draw numbers")
	// ErrRoomFinished возвращается для операций над завершённой комнатой.
	ErrRoomFinished = errors.New("bingo room is finished")
)

// InsufficientFundsError сообщает, в какой валюте и на сколько не хватает средств.
type InsufficientFundsError struct {
	Currency  string
	Shortfall int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d more %s", e.Shortfall, e.Currency)
}

// SettlementError указывает этап покупки, на котором произошёл сбой.
// Компенсации нет: изменения, применённые до сбоя, остаются в силе.
type SettlementError struct {
	Stage model.PurchaseStatus
	Err   error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed at %s: %v", e.Stage, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
