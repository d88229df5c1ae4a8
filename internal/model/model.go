// Package model содержит доменные сущности сервиса piolas-market.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя в сообществе.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// IsValid сообщает, является ли значение известной ролью.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User представляет зарегистрированного участника сообщества.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	Role         Role
	ProfilePic   *string
	CreatedAt    time.Time
}

// Channel описывает канал сообщества и настройки начисления валют на нём.
type Channel struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PointsRate int64  `json:"points_rate"`
	StarsRate  int64  `json:"stars_rate"`
	Active     bool   `json:"active"`
}

// ChannelBalance описывает баланс пользователя на отдельном канале.
// Пользователь может держать независимые балансы на нескольких каналах.
type ChannelBalance struct {
	UserID  int64  `json:"-"`
	Channel string `json:"channel"`
	Points  int64  `json:"points"`
	Stars   int64  `json:"stars"`
}

// Balance объединяет балансы пользователя по каналам с агрегированными суммами.
// Доступная для покупки сумма — это сумма по всем каналам.
type Balance struct {
	Channels    []ChannelBalance `json:"channels"`
	TotalPoints int64            `json:"total_points"`
	TotalStars  int64            `json:"total_stars"`
}

// Product описывает товар магазина. Quantity = nil означает неограниченный запас.
// Отсутствующая цена в какой-либо валюте означает, что в этой валюте товар не продаётся.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Quantity      *int64
	PriceCurrency *decimal.Decimal
	PricePoints   *int64
	PriceStars    *int64
}

// CartItem описывает позицию корзины пользователя. Quantity всегда больше нуля.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Totals содержит стоимость покупки в трёх валютах.
type Totals struct {
	Points   int64
	Stars    int64
	Currency decimal.Decimal
}

// PurchaseStatus описывает этап обработки покупки.
type PurchaseStatus string

const (
	PurchaseStatusValidating   PurchaseStatus = "VALIDATING"
	PurchaseStatusDeducting    PurchaseStatus = "DEDUCTING"
	PurchaseStatusDecrementing PurchaseStatus = "DECREMENTING"
	PurchaseStatusInvalidating PurchaseStatus = "INVALIDATING"
	PurchaseStatusDone         PurchaseStatus = "DONE"
	PurchaseStatusFailed       PurchaseStatus = "FAILED"
)

// IsTerminal сообщает, является ли статус конечным.
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusDone || s == PurchaseStatusFailed
}

func (s PurchaseStatus) String() string {
	return string(s)
}

var purchaseTransitions = map[PurchaseStatus]PurchaseStatus{
	PurchaseStatusValidating:   PurchaseStatusDeducting,
	PurchaseStatusDeducting:    PurchaseStatusDecrementing,
	PurchaseStatusDecrementing: PurchaseStatusInvalidating,
	PurchaseStatusInvalidating: PurchaseStatusDone,
}

// CanTransitionTo проверяет допустимость перехода между статусами покупки.
// Переходы строго последовательны, FAILED достижим из любого неконечного статуса.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == PurchaseStatusFailed {
		return true
	}
	return purchaseTransitions[s] == next
}

// PurchaseItem описывает позицию завершённой покупки.
type PurchaseItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// Purchase описывает завершённую покупку. Незавершённые попытки не сохраняются.
type Purchase struct {
	ID            uuid.UUID
	UserID        int64
	Items         []PurchaseItem
	TotalPoints   int64
	TotalStars    int64
	TotalCurrency decimal.Decimal
	CreatedAt     time.Time
}

// LeaderboardEntry описывает строку рейтинга по пиолам.
type LeaderboardEntry struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Points int64  `json:"points"`
}

// RoomStatus описывает состояние комнаты бинго.
type RoomStatus string

const (
	RoomStatusOpen     RoomStatus = "OPEN"
	RoomStatusPlaying  RoomStatus = "PLAYING"
	RoomStatusFinished RoomStatus = "FINISHED"
)

// BingoRoom описывает комнату бинго и вытянутые в ней номера.
type BingoRoom struct {
	ID        int64
	Code      string
	HostID    int64
	Status    RoomStatus
	Drawn     []int64
	WinnerID  *int64
	CreatedAt time.Time
}

// BingoBoard описывает карточку участника: 15 уникальных номеров из диапазона 1..90.
type BingoBoard struct {
	RoomID  int64
	UserID  int64
	Numbers []int64
}
