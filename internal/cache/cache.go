// Package cache реализует кэш быстрых чтений и его инвалидацию поверх Redis.
package cache

import (
	"errors"
	"fmt"
)

// ErrCacheMiss возвращается, когда значения нет в кэше.
var ErrCacheMiss = errors.New("cache miss")

// Ключи тем кэша, инвалидируемых при изменении данных.
const (
	KeyProducts    = "products"
	KeyLeaderboard = "leaderboard"
)

// CartKey возвращает ключ кэша корзины пользователя.
func CartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
