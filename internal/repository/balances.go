package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/piolas-market/internal/model"
)

// GetChannelBalances возвращает все балансы пользователя по каналам.
func (r *PostgresRepository) GetChannelBalances(ctx context.Context, userID int64) ([]model.ChannelBalance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, channel, points, stars
		 FROM channel_balances
		 WHERE user_id = $1
		 ORDER BY channel`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	defer rows.Close()

	var res []model.ChannelBalance
	for rows.Next() {
		var b model.ChannelBalance
		if err := rows.Scan(&b.UserID, &b.Channel, &b.Points, &b.Stars); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		res = append(res, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SetChannelBalance записывает новые значения баланса одного канала.
// Каждая строка обновляется независимым запросом, общей транзакции на списание нет.
func (r *PostgresRepository) SetChannelBalance(ctx context.Context, userID int64, channel string, points, stars int64) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE channel_balances SET points = $3, stars = $4 WHERE user_id = $1 AND channel = $2`,
			userID, channel, points, stars,
		)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}
		return nil
	})
}

// AdjustChannelBalance применяет админскую корректировку баланса.
// Создаёт строку баланса при отсутствии, итог не опускается ниже нуля.
func (r *PostgresRepository) AdjustChannelBalance(ctx context.Context, userID int64, channel string, pointsDelta, starsDelta int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channel_balances (user_id, channel, points, stars)
		 VALUES ($1, $2, GREATEST($3, 0), GREATEST($4, 0))
		 ON CONFLICT (user_id, channel)
		 DO UPDATE SET points = GREATEST(channel_balances.points + $3, 0),
		               stars  = GREATEST(channel_balances.stars + $4, 0)`,
		userID, channel, pointsDelta, starsDelta,
	)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}

// Leaderboard возвращает рейтинг пользователей по пиолам.
// При пустом channel суммируются балансы по всем каналам.
func (r *PostgresRepository) Leaderboard(ctx context.Context, channel string, limit int) ([]model.LeaderboardEntry, error) {
	var (
		query string
		args  []any
	)

	if channel == "" {
		query = `SELECT b.user_id, u.login, SUM(b.points) AS points
		         FROM channel_balances b
		         JOIN users u ON u.id = b.user_id
		         GROUP BY b.user_id, u.login
		         ORDER BY points DESC, u.login
		         LIMIT $1`
		args = []any{limit}
	} else {
		query = `SELECT b.user_id, u.login, b.points
		         FROM channel_balances b
		         JOIN users u ON u.id = b.user_id
		         WHERE b.channel = $1
		         ORDER BY b.points DESC, u.login
		         LIMIT $2`
		args = []any{channel, limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	var res []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Login, &e.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		res = append(res, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
