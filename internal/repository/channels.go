package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmeshcher/piolas-market/internal/model"
)

// CreateChannel добавляет канал и возвращает его идентификатор.
func (r *PostgresRepository) CreateChannel(ctx context.Context, c model.Channel) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO channels (name, points_rate, stars_rate, active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.Name, c.PointsRate, c.StarsRate, c.Active,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrChannelExists, c.Name)
		}
		return 0, fmt.Errorf("create channel: %w", err)
	}
	return id, nil
}

// UpdateChannel обновляет настройки канала.
func (r *PostgresRepository) UpdateChannel(ctx context.Context, c model.Channel) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE channels SET name = $2, points_rate = $3, stars_rate = $4, active = $5 WHERE id = $1`,
		c.ID, c.Name, c.PointsRate, c.StarsRate, c.Active,
	)
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrChannelNotFound
	}
	return nil
}

// ListChannels возвращает все каналы.
func (r *PostgresRepository) ListChannels(ctx context.Context) ([]model.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, points_rate, stars_rate, active FROM channels ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select channels: %w", err)
	}
	defer rows.Close()

	var res []model.Channel
	for rows.Next() {
		var c model.Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.PointsRate, &c.StarsRate, &c.Active); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
