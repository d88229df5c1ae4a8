package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmeshcher/piolas-market/internal/model"
)

// CreatePurchase сохраняет завершённую покупку.
func (r *PostgresRepository) CreatePurchase(ctx context.Context, p model.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal purchase items: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO purchases (id, user_id, items, total_points, total_stars, total_currency)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, items, p.TotalPoints, p.TotalStars, decimalToCents(p.TotalCurrency),
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetPurchasesByUser возвращает историю покупок пользователя.
func (r *PostgresRepository) GetPurchasesByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, items, total_points, total_stars, total_currency, created_at
		 FROM purchases
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}
	defer rows.Close()

	var res []model.Purchase
	for rows.Next() {
		var (
			p             model.Purchase
			itemsJSON     []byte
			currencyCents int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &itemsJSON, &p.TotalPoints, &p.TotalStars, &currencyCents, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &p.Items); err != nil {
			return nil, fmt.Errorf("unmarshal purchase items: %w", err)
		}
		p.TotalCurrency = centsToDecimal(currencyCents)
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
