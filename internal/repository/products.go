package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/shopspring/decimal"
)

// Цены в реальной валюте хранятся в сотых долях (центах), как и остальные денежные суммы.
func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func decimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var priceCents *int64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Quantity, &priceCents, &p.PricePoints, &p.PriceStars)
	if err != nil {
		return nil, err
	}
	if priceCents != nil {
		v := centsToDecimal(*priceCents)
		p.PriceCurrency = &v
	}
	return &p, nil
}

// CreateProduct добавляет товар и возвращает его идентификатор.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p model.Product) (int64, error) {
	var priceCents *int64
	if p.PriceCurrency != nil {
		v := decimalToCents(*p.PriceCurrency)
		priceCents = &v
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, quantity, price_currency, price_points, price_stars)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.Name, p.Description, p.Quantity, priceCents, p.PricePoints, p.PriceStars,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// UpdateProduct обновляет товар целиком.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p model.Product) error {
	var priceCents *int64
	if p.PriceCurrency != nil {
		v := decimalToCents(*p.PriceCurrency)
		priceCents = &v
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, quantity = $4, price_currency = $5, price_points = $6, price_stars = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Quantity, priceCents, p.PricePoints, p.PriceStars,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет товар.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, quantity, price_currency, price_points, price_stars
		 FROM products WHERE id = $1`,
		id,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts возвращает все товары магазина.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, quantity, price_currency, price_points, price_stars
		 FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// GetProductsByIDs возвращает товары по списку идентификаторов.
// Отсутствующие идентификаторы в результат не попадают.
func (r *PostgresRepository) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, quantity, price_currency, price_points, price_stars
		 FROM products WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	res := make(map[int64]model.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res[p.ID] = *p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// DecrementStock уменьшает запас товара на указанное количество.
// Товары с неограниченным запасом (quantity IS NULL) не изменяются.
func (r *PostgresRepository) DecrementStock(ctx context.Context, productID, quantity int64) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2 WHERE id = $1 AND quantity IS NOT NULL`,
			productID, quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		return nil
	})
}
