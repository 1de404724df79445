package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bismi-foods/backoffice/internal/shared"
)

// Repository provides persistence for stock items.
type Repository interface {
	Create(ctx context.Context, item StockItem) (*StockItem, error)
	Get(ctx context.Context, id string) (*StockItem, error)
	GetByType(ctx context.Context, itemType string) (*StockItem, error)
	List(ctx context.Context) ([]StockItem, error)
	UpdateRate(ctx context.Context, id string, rate float64) error
	// AdjustQuantity applies a signed delta and fails when the result
	// would drop below zero.
	AdjustQuantity(ctx context.Context, id string, delta float64) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, item StockItem) (*StockItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO stock_items (id, type, quantity, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Type, item.Quantity, item.Rate, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("inventory: type %q: %w", item.Type, shared.ErrDuplicate)
		}
		return nil, fmt.Errorf("inventory: create: %w", err)
	}
	return &item, nil
}

func (r *repository) Get(ctx context.Context, id string) (*StockItem, error) {
	return r.scanOne(ctx, `
		SELECT id, type, quantity, rate, created_at, updated_at
		FROM stock_items WHERE id = $1`, id)
}

func (r *repository) GetByType(ctx context.Context, itemType string) (*StockItem, error) {
	return r.scanOne(ctx, `
		SELECT id, type, quantity, rate, created_at, updated_at
		FROM stock_items WHERE type = $1`, itemType)
}

func (r *repository) scanOne(ctx context.Context, query string, arg any) (*StockItem, error) {
	var item StockItem
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&item.ID, &item.Type, &item.Quantity, &item.Rate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("inventory: get: %w", err)
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context) ([]StockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, quantity, rate, created_at, updated_at
		FROM stock_items ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var items []StockItem
	for rows.Next() {
		var item StockItem
		if err := rows.Scan(&item.ID, &item.Type, &item.Quantity, &item.Rate, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("inventory: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) UpdateRate(ctx context.Context, id string, rate float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_items SET rate = $2, updated_at = NOW() WHERE id = $1`, id, rate)
	if err != nil {
		return fmt.Errorf("inventory: update rate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) AdjustQuantity(ctx context.Context, id string, delta float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0`, id, delta)
	if err != nil {
		return fmt.Errorf("inventory: adjust quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return gerr
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("inventory: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory: %w", shared.ErrNotFound)
	}
	return nil
}
