package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bismi-foods/backoffice/internal/shared"
)

// Repository provides persistence for customers and their adjustments.
type Repository interface {
	Create(ctx context.Context, c Customer) (*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, id string) error

	CreateAdjustment(ctx context.Context, a DebtAdjustment) (*DebtAdjustment, error)
	ListAdjustments(ctx context.Context, customerID string) ([]DebtAdjustment, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, c Customer) (*Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, type, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Type, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("customers: create: %w", err)
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, type, phone, address, created_at, updated_at
		FROM customers WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customers: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("customers: get: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	where := ` WHERE ($1 = '' OR type = $1) AND ($2 = '' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, req.Type, req.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, type, phone, address, created_at, updated_at
		FROM customers`+where+`
		ORDER BY name
		LIMIT $3 OFFSET $4`, req.Type, req.Search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("customers: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, c Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, type = $3, phone = $4, address = $5, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Type, c.Phone, c.Address)
	if err != nil {
		return fmt.Errorf("customers: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("customers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) CreateAdjustment(ctx context.Context, a DebtAdjustment) (*DebtAdjustment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO debt_adjustments (id, customer_id, type, amount, reason, adjusted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CustomerID, a.Type, a.Amount, a.Reason, a.AdjustedBy, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("customers: create adjustment: %w", err)
	}
	return &a, nil
}

func (r *repository) ListAdjustments(ctx context.Context, customerID string) ([]DebtAdjustment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, type, amount, reason, adjusted_by, created_at
		FROM debt_adjustments
		WHERE customer_id = $1
		ORDER BY created_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("customers: list adjustments: %w", err)
	}
	defer rows.Close()

	var out []DebtAdjustment
	for rows.Next() {
		var a DebtAdjustment
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Amount, &a.Reason, &a.AdjustedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("customers: scan adjustment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
