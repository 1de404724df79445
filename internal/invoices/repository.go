package invoices

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

// Repository provides persistence for invoices.
type Repository interface {
	Create(ctx context.Context, inv Invoice) (*Invoice, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error)
	ListByOrder(ctx context.Context, orderID string) ([]Invoice, error)
	GenerateNumber(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, number, order_id, order_reference, customer_id, total_amount, paid_amount, balance_due, note, issued_at, created_at`

func (r *repository) Create(ctx context.Context, inv Invoice) (*Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now()
	}
	inv.CreatedAt = time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.Number, inv.OrderID, inv.OrderRef, inv.CustomerID,
		inv.TotalAmount, inv.PaidAmount, inv.BalanceDue, inv.Note, inv.IssuedAt, inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invoices: create: %w", err)
	}
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id).Scan(
		&inv.ID, &inv.Number, &inv.OrderID, &inv.OrderRef, &inv.CustomerID,
		&inv.TotalAmount, &inv.PaidAmount, &inv.BalanceDue, &inv.Note, &inv.IssuedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("invoices: get: %w", err)
	}
	return &inv, nil
}

func (r *repository) collect(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.OrderRef, &inv.CustomerID,
			&inv.TotalAmount, &inv.PaidAmount, &inv.BalanceDue, &inv.Note, &inv.IssuedAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("invoices: scan: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("invoices: list by customer: %w", err)
	}
	return r.collect(rows)
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("invoices: list by order: %w", err)
	}
	return r.collect(rows)
}

// GenerateNumber issues the next INV-YYYYMM-NNNN document number.
func (r *repository) GenerateNumber(ctx context.Context) (string, error) {
	prefix := "INV-" + time.Now().Format("200601")
	var seq int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) + 1 FROM invoices WHERE number LIKE $1 || '-%'`, prefix).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			seq = 1
		} else {
			return "", fmt.Errorf("invoices: generate number: %w", err)
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}
