package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/platform/db"
	"github.com/bismi-foods/backoffice/internal/shared"
)

// Repository provides persistence for payments.
type Repository interface {
	// RecordAllocation inserts the payment row and moves the order's
	// paid amount and status in a single transaction. The paid amount
	// is read under the row lock, not from the caller's snapshot, so a
	// concurrent payment against the same order is never overwritten.
	// One allocation, one transaction: a later failure in the batch
	// must not roll back earlier orders.
	RecordAllocation(ctx context.Context, p Payment) (*Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]Payment, error)
	GenerateNumber(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) RecordAllocation(ctx context.Context, p Payment) (*Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	p.CreatedAt = time.Now()

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var totalAmount, paidAmount float64
		err := tx.QueryRow(ctx, `
			SELECT total_amount, paid_amount FROM orders WHERE id = $1 FOR UPDATE`,
			p.OrderID).Scan(&totalAmount, &paidAmount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("order %s: %w", p.OrderID, shared.ErrNotFound)
			}
			return fmt.Errorf("lock order: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, number, batch_id, customer_id, order_id, amount, description, method, note, paid_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.Number, p.BatchID, p.CustomerID, p.OrderID, p.Amount, p.Description, p.Method, p.Note, p.PaidAt, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		newPaid := money.Round2(paidAmount + p.Amount)
		status := orders.DeriveStatus(totalAmount, newPaid)
		_, err = tx.Exec(ctx, `
			UPDATE orders SET paid_amount = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`,
			p.OrderID, newPaid, string(status))
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("payments: record allocation: %w", err)
	}
	return &p, nil
}

const paymentColumns = `id, number, batch_id, customer_id, order_id, amount, description, method, note, paid_at, created_at`

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Number, &p.BatchID, &p.CustomerID, &p.OrderID, &p.Amount, &p.Description, &p.Method, &p.Note, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) ListByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("payments: list by customer: %w", err)
	}
	return collectPayments(rows)
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("payments: list by order: %w", err)
	}
	return collectPayments(rows)
}

// GenerateNumber issues the next PAY-YYYYMM-NNNN document number.
func (r *repository) GenerateNumber(ctx context.Context) (string, error) {
	prefix := "PAY-" + time.Now().Format("200601")
	var seq int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) + 1 FROM payments WHERE number LIKE $1 || '-%'`, prefix).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			seq = 1
		} else {
			return "", fmt.Errorf("payments: generate number: %w", err)
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}
