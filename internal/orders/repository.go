package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bismi-foods/backoffice/internal/platform/db"
	"github.com/bismi-foods/backoffice/internal/shared"
)

// Repository provides persistence for orders.
type Repository interface {
	Create(ctx context.Context, o Order) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	ListUnpaidByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ReplaceItems(ctx context.Context, orderID string, orderDate time.Time, items []OrderItem, totalAmount float64) error
	UpdatePaymentStatus(ctx context.Context, id string, paidAmount float64, status string) error
	Delete(ctx context.Context, id string) error
	GenerateReference(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, o Order) (*Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, reference, customer_id, order_date, total_amount, paid_amount, payment_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			o.ID, o.Reference, o.CustomerID, o.OrderDate, o.TotalAmount, o.PaidAmount, o.PaymentStatus, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range o.Items {
			if o.Items[i].ID == "" {
				o.Items[i].ID = uuid.NewString()
			}
			o.Items[i].OrderID = o.ID
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, type, cut, quantity, rate, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				o.Items[i].ID, o.ID, o.Items[i].Type, o.Items[i].Cut, o.Items[i].Quantity, o.Items[i].Rate, o.Items[i].LineTotal)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("orders: create: %w", err)
	}
	return &o, nil
}

const orderColumns = `id, reference, customer_id, order_date, total_amount, paid_amount, payment_status, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.OrderDate, &o.TotalAmount, &o.PaidAmount, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orders: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("orders: scan: %w", err)
	}
	return &o, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *repository) listItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, type, cut, quantity, rate, line_total
		FROM order_items WHERE order_id = $1 ORDER BY type`, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: list items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Type, &item.Cut, &item.Quantity, &item.Rate, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("orders: scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	where := ` WHERE ($1 = '' OR customer_id = $1)
		AND ($2 = '' OR payment_status = $2)
		AND ($3::timestamptz IS NULL OR order_date >= $3)
		AND ($4::timestamptz IS NULL OR order_date <= $4)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where,
		req.CustomerID, req.Status, req.DateFrom, req.DateTo).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("orders: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders`+where+`
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`,
		req.CustomerID, req.Status, req.DateFrom, req.DateTo, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	out, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.OrderDate, &o.TotalAmount, &o.PaidAmount, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("orders: scan: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListUnpaidByCustomer returns the customer's orders not stored as paid,
// oldest first, items included so payment descriptions can reference them.
func (r *repository) ListUnpaidByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 AND payment_status <> 'paid'
		ORDER BY created_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("orders: list unpaid: %w", err)
	}
	defer rows.Close()

	out, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *repository) ReplaceItems(ctx context.Context, orderID string, orderDate time.Time, items []OrderItem, totalAmount float64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET order_date = $2, total_amount = $3, updated_at = NOW() WHERE id = $1`,
			orderID, orderDate, totalAmount)
		if err != nil {
			return fmt.Errorf("orders: update: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("orders: %w", shared.ErrNotFound)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("orders: delete items: %w", err)
		}
		for _, item := range items {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, type, cut, quantity, rate, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, orderID, item.Type, item.Cut, item.Quantity, item.Rate, item.LineTotal)
			if err != nil {
				return fmt.Errorf("orders: insert item: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id string, paidAmount float64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET paid_amount = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`,
		id, paidAmount, status)
	if err != nil {
		return fmt.Errorf("orders: update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orders: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return fmt.Errorf("orders: delete items: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("orders: delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("orders: %w", shared.ErrNotFound)
		}
		return nil
	})
}

// GenerateReference issues the next ORD-YYYYMM-NNNN document number.
func (r *repository) GenerateReference(ctx context.Context, date time.Time) (string, error) {
	prefix := "ORD-" + date.Format("200601")
	var seq int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) + 1 FROM orders WHERE reference LIKE $1 || '-%'`, prefix).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("orders: generate reference: %w", err)
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}
