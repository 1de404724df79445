package invoices

import (
	"time"

	"github.com/bismi-foods/backoffice/internal/money"
)

// Invoice is a billing record cut from one order. Amounts are frozen at
// generation time; regenerating after further payments produces a new
// invoice with the updated balance due.
type Invoice struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	OrderID     string    `json:"order_id"`
	OrderRef    string    `json:"order_reference"`
	CustomerID  string    `json:"customer_id"`
	TotalAmount float64   `json:"total_amount"`
	PaidAmount  float64   `json:"paid_amount"`
	BalanceDue  float64   `json:"balance_due"`
	Note        string    `json:"note,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Formatted carries the display strings alongside the raw numbers.
type Formatted struct {
	Invoice
	FormattedTotal   string `json:"formatted_total"`
	FormattedPaid    string `json:"formatted_paid"`
	FormattedBalance string `json:"formatted_balance"`
}

// Display renders the invoice's currency strings.
func (inv Invoice) Display() Formatted {
	return Formatted{
		Invoice:          inv,
		FormattedTotal:   money.Format(inv.TotalAmount),
		FormattedPaid:    money.Format(inv.PaidAmount),
		FormattedBalance: money.Format(inv.BalanceDue),
	}
}
