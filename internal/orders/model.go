package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/bismi-foods/backoffice/internal/ledger"
)

// Order is a sales order for one customer. PaidAmount and PaymentStatus
// are maintained by the payments module; the stored status is what the
// ledger filters on.
type Order struct {
	ID            string               `json:"id"`
	Reference     string               `json:"reference"`
	CustomerID    string               `json:"customer_id"`
	OrderDate     time.Time            `json:"order_date"`
	Items         []OrderItem          `json:"items,omitempty"`
	TotalAmount   float64              `json:"total_amount"`
	PaidAmount    float64              `json:"paid_amount"`
	PaymentStatus ledger.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// OrderItem is one meat line on an order, quantity in kilograms.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	Type      string  `json:"type"`
	Cut       string  `json:"cut,omitempty"`
	Quantity  float64 `json:"quantity"`
	Rate      float64 `json:"rate"`
	LineTotal float64 `json:"line_total"`
}

// ItemSummary renders the short label payment descriptions carry,
// e.g. "chicken 12.5kg, mutton 4kg".
func (o Order) ItemSummary() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%s %gkg", item.Type, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

// ToLedger maps the order into the allocation engine's view.
func (o Order) ToLedger() ledger.Order {
	return ledger.Order{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Reference:     o.Reference,
		ItemSummary:   o.ItemSummary(),
		TotalAmount:   o.TotalAmount,
		PaidAmount:    o.PaidAmount,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
}

// DeriveStatus computes the payment status implied by the amounts.
func DeriveStatus(totalAmount, paidAmount float64) ledger.PaymentStatus {
	switch {
	case paidAmount <= 0:
		return ledger.StatusPending
	case paidAmount >= totalAmount:
		return ledger.StatusPaid
	default:
		return ledger.StatusPartiallyPaid
	}
}
