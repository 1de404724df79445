// Package ledger implements the debt allocation engine: customer balance
// derivation from orders and manual adjustments, and distribution of a
// payment amount across outstanding orders.
package ledger

import (
	"errors"
	"time"
)

// PaymentStatus enumerates stored order payment states. The stored value
// is authoritative for filtering unpaid orders even when the amounts say
// otherwise.
type PaymentStatus string

const (
	StatusPending       PaymentStatus = "pending"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusPaid          PaymentStatus = "paid"
)

// AdjustmentType marks the direction of a manual debt adjustment.
type AdjustmentType string

const (
	AdjustmentDebit  AdjustmentType = "debit"
	AdjustmentCredit AdjustmentType = "credit"
)

var (
	// ErrNoOrdersSelected is returned when a session submits with nothing selected.
	ErrNoOrdersSelected = errors.New("ledger: no orders selected for payment")
	// ErrNonPositiveAmount is returned when the aggregate allocated amount is zero or negative.
	ErrNonPositiveAmount = errors.New("ledger: allocated amount must be positive")
	// ErrUnknownOrder is returned when a session mutation targets an order not in the session.
	ErrUnknownOrder = errors.New("ledger: order not part of payment session")
)

// Order is the read-only view of an order the engine consumes.
type Order struct {
	ID            string
	CustomerID    string
	Reference     string
	ItemSummary   string
	TotalAmount   float64
	PaidAmount    float64
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

// RemainingBalance is the authoritative numeric quantity for allocation.
// It may go negative when an order was overpaid.
func (o Order) RemainingBalance() float64 {
	return o.TotalAmount - o.PaidAmount
}

// Adjustment is a manual, non-order-linked change to a customer's owed balance.
type Adjustment struct {
	ID         string
	CustomerID string
	Type       AdjustmentType
	Amount     float64
	Reason     string
	AdjustedBy string
	CreatedAt  time.Time
}

// Balance summarises what one customer owes.
type Balance struct {
	OrderDebt         float64 `json:"order_debt"`
	AdjustmentBalance float64 `json:"adjustment_balance"`
	TotalOwed         float64 `json:"total_owed"`
}

// PaymentAllocation is one order's share of a submitted payment. These are
// transient values handed to the payment recorder; the engine keeps no
// ownership of them.
type PaymentAllocation struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// OrderPaymentEntry wraps one order while a payment is being composed.
// RemainingBalance is fixed for the life of the session; RequestedAmount
// and Selected are mutated by the allocator and by manual overrides.
type OrderPaymentEntry struct {
	Order            Order
	RemainingBalance float64
	RequestedAmount  float64
	Selected         bool
}

// NewEntries builds session entries from orders, clamping each remaining
// balance at zero so overpaid orders can never attract an allocation.
func NewEntries(orders []Order) []OrderPaymentEntry {
	entries := make([]OrderPaymentEntry, len(orders))
	for i, o := range orders {
		balance := o.RemainingBalance()
		if balance < 0 {
			balance = 0
		}
		entries[i] = OrderPaymentEntry{Order: o, RemainingBalance: balance}
	}
	return entries
}
