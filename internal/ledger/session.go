package ledger

import (
	"fmt"

	"github.com/bismi-foods/backoffice/internal/money"
)

// Session holds the working state while a payment is being composed
// against a set of unpaid orders. It is owned by a single request flow
// and discarded after Submit; no locking.
//
// AutoRedistribute selects between the two payment flows the business
// runs: the smart batch flow (true) re-runs the greedy allocator when a
// total is entered and no order has been hand-picked, while the manual
// line-item flow (false) only ever honours per-order edits. In both
// flows a total of exactly zero clears every entry.
type Session struct {
	entries          []OrderPaymentEntry
	autoRedistribute bool
}

// NewSession builds a session over the given orders. Overpaid orders
// participate with a zero remaining balance.
func NewSession(orders []Order, autoRedistribute bool) *Session {
	return &Session{entries: NewEntries(orders), autoRedistribute: autoRedistribute}
}

// Entries returns a copy of the current working state.
func (s *Session) Entries() []OrderPaymentEntry {
	out := make([]OrderPaymentEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Total is the aggregate the user sees: the sum of selected amounts.
func (s *Session) Total() float64 {
	var total float64
	for _, e := range s.entries {
		if e.Selected {
			total = money.Round2(total + e.RequestedAmount)
		}
	}
	return total
}

func (s *Session) find(orderID string) int {
	for i := range s.entries {
		if s.entries[i].Order.ID == orderID {
			return i
		}
	}
	return -1
}

// ToggleSelection sets an order's participation. Unselecting resets its
// amount to zero; selecting leaves the amount untouched, so an order
// selected at zero stays at zero until the user types an amount.
func (s *Session) ToggleSelection(orderID string, selected bool) error {
	i := s.find(orderID)
	if i < 0 {
		return ErrUnknownOrder
	}
	s.entries[i].Selected = selected
	if !selected {
		s.entries[i].RequestedAmount = 0
	}
	return nil
}

// SetOrderAmount hand-edits one order's allocation. The amount is
// silently clamped to [0, remaining balance] rather than rejected, and
// selection follows the clamped amount.
func (s *Session) SetOrderAmount(orderID string, amount float64) error {
	i := s.find(orderID)
	if i < 0 {
		return ErrUnknownOrder
	}
	capped := money.Round2(money.Clamp(amount, 0, s.entries[i].RemainingBalance))
	s.entries[i].RequestedAmount = capped
	s.entries[i].Selected = capped > 0
	return nil
}

// SetTotalAmount reacts to the user entering a batch total. Zero always
// clears all entries. A nonzero total redistributes only when the
// session auto-redistributes and no order carries a manual nonzero pick;
// existing picks are never overwritten.
func (s *Session) SetTotalAmount(amount float64) {
	if amount <= 0 {
		s.entries = Distribute(0, s.entries)
		return
	}
	if !s.autoRedistribute || s.hasManualPick() {
		return
	}
	s.entries = Distribute(amount, s.entries)
}

func (s *Session) hasManualPick() bool {
	for _, e := range s.entries {
		if e.Selected && e.RequestedAmount > 0 {
			return true
		}
	}
	return false
}

// SelectAll allocates every order its full remaining balance.
func (s *Session) SelectAll() {
	for i := range s.entries {
		s.entries[i].RequestedAmount = money.Round2(s.entries[i].RemainingBalance)
		s.entries[i].Selected = s.entries[i].RemainingBalance > 0
	}
}

// UnselectAll returns every entry to its initial state.
func (s *Session) UnselectAll() {
	s.entries = Distribute(0, s.entries)
}

// Submit produces the allocation batch, oldest orders in the same
// relative order they were loaded. It rejects an empty selection and a
// non-positive aggregate; it never partially submits.
func (s *Session) Submit() ([]PaymentAllocation, error) {
	var allocations []PaymentAllocation
	var total float64
	for _, e := range s.entries {
		if !e.Selected || e.RequestedAmount <= 0 {
			continue
		}
		allocations = append(allocations, PaymentAllocation{
			OrderID:     e.Order.ID,
			Amount:      e.RequestedAmount,
			Description: describeOrder(e.Order),
		})
		total = money.Round2(total + e.RequestedAmount)
	}
	if len(allocations) == 0 {
		return nil, ErrNoOrdersSelected
	}
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}
	return allocations, nil
}

func describeOrder(o Order) string {
	ref := o.Reference
	if ref == "" {
		ref = o.ID
	}
	if o.ItemSummary == "" {
		return fmt.Sprintf("Payment for order %s", ref)
	}
	return fmt.Sprintf("Payment for order %s (%s)", ref, o.ItemSummary)
}
