package ledger

import (
	"sort"

	"github.com/bismi-foods/backoffice/internal/money"
)

// Distribute spreads totalAmount across the entries oldest order first,
// capping each allocation at that order's remaining balance. The returned
// slice preserves the caller's element order; sorting by age is internal
// only, so list positions stay stable for the caller. Any remainder left
// after every balance is satisfied is dropped: the allocator never
// over-allocates and never invents a credit bucket for excess payment.
//
// A non-positive totalAmount clears every entry.
func Distribute(totalAmount float64, entries []OrderPaymentEntry) []OrderPaymentEntry {
	out := make([]OrderPaymentEntry, len(entries))
	copy(out, entries)

	if totalAmount <= 0 {
		for i := range out {
			out[i].RequestedAmount = 0
			out[i].Selected = false
		}
		return out
	}

	// Stable sort keeps the original relative order for equal timestamps.
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return out[idx[a]].Order.CreatedAt.Before(out[idx[b]].Order.CreatedAt)
	})

	remaining := money.Round2(totalAmount)
	for _, i := range idx {
		if remaining <= 0 {
			out[i].RequestedAmount = 0
			out[i].Selected = false
			continue
		}
		allocation := out[i].RemainingBalance
		if allocation < 0 {
			allocation = 0
		}
		if remaining < allocation {
			allocation = remaining
		}
		allocation = money.Round2(allocation)
		remaining = money.Round2(remaining - allocation)
		out[i].RequestedAmount = allocation
		out[i].Selected = allocation > 0
	}

	return out
}
