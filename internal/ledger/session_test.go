package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sessionOrders() []Order {
	return []Order{
		{ID: "a", Reference: "ORD-001", ItemSummary: "Chicken 12kg", TotalAmount: 50, PaymentStatus: StatusPending, CreatedAt: day(1)},
		{ID: "b", Reference: "ORD-002", ItemSummary: "Mutton 4kg", TotalAmount: 30, PaymentStatus: StatusPending, CreatedAt: day(2)},
		{ID: "c", Reference: "ORD-003", TotalAmount: 40, PaidAmount: 10, PaymentStatus: StatusPartiallyPaid, CreatedAt: day(3)},
	}
}

func TestSetTotalAmountAutoDistributes(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	s.SetTotalAmount(60)

	entries := s.Entries()
	require.Equal(t, 50.0, entries[0].RequestedAmount)
	require.Equal(t, 10.0, entries[1].RequestedAmount)
	require.Equal(t, 0.0, entries[2].RequestedAmount)
	require.Equal(t, 60.0, s.Total())
}

func TestSetTotalAmountPreservesManualPicks(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	require.NoError(t, s.ToggleSelection("a", true))
	require.NoError(t, s.SetOrderAmount("a", 20))

	s.SetTotalAmount(100)

	entries := s.Entries()
	require.Equal(t, 20.0, entries[0].RequestedAmount)
	require.True(t, entries[0].Selected)
	require.Equal(t, 0.0, entries[1].RequestedAmount)
	require.False(t, entries[1].Selected)
	require.Equal(t, 20.0, s.Total())
}

func TestSetTotalAmountZeroForcesClear(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	require.NoError(t, s.SetOrderAmount("a", 20))
	require.NoError(t, s.SetOrderAmount("b", 15))

	s.SetTotalAmount(0)

	for _, e := range s.Entries() {
		require.Equal(t, 0.0, e.RequestedAmount)
		require.False(t, e.Selected)
	}
}

func TestManualOnlySessionIgnoresTotal(t *testing.T) {
	s := NewSession(sessionOrders(), false)
	s.SetTotalAmount(60)

	for _, e := range s.Entries() {
		require.Equal(t, 0.0, e.RequestedAmount)
	}

	require.NoError(t, s.SetOrderAmount("b", 25))
	require.Equal(t, 25.0, s.Total())
}

func TestSetOrderAmountClampsToBalance(t *testing.T) {
	s := NewSession(sessionOrders(), true)

	require.NoError(t, s.SetOrderAmount("b", 500))
	entries := s.Entries()
	require.Equal(t, 30.0, entries[1].RequestedAmount)
	require.True(t, entries[1].Selected)

	require.NoError(t, s.SetOrderAmount("b", -5))
	entries = s.Entries()
	require.Equal(t, 0.0, entries[1].RequestedAmount)
	require.False(t, entries[1].Selected)
}

func TestToggleSelectionResetsAmountOnUnselect(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	require.NoError(t, s.SetOrderAmount("a", 20))

	require.NoError(t, s.ToggleSelection("a", false))
	entries := s.Entries()
	require.Equal(t, 0.0, entries[0].RequestedAmount)
	require.False(t, entries[0].Selected)

	require.Error(t, s.ToggleSelection("zzz", true))
}

func TestSelectAllUnselectAllRoundTrip(t *testing.T) {
	s := NewSession(sessionOrders(), true)

	s.SelectAll()
	entries := s.Entries()
	require.Equal(t, 50.0, entries[0].RequestedAmount)
	require.Equal(t, 30.0, entries[1].RequestedAmount)
	require.Equal(t, 30.0, entries[2].RequestedAmount)
	require.Equal(t, 110.0, s.Total())

	s.UnselectAll()
	for _, e := range s.Entries() {
		require.Equal(t, 0.0, e.RequestedAmount)
		require.False(t, e.Selected)
	}
}

func TestSubmitProducesAllocations(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	s.SetTotalAmount(60)

	allocations, err := s.Submit()
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	require.Equal(t, "a", allocations[0].OrderID)
	require.Equal(t, 50.0, allocations[0].Amount)
	require.Contains(t, allocations[0].Description, "ORD-001")
	require.Contains(t, allocations[0].Description, "Chicken 12kg")
	require.Equal(t, "b", allocations[1].OrderID)
	require.Equal(t, 10.0, allocations[1].Amount)
}

func TestSubmitRejectsEmptySelection(t *testing.T) {
	s := NewSession(sessionOrders(), true)
	_, err := s.Submit()
	require.ErrorIs(t, err, ErrNoOrdersSelected)

	require.NoError(t, s.ToggleSelection("a", true))
	_, err = s.Submit()
	require.ErrorIs(t, err, ErrNoOrdersSelected)
}

func TestSessionClampsOverpaidOrders(t *testing.T) {
	orders := []Order{
		{ID: "a", TotalAmount: 100, PaidAmount: 150, PaymentStatus: StatusPartiallyPaid, CreatedAt: day(1)},
	}
	s := NewSession(orders, true)
	entries := s.Entries()
	require.Equal(t, 0.0, entries[0].RemainingBalance)

	require.NoError(t, s.SetOrderAmount("a", 10))
	entries = s.Entries()
	require.Equal(t, 0.0, entries[0].RequestedAmount)
	require.False(t, entries[0].Selected)
}
