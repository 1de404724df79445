package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBalance(t *testing.T) {
	orders := []Order{
		{ID: "o1", CustomerID: "c1", TotalAmount: 100, PaidAmount: 40, PaymentStatus: StatusPending},
		{ID: "o2", CustomerID: "c1", TotalAmount: 50, PaidAmount: 50, PaymentStatus: StatusPaid},
	}
	adjustments := []Adjustment{
		{ID: "a1", CustomerID: "c1", Type: AdjustmentDebit, Amount: 20},
		{ID: "a2", CustomerID: "c1", Type: AdjustmentCredit, Amount: 5},
	}

	b := ComputeBalance(orders, adjustments, "c1")
	require.Equal(t, 60.0, b.OrderDebt)
	require.Equal(t, 15.0, b.AdjustmentBalance)
	require.Equal(t, 75.0, b.TotalOwed)
}

func TestComputeBalanceEmptyInputs(t *testing.T) {
	b := ComputeBalance(nil, nil, "c1")
	require.Equal(t, Balance{}, b)
}

func TestComputeBalanceFiltersCustomer(t *testing.T) {
	orders := []Order{
		{ID: "o1", CustomerID: "c1", TotalAmount: 100, PaymentStatus: StatusPending},
		{ID: "o2", CustomerID: "c2", TotalAmount: 999, PaymentStatus: StatusPending},
	}
	adjustments := []Adjustment{
		{ID: "a1", CustomerID: "c2", Type: AdjustmentDebit, Amount: 500},
	}

	b := ComputeBalance(orders, adjustments, "c1")
	require.Equal(t, 100.0, b.OrderDebt)
	require.Equal(t, 0.0, b.AdjustmentBalance)
	require.Equal(t, 100.0, b.TotalOwed)
}

func TestComputeBalancePaidStatusWinsOverResidual(t *testing.T) {
	// Stored paid status excludes the order even when a residual remains.
	orders := []Order{
		{ID: "o1", CustomerID: "c1", TotalAmount: 100, PaidAmount: 90, PaymentStatus: StatusPaid},
	}
	b := ComputeBalance(orders, nil, "c1")
	require.Equal(t, 0.0, b.OrderDebt)
}

func TestComputeBalanceOverpaymentNetsOut(t *testing.T) {
	orders := []Order{
		{ID: "o1", CustomerID: "c1", TotalAmount: 100, PaidAmount: 120, PaymentStatus: StatusPartiallyPaid},
		{ID: "o2", CustomerID: "c1", TotalAmount: 50, PaidAmount: 0, PaymentStatus: StatusPending},
	}
	b := ComputeBalance(orders, nil, "c1")
	require.Equal(t, 30.0, b.OrderDebt)
}

func TestComputeBalanceRoundsDrift(t *testing.T) {
	orders := []Order{
		{ID: "o1", CustomerID: "c1", TotalAmount: 0.1, PaymentStatus: StatusPending},
		{ID: "o2", CustomerID: "c1", TotalAmount: 0.2, PaymentStatus: StatusPending},
	}
	b := ComputeBalance(orders, nil, "c1")
	require.Equal(t, 0.3, b.OrderDebt)
	require.Equal(t, 0.3, b.TotalOwed)
}
