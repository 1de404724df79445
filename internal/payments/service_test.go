package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/shared"
)

type memoryPaymentRepo struct {
	payments []Payment
	orders   map[string]*orders.Order
	seq      int

	failOrders map[string]bool
	onRecord   func(orderID string)
}

func newMemoryPaymentRepo(source []orders.Order) *memoryPaymentRepo {
	byID := make(map[string]*orders.Order, len(source))
	for i := range source {
		o := source[i]
		byID[o.ID] = &o
	}
	return &memoryPaymentRepo{orders: byID, failOrders: make(map[string]bool)}
}

func (r *memoryPaymentRepo) RecordAllocation(ctx context.Context, p Payment) (*Payment, error) {
	if r.onRecord != nil {
		r.onRecord(p.OrderID)
	}
	if r.failOrders[p.OrderID] {
		return nil, errors.New("write failed")
	}
	o, ok := r.orders[p.OrderID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("pay-%d", len(r.payments)+1)
	}
	p.CreatedAt = time.Now()
	r.payments = append(r.payments, p)
	// Mirrors the row-locked read: the increment applies to the current
	// paid amount, never to the caller's snapshot.
	o.PaidAmount = money.Round2(o.PaidAmount + p.Amount)
	o.PaymentStatus = orders.DeriveStatus(o.TotalAmount, o.PaidAmount)
	return &p, nil
}

func (r *memoryPaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) GenerateNumber(ctx context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("PAY-202608-%04d", r.seq), nil
}

type fakeOrderSource struct {
	repo *memoryPaymentRepo
}

func (f *fakeOrderSource) ListUnpaidByCustomer(ctx context.Context, customerID string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range f.repo.orders {
		if o.CustomerID == customerID && o.PaymentStatus != ledger.StatusPaid {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderSource) Get(ctx context.Context, id string) (*orders.Order, error) {
	o, ok := f.repo.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *o
	return &out, nil
}

type fakeGuard struct {
	keys map[string]bool
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{keys: make(map[string]bool)}
}

func (g *fakeGuard) CheckAndInsert(ctx context.Context, key, module string) error {
	if g.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	g.keys[key] = true
	return nil
}

func (g *fakeGuard) Delete(ctx context.Context, key string) error {
	delete(g.keys, key)
	return nil
}

type fakeBalances struct {
	invalidations int
}

func (f *fakeBalances) InvalidateBalances(ctx context.Context) {
	f.invalidations++
}

func day(n int) time.Time {
	return time.Date(2026, time.August, n, 10, 0, 0, 0, time.UTC)
}

func testOrders() []orders.Order {
	return []orders.Order{
		{ID: "o3", Reference: "ORD-202608-0003", CustomerID: "c1", TotalAmount: 50, PaymentStatus: ledger.StatusPending, CreatedAt: day(3)},
		{ID: "o1", Reference: "ORD-202608-0001", CustomerID: "c1", TotalAmount: 30, PaymentStatus: ledger.StatusPending, CreatedAt: day(1)},
		{ID: "o2", Reference: "ORD-202608-0002", CustomerID: "c1", TotalAmount: 40, PaymentStatus: ledger.StatusPending, CreatedAt: day(2)},
	}
}

func newTestPaymentService(source []orders.Order) (*Service, *memoryPaymentRepo, *fakeGuard, *fakeBalances) {
	repo := newMemoryPaymentRepo(source)
	guard := newFakeGuard()
	balances := &fakeBalances{}
	svc := NewService(slog.Default(), repo, &fakeOrderSource{repo: repo}, guard, balances)
	return svc, repo, guard, balances
}

func allocationByOrder(result *BatchResult, orderID string) AllocationResult {
	for _, a := range result.Allocations {
		if a.OrderID == orderID {
			return a
		}
	}
	return AllocationResult{}
}

func TestRecordBatchDistributesOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, balances := newTestPaymentService(testOrders())

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{Amount: 60})
	require.NoError(t, err)
	require.Equal(t, 3, result.Recorded)
	require.Zero(t, result.Failed)
	require.Equal(t, 60.0, result.Total)

	require.Equal(t, 30.0, allocationByOrder(result, "o1").Amount)
	require.Equal(t, 30.0, allocationByOrder(result, "o2").Amount)
	require.Equal(t, 0.0, allocationByOrder(result, "o3").Amount)

	require.Equal(t, ledger.StatusPaid, repo.orders["o1"].PaymentStatus)
	require.Equal(t, ledger.StatusPartiallyPaid, repo.orders["o2"].PaymentStatus)
	require.Equal(t, 1, balances.invalidations)
}

func TestRecordBatchManualEntriesWin(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestPaymentService(testOrders())

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{
		Amount:     100,
		ManualMode: true,
		Entries:    []ManualEntryRequest{{OrderID: "o3", Amount: 25}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Recorded)
	require.Equal(t, 25.0, result.Total)
	require.Equal(t, 25.0, repo.orders["o3"].PaidAmount)
	require.Equal(t, ledger.StatusPartiallyPaid, repo.orders["o3"].PaymentStatus)
	require.Zero(t, repo.orders["o1"].PaidAmount)
}

func TestRecordBatchManualEntryClamped(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestPaymentService(testOrders())

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{
		ManualMode: true,
		Entries:    []ManualEntryRequest{{OrderID: "o1", Amount: 500}},
	})
	require.NoError(t, err)
	require.Equal(t, 30.0, result.Total)
	require.Equal(t, ledger.StatusPaid, repo.orders["o1"].PaymentStatus)
}

func TestRecordBatchEmptySelection(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestPaymentService(testOrders())

	_, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{Amount: 0})
	require.ErrorIs(t, err, ledger.ErrNoOrdersSelected)
}

func TestRecordBatchUnknownManualOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestPaymentService(testOrders())

	_, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{
		ManualMode: true,
		Entries:    []ManualEntryRequest{{OrderID: "ghost", Amount: 10}},
	})
	require.ErrorIs(t, err, ledger.ErrUnknownOrder)
}

func TestRecordBatchPartialFailureReportsPerOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo, guard, balances := newTestPaymentService(testOrders())
	repo.failOrders["o2"] = true

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{Amount: 60})
	require.NoError(t, err)
	require.Equal(t, 2, result.Recorded)
	require.Equal(t, 1, result.Failed)
	require.Equal(t, 30.0, result.Total)

	require.Equal(t, AllocationRecorded, allocationByOrder(result, "o1").Status)
	failed := allocationByOrder(result, "o2")
	require.Equal(t, AllocationFailed, failed.Status)
	require.NotEmpty(t, failed.Error)

	// Earlier orders stay recorded even though a later one failed.
	require.Equal(t, ledger.StatusPaid, repo.orders["o1"].PaymentStatus)
	require.Zero(t, repo.orders["o2"].PaidAmount)
	require.Equal(t, 1, balances.invalidations)

	// The failed order's key was released so a retry can go through.
	require.False(t, guard.keys[result.BatchID+":o2"])
	require.True(t, guard.keys[result.BatchID+":o1"])
}

func TestRecordBatchSkipsDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	svc, repo, guard, _ := newTestPaymentService(testOrders())

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{
		ManualMode: true,
		Entries:    []ManualEntryRequest{{OrderID: "o1", Amount: 30}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Recorded)

	// Simulate a stale retry replaying the same batch and order.
	key := result.BatchID + ":o1"
	require.True(t, guard.keys[key])
	require.NoError(t, guard.CheckAndInsert(ctx, "other", "payments"))
	require.ErrorIs(t, guard.CheckAndInsert(ctx, key, "payments"), shared.ErrIdempotencyConflict)
	require.Len(t, repo.payments, 1)
}

func TestRecordBatchAccumulatesOverConcurrentPayment(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestPaymentService(testOrders())

	// Another payment lands on o1 after the batch loaded its snapshot
	// but before the allocation is recorded. The recorded allocation
	// must add to it, not overwrite it.
	var once bool
	repo.onRecord = func(orderID string) {
		if orderID == "o1" && !once {
			once = true
			repo.orders["o1"].PaidAmount = 5
			repo.orders["o1"].PaymentStatus = ledger.StatusPartiallyPaid
		}
	}

	result, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{
		ManualMode: true,
		Entries:    []ManualEntryRequest{{OrderID: "o1", Amount: 30}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Recorded)
	require.Equal(t, 35.0, repo.orders["o1"].PaidAmount)
	require.Equal(t, ledger.StatusPaid, repo.orders["o1"].PaymentStatus)
}

func TestRecordDirectClampsToRemaining(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, balances := newTestPaymentService(testOrders())

	payment, err := svc.RecordDirect(ctx, "o1", DirectPaymentRequest{Amount: 100, Method: "cash"})
	require.NoError(t, err)
	require.Equal(t, 30.0, payment.Amount)
	require.Equal(t, "cash", payment.Method)
	require.Contains(t, payment.Description, "ORD-202608-0001")
	require.Equal(t, ledger.StatusPaid, repo.orders["o1"].PaymentStatus)
	require.Equal(t, 1, balances.invalidations)
}

func TestRecordDirectPaidOrderRejected(t *testing.T) {
	ctx := context.Background()
	source := testOrders()
	source[1].PaidAmount = 30
	source[1].PaymentStatus = ledger.StatusPaid
	svc, _, _, _ := newTestPaymentService(source)

	_, err := svc.RecordDirect(ctx, "o1", DirectPaymentRequest{Amount: 10})
	require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestRecordDirectUnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestPaymentService(testOrders())

	_, err := svc.RecordDirect(ctx, "ghost", DirectPaymentRequest{Amount: 10})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPreviewBatchDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestPaymentService(testOrders())

	entries, err := svc.PreviewBatch(ctx, "c1", SmartPaymentRequest{Amount: 60})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var total float64
	for _, e := range entries {
		total += e.RequestedAmount
	}
	require.Equal(t, 60.0, total)
	require.Empty(t, repo.payments)
	require.Zero(t, repo.orders["o1"].PaidAmount)
}

func TestListByCustomerAndOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestPaymentService(testOrders())

	_, err := svc.RecordBatch(ctx, "c1", SmartPaymentRequest{Amount: 120})
	require.NoError(t, err)

	byCustomer, err := svc.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byCustomer, 3)

	byOrder, err := svc.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	require.Equal(t, 30.0, byOrder[0].Amount)
}
