package customers

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/shared"
)

type memoryCustomerRepo struct {
	customers   map[string]*Customer
	adjustments map[string][]DebtAdjustment
	nextID      int
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{
		customers:   make(map[string]*Customer),
		adjustments: make(map[string][]DebtAdjustment),
	}
}

func (r *memoryCustomerRepo) Create(ctx context.Context, c Customer) (*Customer, error) {
	r.nextID++
	if c.ID == "" {
		c.ID = fmt.Sprintf("cust-%d", r.nextID)
	}
	r.customers[c.ID] = &c
	return &c, nil
}

func (r *memoryCustomerRepo) Get(ctx context.Context, id string) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *memoryCustomerRepo) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		if req.Type != "" && string(c.Type) != req.Type {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryCustomerRepo) Update(ctx context.Context, c Customer) error {
	if _, ok := r.customers[c.ID]; !ok {
		return shared.ErrNotFound
	}
	r.customers[c.ID] = &c
	return nil
}

func (r *memoryCustomerRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.customers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *memoryCustomerRepo) CreateAdjustment(ctx context.Context, a DebtAdjustment) (*DebtAdjustment, error) {
	r.nextID++
	if a.ID == "" {
		a.ID = fmt.Sprintf("adj-%d", r.nextID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.adjustments[a.CustomerID] = append(r.adjustments[a.CustomerID], a)
	return &a, nil
}

func (r *memoryCustomerRepo) ListAdjustments(ctx context.Context, customerID string) ([]DebtAdjustment, error) {
	return r.adjustments[customerID], nil
}

type fakeOrderSource struct {
	orders []ledger.Order
	calls  int
}

func (f *fakeOrderSource) LedgerOrders(ctx context.Context, customerID string) ([]ledger.Order, error) {
	f.calls++
	var out []ledger.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, orders *fakeOrderSource) (*Service, *memoryCustomerRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryCustomerRepo()
	return NewService(repo, orders, NewBalanceCache(client, time.Minute)), repo
}

func TestBalanceCombinesOrdersAndAdjustments(t *testing.T) {
	ctx := context.Background()
	source := &fakeOrderSource{}
	svc, _ := newTestService(t, source)

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Grand Hotel", Type: "hotel"})
	require.NoError(t, err)

	source.orders = []ledger.Order{
		{ID: "o1", CustomerID: c.ID, TotalAmount: 100, PaidAmount: 40, PaymentStatus: ledger.StatusPending},
		{ID: "o2", CustomerID: c.ID, TotalAmount: 50, PaidAmount: 50, PaymentStatus: ledger.StatusPaid},
	}
	_, err = svc.AddAdjustment(ctx, c.ID, CreateAdjustmentRequest{Type: "debit", Amount: 20, Reason: "old dues"})
	require.NoError(t, err)
	_, err = svc.AddAdjustment(ctx, c.ID, CreateAdjustmentRequest{Type: "credit", Amount: 5, Reason: "goodwill"})
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 60.0, balance.OrderDebt)
	require.Equal(t, 15.0, balance.AdjustmentBalance)
	require.Equal(t, 75.0, balance.TotalOwed)
}

func TestBalanceCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	source := &fakeOrderSource{}
	svc, _ := newTestService(t, source)

	c, _ := svc.Create(ctx, CreateCustomerRequest{Name: "Corner Shop", Type: "shop"})
	source.orders = []ledger.Order{
		{ID: "o1", CustomerID: c.ID, TotalAmount: 80, PaymentStatus: ledger.StatusPending},
	}

	_, err := svc.Balance(ctx, c.ID)
	require.NoError(t, err)
	_, err = svc.Balance(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	svc.InvalidateBalances(ctx)
	balance, err := svc.Balance(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
	require.Equal(t, 80.0, balance.TotalOwed)
}

func TestBalanceUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeOrderSource{})

	_, err := svc.Balance(ctx, "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddAdjustmentDefaultsAdjustedBy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeOrderSource{})

	c, _ := svc.Create(ctx, CreateCustomerRequest{Name: "Vendor A", Type: "vendor"})
	adj, err := svc.AddAdjustment(ctx, c.ID, CreateAdjustmentRequest{Type: "debit", Amount: 10, Reason: "manual entry"})
	require.NoError(t, err)
	require.Equal(t, "System", adj.AdjustedBy)

	adj, err = svc.AddAdjustment(ctx, c.ID, CreateAdjustmentRequest{Type: "credit", Amount: 4, Reason: "refund", AdjustedBy: "asif"})
	require.NoError(t, err)
	require.Equal(t, "asif", adj.AdjustedBy)
}

func TestStatementRunningBalance(t *testing.T) {
	ctx := context.Background()
	source := &fakeOrderSource{}
	svc, repo := newTestService(t, source)

	c, _ := svc.Create(ctx, CreateCustomerRequest{Name: "Grand Hotel", Type: "hotel"})

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	source.orders = []ledger.Order{
		{ID: "o1", CustomerID: c.ID, Reference: "ORD-001", TotalAmount: 100, PaidAmount: 30, PaymentStatus: ledger.StatusPartiallyPaid, CreatedAt: base},
		{ID: "o2", CustomerID: c.ID, Reference: "ORD-002", TotalAmount: 50, PaymentStatus: ledger.StatusPending, CreatedAt: base.AddDate(0, 0, 2)},
	}
	_, err := repo.CreateAdjustment(ctx, DebtAdjustment{
		CustomerID: c.ID, Type: ledger.AdjustmentCredit, Amount: 20, Reason: "goodwill", CreatedAt: base.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	statement, err := svc.Statement(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, statement.Entries, 3)

	require.Equal(t, "ORD-001", statement.Entries[0].Reference)
	require.Equal(t, 70.0, statement.Entries[0].RunningBalance)
	require.Equal(t, "adjustment", statement.Entries[1].Kind)
	require.Equal(t, 50.0, statement.Entries[1].RunningBalance)
	require.Equal(t, 100.0, statement.Entries[2].RunningBalance)

	require.Equal(t, 100.0, statement.Balance.TotalOwed)
	require.Equal(t, "₹100.00", statement.FormattedOwed)
}
