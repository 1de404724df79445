package invoices

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/shared"
)

type memoryInvoiceRepo struct {
	invoices map[string]*Invoice
	seq      int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[string]*Invoice)}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, inv Invoice) (*Invoice, error) {
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", len(r.invoices)+1)
	}
	inv.CreatedAt = time.Now()
	r.invoices[inv.ID] = &inv
	return &inv, nil
}

func (r *memoryInvoiceRepo) Get(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (r *memoryInvoiceRepo) ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryInvoiceRepo) ListByOrder(ctx context.Context, orderID string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.OrderID == orderID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryInvoiceRepo) GenerateNumber(ctx context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("INV-202608-%04d", r.seq), nil
}

type fakeOrderSource struct {
	orders map[string]orders.Order
}

func (f *fakeOrderSource) Get(ctx context.Context, id string) (*orders.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func newTestInvoiceService() (*Service, *memoryInvoiceRepo) {
	repo := newMemoryInvoiceRepo()
	source := &fakeOrderSource{orders: map[string]orders.Order{
		"o1": {
			ID:            "o1",
			Reference:     "ORD-202608-0001",
			CustomerID:    "c1",
			TotalAmount:   104500.5,
			PaidAmount:    4500.5,
			PaymentStatus: ledger.StatusPartiallyPaid,
		},
		"o2": {
			ID:            "o2",
			Reference:     "ORD-202608-0002",
			CustomerID:    "c1",
			TotalAmount:   300,
			PaidAmount:    320,
			PaymentStatus: ledger.StatusPaid,
		},
	}}
	return NewService(repo, source), repo
}

func TestGenerateInvoice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvoiceService()

	inv, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o1", Note: "monthly bill"})
	require.NoError(t, err)
	require.Equal(t, "INV-202608-0001", inv.Number)
	require.Equal(t, "ORD-202608-0001", inv.OrderRef)
	require.Equal(t, 104500.5, inv.TotalAmount)
	require.Equal(t, 4500.5, inv.PaidAmount)
	require.Equal(t, 100000.0, inv.BalanceDue)
	require.Equal(t, "₹1,04,500.50", inv.FormattedTotal)
	require.Equal(t, "₹1,00,000.00", inv.FormattedBalance)
}

func TestGenerateInvoiceOverpaidOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvoiceService()

	inv, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o2"})
	require.NoError(t, err)
	require.Equal(t, 0.0, inv.BalanceDue)
	require.Equal(t, "₹0.00", inv.FormattedBalance)
}

func TestGenerateInvoiceUnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvoiceService()

	_, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "ghost"})
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvoiceService()

	first, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o1"})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o1"})
	require.NoError(t, err)
	require.Equal(t, "INV-202608-0001", first.Number)
	require.Equal(t, "INV-202608-0002", second.Number)
}

func TestListInvoicesByCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvoiceService()

	_, err := svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o1"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, GenerateInvoiceRequest{OrderID: "o2"})
	require.NoError(t, err)

	items, err := svc.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	byOrder, err := svc.ListByOrder(ctx, "o2")
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
}
