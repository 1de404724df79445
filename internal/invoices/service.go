package invoices

import (
	"context"

	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/orders"
)

// OrderSource exposes the order lookup invoice generation needs.
type OrderSource interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
}

// Service generates and serves invoices.
type Service struct {
	repo        Repository
	orderSource OrderSource
}

// NewService builds a Service instance.
func NewService(repo Repository, orderSource OrderSource) *Service {
	return &Service{repo: repo, orderSource: orderSource}
}

// Generate cuts an invoice from the order's current amounts.
func (s *Service) Generate(ctx context.Context, req GenerateInvoiceRequest) (*Formatted, error) {
	order, err := s.orderSource.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	number, err := s.repo.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}

	total := money.Round2(order.TotalAmount)
	paid := money.Round2(order.PaidAmount)
	due := money.Round2(total - paid)
	if due < 0 {
		due = 0
	}

	inv, err := s.repo.Create(ctx, Invoice{
		Number:      number,
		OrderID:     order.ID,
		OrderRef:    order.Reference,
		CustomerID:  order.CustomerID,
		TotalAmount: total,
		PaidAmount:  paid,
		BalanceDue:  due,
		Note:        req.Note,
	})
	if err != nil {
		return nil, err
	}
	out := inv.Display()
	return &out, nil
}

// Get returns one invoice with formatted amounts.
func (s *Service) Get(ctx context.Context, id string) (*Formatted, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := inv.Display()
	return &out, nil
}

// ListByCustomer returns a customer's invoices, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Formatted, error) {
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]Formatted, len(items))
	for i, inv := range items {
		out[i] = inv.Display()
	}
	return out, nil
}

// ListByOrder returns the invoices cut from one order.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Formatted, error) {
	items, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]Formatted, len(items))
	for i, inv := range items {
		out[i] = inv.Display()
	}
	return out, nil
}
