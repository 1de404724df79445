package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/bismi-foods/backoffice/internal/customers"
	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/shared"
)

// CustomerDirectory verifies customers exist on intake.
type CustomerDirectory interface {
	Get(ctx context.Context, id string) (*customers.Customer, error)
}

// StockAdjuster moves inventory when orders are created, edited or deleted.
type StockAdjuster interface {
	DeductByType(ctx context.Context, itemType string, quantity float64) error
	RestoreByType(ctx context.Context, itemType string, quantity float64) error
}

// BalanceInvalidator busts cached customer balances after order writes.
type BalanceInvalidator interface {
	InvalidateBalances(ctx context.Context)
}

// Service handles order business logic.
type Service struct {
	repo      Repository
	directory CustomerDirectory
	stock     StockAdjuster
	balances  BalanceInvalidator
}

// NewService builds a Service instance. balances may be nil.
func NewService(repo Repository, directory CustomerDirectory, stock StockAdjuster, balances BalanceInvalidator) *Service {
	return &Service{repo: repo, directory: directory, stock: stock, balances: balances}
}

// deductItems takes every item's quantity from stock, undoing the
// deductions already made when a later one fails. Stock must end up
// unchanged on error.
func (s *Service) deductItems(ctx context.Context, items []OrderItem) error {
	for i, item := range items {
		if err := s.stock.DeductByType(ctx, item.Type, item.Quantity); err != nil {
			s.restoreItems(ctx, items[:i])
			return fmt.Errorf("deduct stock for %s: %w", item.Type, err)
		}
	}
	return nil
}

// restoreItems returns quantities to stock. Restore failures have no
// recovery path here; the resulting drift shows up in stock audits.
func (s *Service) restoreItems(ctx context.Context, items []OrderItem) {
	for _, item := range items {
		_ = s.stock.RestoreByType(ctx, item.Type, item.Quantity)
	}
}

// redeductItems re-applies deductions that were previously restored.
func (s *Service) redeductItems(ctx context.Context, items []OrderItem) {
	for _, item := range items {
		_ = s.stock.DeductByType(ctx, item.Type, item.Quantity)
	}
}

// swapStock returns the old items to stock and deducts the new ones,
// putting stock back to its starting state when either half fails.
func (s *Service) swapStock(ctx context.Context, oldItems, newItems []OrderItem) error {
	for i, item := range oldItems {
		if err := s.stock.RestoreByType(ctx, item.Type, item.Quantity); err != nil {
			s.redeductItems(ctx, oldItems[:i])
			return fmt.Errorf("restore stock for %s: %w", item.Type, err)
		}
	}
	if err := s.deductItems(ctx, newItems); err != nil {
		s.redeductItems(ctx, oldItems)
		return err
	}
	return nil
}

func buildItems(reqs []CreateOrderItemRequest) ([]OrderItem, float64) {
	items := make([]OrderItem, len(reqs))
	var total float64
	for i, req := range reqs {
		lineTotal := money.Round2(req.Quantity * req.Rate)
		items[i] = OrderItem{
			Type:      req.Type,
			Cut:       req.Cut,
			Quantity:  req.Quantity,
			Rate:      req.Rate,
			LineTotal: lineTotal,
		}
		total = money.Round2(total + lineTotal)
	}
	return items, total
}

// Create registers an order, deducting sold quantities from stock.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if _, err := s.directory.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	items, total := buildItems(req.Items)

	if err := s.deductItems(ctx, items); err != nil {
		return nil, err
	}

	reference, err := s.repo.GenerateReference(ctx, orderDate)
	if err != nil {
		s.restoreItems(ctx, items)
		return nil, err
	}

	order, err := s.repo.Create(ctx, Order{
		Reference:     reference,
		CustomerID:    req.CustomerID,
		OrderDate:     orderDate,
		Items:         items,
		TotalAmount:   total,
		PaymentStatus: ledger.StatusPending,
	})
	if err != nil {
		s.restoreItems(ctx, items)
		return nil, err
	}
	if s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return order, nil
}

// Get returns one order with items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders with pagination metadata.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update replaces the order's items, moving the stock delta.
func (s *Service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	orderDate := order.OrderDate
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	items := order.Items
	total := order.TotalAmount
	if req.Items != nil {
		items, total = buildItems(*req.Items)
		if err := s.swapStock(ctx, order.Items, items); err != nil {
			return nil, err
		}
	}

	if err := s.repo.ReplaceItems(ctx, id, orderDate, items, total); err != nil {
		if req.Items != nil {
			s.restoreItems(ctx, items)
			s.redeductItems(ctx, order.Items)
		}
		return nil, err
	}
	if s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an order and returns its quantities to stock.
func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, item := range order.Items {
		if err := s.stock.RestoreByType(ctx, item.Type, item.Quantity); err != nil {
			return fmt.Errorf("restore stock for %s: %w", item.Type, err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return nil
}

// ListUnpaidByCustomer feeds the payment allocation session.
func (s *Service) ListUnpaidByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.repo.ListUnpaidByCustomer(ctx, customerID)
}

// LedgerOrders implements customers.OrderSource: every order of the
// customer in the engine's read-only view.
func (s *Service) LedgerOrders(ctx context.Context, customerID string) ([]ledger.Order, error) {
	stored, _, err := s.repo.List(ctx, ListOrdersRequest{CustomerID: customerID, PerPage: 10000})
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Order, len(stored))
	for i, o := range stored {
		out[i] = o.ToLedger()
	}
	return out, nil
}

// ReconcileStatuses rewrites any stored payment status that disagrees
// with the amounts, returning how many orders were corrected. Run from
// the background worker; paid-status residuals otherwise silently drop
// out of the balance.
func (s *Service) ReconcileStatuses(ctx context.Context) (int, error) {
	stored, _, err := s.repo.List(ctx, ListOrdersRequest{PerPage: 10000})
	if err != nil {
		return 0, err
	}
	fixed := 0
	for _, o := range stored {
		want := DeriveStatus(o.TotalAmount, o.PaidAmount)
		if o.PaymentStatus == want {
			continue
		}
		if err := s.repo.UpdatePaymentStatus(ctx, o.ID, o.PaidAmount, string(want)); err != nil {
			return fixed, err
		}
		fixed++
	}
	if fixed > 0 && s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return fixed, nil
}
