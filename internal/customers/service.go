package customers

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/shared"
)

// OrderSource exposes the orders the balance calculation needs. The
// orders module implements it; the dependency points this way so orders
// can keep verifying customers on intake.
type OrderSource interface {
	LedgerOrders(ctx context.Context, customerID string) ([]ledger.Order, error)
}

// Service handles customer and debt ledger business logic.
type Service struct {
	repo   Repository
	orders OrderSource
	cache  *BalanceCache
	group  singleflight.Group
}

// NewService builds a Service instance. The order source may be nil at
// construction and attached later with BindOrderSource.
func NewService(repo Repository, orders OrderSource, cache *BalanceCache) *Service {
	return &Service{repo: repo, orders: orders, cache: cache}
}

// BindOrderSource attaches the order source after construction. The
// customers and orders services reference each other, so one side of the
// pair is wired late during startup.
func (s *Service) BindOrderSource(orders OrderSource) {
	s.orders = orders
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	return s.repo.Create(ctx, Customer{
		Name:    req.Name,
		Type:    CustomerType(req.Type),
		Phone:   req.Phone,
		Address: req.Address,
	})
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers with pagination metadata.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Type != nil {
		c.Type = CustomerType(*req.Type)
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if err := s.repo.Update(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddAdjustment records a manual debit or credit and invalidates the
// customer's cached balance.
func (s *Service) AddAdjustment(ctx context.Context, customerID string, req CreateAdjustmentRequest) (*DebtAdjustment, error) {
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	adjustedBy := req.AdjustedBy
	if adjustedBy == "" {
		adjustedBy = "System"
	}
	adj, err := s.repo.CreateAdjustment(ctx, DebtAdjustment{
		CustomerID: customerID,
		Type:       ledger.AdjustmentType(req.Type),
		Amount:     money.Round2(req.Amount),
		Reason:     req.Reason,
		AdjustedBy: adjustedBy,
	})
	if err != nil {
		return nil, err
	}
	_ = s.cache.Bump(ctx)
	return adj, nil
}

// ListAdjustments returns a customer's manual adjustments.
func (s *Service) ListAdjustments(ctx context.Context, customerID string) ([]DebtAdjustment, error) {
	return s.repo.ListAdjustments(ctx, customerID)
}

// Balance computes the customer's outstanding position. Results are
// cached in Redis and concurrent misses collapse to one computation.
func (s *Service) Balance(ctx context.Context, customerID string) (ledger.Balance, error) {
	key, err := s.cache.Key(ctx, customerID)
	if err != nil {
		return ledger.Balance{}, err
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		var balance ledger.Balance
		err := s.cache.FetchJSON(ctx, key, &balance, func(ctx context.Context) (any, error) {
			return s.computeBalance(ctx, customerID)
		})
		return balance, err
	})
	if err != nil {
		return ledger.Balance{}, err
	}
	return result.(ledger.Balance), nil
}

func (s *Service) computeBalance(ctx context.Context, customerID string) (ledger.Balance, error) {
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return ledger.Balance{}, err
	}
	orders, err := s.orders.LedgerOrders(ctx, customerID)
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("load orders: %w", err)
	}
	stored, err := s.repo.ListAdjustments(ctx, customerID)
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("load adjustments: %w", err)
	}
	adjustments := make([]ledger.Adjustment, len(stored))
	for i, a := range stored {
		adjustments[i] = a.ToLedger()
	}
	return ledger.ComputeBalance(orders, adjustments, customerID), nil
}

// InvalidateBalances busts every cached balance. The payments and orders
// modules call this after writes.
func (s *Service) InvalidateBalances(ctx context.Context) {
	_ = s.cache.Bump(ctx)
}

// Statement renders the customer's chronological ledger with a running
// balance: orders debit what they bill and credit what was paid against
// them, adjustments apply their signed amount.
func (s *Service) Statement(ctx context.Context, customerID string) (*Statement, error) {
	c, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.LedgerOrders(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	stored, err := s.repo.ListAdjustments(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load adjustments: %w", err)
	}

	entries := make([]StatementEntry, 0, len(orders)+len(stored))
	for _, o := range orders {
		entries = append(entries, StatementEntry{
			Date:        o.CreatedAt,
			Kind:        "order",
			Reference:   o.Reference,
			Description: o.ItemSummary,
			Debit:       money.Round2(o.TotalAmount),
			Credit:      money.Round2(o.PaidAmount),
		})
	}
	for _, a := range stored {
		entry := StatementEntry{
			Date:        a.CreatedAt,
			Kind:        "adjustment",
			Reference:   a.ID,
			Description: a.Reason,
		}
		if a.Type == ledger.AdjustmentDebit {
			entry.Debit = money.Round2(a.Amount)
		} else {
			entry.Credit = money.Round2(a.Amount)
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	var running float64
	for i := range entries {
		running = money.Round2(running + entries[i].Debit - entries[i].Credit)
		entries[i].RunningBalance = running
	}

	adjustments := make([]ledger.Adjustment, len(stored))
	for i, a := range stored {
		adjustments[i] = a.ToLedger()
	}
	balance := ledger.ComputeBalance(orders, adjustments, customerID)

	return &Statement{
		CustomerID:    customerID,
		CustomerName:  c.Name,
		Entries:       entries,
		Balance:       balance,
		FormattedOwed: money.Format(balance.TotalOwed),
	}, nil
}
