package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bismi-foods/backoffice/internal/ledger"
	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/orders"
)

// OrderSource exposes the order data payment recording needs.
type OrderSource interface {
	ListUnpaidByCustomer(ctx context.Context, customerID string) ([]orders.Order, error)
	Get(ctx context.Context, id string) (*orders.Order, error)
}

// IdempotencyGuard deduplicates allocation recording across retries.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// BalanceInvalidator busts cached customer balances after writes.
type BalanceInvalidator interface {
	InvalidateBalances(ctx context.Context)
}

const idempotencyModule = "payments"

// Service turns allocation sessions into recorded payments.
type Service struct {
	logger      *slog.Logger
	repo        Repository
	orderSource OrderSource
	guard       IdempotencyGuard
	balances    BalanceInvalidator
}

// NewService builds a Service instance. guard and balances may be nil.
func NewService(logger *slog.Logger, repo Repository, orderSource OrderSource, guard IdempotencyGuard, balances BalanceInvalidator) *Service {
	return &Service{logger: logger, repo: repo, orderSource: orderSource, guard: guard, balances: balances}
}

// RecordBatch runs the smart payment flow for one customer: load unpaid
// orders, compose the allocation session from the request, submit it and
// record each allocation sequentially, oldest order first. Recording is
// idempotent per (batch, order) and deliberately not atomic across the
// batch; the result reports each order's outcome.
func (s *Service) RecordBatch(ctx context.Context, customerID string, req SmartPaymentRequest) (*BatchResult, error) {
	unpaid, err := s.orderSource.ListUnpaidByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load unpaid orders: %w", err)
	}

	ledgerOrders := make([]ledger.Order, len(unpaid))
	for i, o := range unpaid {
		ledgerOrders[i] = o.ToLedger()
	}

	session := ledger.NewSession(ledgerOrders, !req.ManualMode)
	for _, entry := range req.Entries {
		if err := session.SetOrderAmount(entry.OrderID, entry.Amount); err != nil {
			return nil, err
		}
	}
	if req.Amount > 0 {
		session.SetTotalAmount(req.Amount)
	}

	allocations, err := session.Submit()
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	result := &BatchResult{BatchID: batchID, CustomerID: customerID}

	for _, alloc := range allocations {
		outcome := s.recordOne(ctx, batchID, customerID, alloc, req.Method, req.Note)
		result.Allocations = append(result.Allocations, outcome)
		switch outcome.Status {
		case AllocationRecorded:
			result.Recorded++
			result.Total = money.Round2(result.Total + outcome.Amount)
		case AllocationFailed:
			result.Failed++
		}
	}

	if result.Recorded > 0 && s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return result, nil
}

func (s *Service) recordOne(ctx context.Context, batchID, customerID string, alloc ledger.PaymentAllocation, method, note string) AllocationResult {
	out := AllocationResult{OrderID: alloc.OrderID, Amount: alloc.Amount}

	key := batchID + ":" + alloc.OrderID
	if s.guard != nil {
		if err := s.guard.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			out.Status = AllocationSkipped
			out.Error = err.Error()
			return out
		}
	}

	number, err := s.repo.GenerateNumber(ctx)
	if err != nil {
		s.releaseKey(ctx, key)
		out.Status = AllocationFailed
		out.Error = err.Error()
		return out
	}

	if _, err := s.repo.RecordAllocation(ctx, Payment{
		Number:      number,
		BatchID:     batchID,
		CustomerID:  customerID,
		OrderID:     alloc.OrderID,
		Amount:      alloc.Amount,
		Description: alloc.Description,
		Method:      method,
		Note:        note,
	}); err != nil {
		s.logger.Error("record allocation", slog.Any("error", err), slog.String("order_id", alloc.OrderID))
		s.releaseKey(ctx, key)
		out.Status = AllocationFailed
		out.Error = err.Error()
		return out
	}

	out.Status = AllocationRecorded
	return out
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Delete(ctx, key); err != nil {
		s.logger.Warn("release idempotency key", slog.Any("error", err), slog.String("key", key))
	}
}

// RecordDirect records a payment against a single order, clamping the
// amount to the order's remaining balance.
func (s *Service) RecordDirect(ctx context.Context, orderID string, req DirectPaymentRequest) (*Payment, error) {
	order, err := s.orderSource.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	remaining := order.TotalAmount - order.PaidAmount
	if remaining < 0 {
		remaining = 0
	}
	amount := money.Round2(money.Clamp(req.Amount, 0, remaining))
	if amount <= 0 {
		return nil, ledger.ErrNonPositiveAmount
	}

	number, err := s.repo.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.RecordAllocation(ctx, Payment{
		Number:      number,
		CustomerID:  order.CustomerID,
		OrderID:     orderID,
		Amount:      amount,
		Description: fmt.Sprintf("Payment for order %s", order.Reference),
		Method:      req.Method,
		Note:        req.Note,
	})
	if err != nil {
		return nil, err
	}

	if s.balances != nil {
		s.balances.InvalidateBalances(ctx)
	}
	return payment, nil
}

// ListByCustomer returns a customer's payments, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListByOrder returns the payments recorded against one order.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// PreviewBatch runs the allocation session without recording anything,
// returning the per-order split the submission would produce.
func (s *Service) PreviewBatch(ctx context.Context, customerID string, req SmartPaymentRequest) ([]ledger.OrderPaymentEntry, error) {
	unpaid, err := s.orderSource.ListUnpaidByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load unpaid orders: %w", err)
	}
	ledgerOrders := make([]ledger.Order, len(unpaid))
	for i, o := range unpaid {
		ledgerOrders[i] = o.ToLedger()
	}
	session := ledger.NewSession(ledgerOrders, !req.ManualMode)
	for _, entry := range req.Entries {
		if err := session.SetOrderAmount(entry.OrderID, entry.Amount); err != nil {
			return nil, err
		}
	}
	if req.Amount > 0 {
		session.SetTotalAmount(req.Amount)
	}
	return session.Entries(), nil
}
