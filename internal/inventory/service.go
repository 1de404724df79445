package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/bismi-foods/backoffice/internal/money"
	"github.com/bismi-foods/backoffice/internal/shared"
)

// ErrInsufficientStock is returned when a deduction would take a stock
// line below zero.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// Service handles stock business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new stock line.
func (s *Service) Create(ctx context.Context, req CreateStockItemRequest) (*StockItem, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("%w: type required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, StockItem{
		Type:     req.Type,
		Quantity: money.Round2(req.Quantity),
		Rate:     money.Round2(req.Rate),
	})
}

// Get returns one stock line.
func (s *Service) Get(ctx context.Context, id string) (*StockItem, error) {
	return s.repo.Get(ctx, id)
}

// List returns all stock lines.
func (s *Service) List(ctx context.Context) ([]StockItem, error) {
	return s.repo.List(ctx)
}

// AddStock increases a stock line.
func (s *Service) AddStock(ctx context.Context, id string, quantity float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	return s.repo.AdjustQuantity(ctx, id, money.Round2(quantity))
}

// DeductStock decreases a stock line, rejecting deductions that would go
// below zero.
func (s *Service) DeductStock(ctx context.Context, id string, quantity float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	return s.repo.AdjustQuantity(ctx, id, -money.Round2(quantity))
}

// DeductByType deducts stock identified by meat type, used by order intake.
func (s *Service) DeductByType(ctx context.Context, itemType string, quantity float64) error {
	item, err := s.repo.GetByType(ctx, itemType)
	if err != nil {
		return err
	}
	return s.DeductStock(ctx, item.ID, quantity)
}

// RestoreByType puts quantity back, used when an order is deleted.
func (s *Service) RestoreByType(ctx context.Context, itemType string, quantity float64) error {
	item, err := s.repo.GetByType(ctx, itemType)
	if err != nil {
		return err
	}
	return s.AddStock(ctx, item.ID, quantity)
}

// UpdateRate changes the selling rate of a stock line.
func (s *Service) UpdateRate(ctx context.Context, id string, rate float64) error {
	if rate < 0 {
		return fmt.Errorf("%w: rate must not be negative", shared.ErrValidation)
	}
	return s.repo.UpdateRate(ctx, id, money.Round2(rate))
}

// Delete removes a stock line.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
