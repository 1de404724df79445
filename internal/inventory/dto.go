package inventory

// CreateStockItemRequest creates a new stock line.
type CreateStockItemRequest struct {
	Type     string  `json:"type" validate:"required,max=50"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
}

// AdjustStockRequest adds or removes quantity from a stock line.
type AdjustStockRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

// UpdateStockItemRequest changes the rate of a stock line.
type UpdateStockItemRequest struct {
	Rate *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
}
