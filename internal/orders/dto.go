package orders

import "time"

// CreateOrderRequest creates an order with its items.
type CreateOrderRequest struct {
	CustomerID string                   `json:"customer_id" validate:"required"`
	OrderDate  time.Time                `json:"order_date"`
	Items      []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItemRequest is one line of an order.
type CreateOrderItemRequest struct {
	Type     string  `json:"type" validate:"required,max=50"`
	Cut      string  `json:"cut" validate:"omitempty,max=50"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Rate     float64 `json:"rate" validate:"required,gte=0"`
}

// UpdateOrderRequest replaces the order's items.
type UpdateOrderRequest struct {
	OrderDate *time.Time                `json:"order_date,omitempty"`
	Items     *[]CreateOrderItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ListOrdersRequest filters the order list.
type ListOrdersRequest struct {
	CustomerID string
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}
