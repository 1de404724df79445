package inventory

import "time"

// StockItem is one line of sellable stock, quantities in kilograms.
type StockItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Quantity  float64   `json:"quantity"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
