package customers

import (
	"time"

	"github.com/bismi-foods/backoffice/internal/ledger"
)

// CustomerType distinguishes the business relationships the shop runs.
type CustomerType string

const (
	TypeShop   CustomerType = "shop"
	TypeHotel  CustomerType = "hotel"
	TypeVendor CustomerType = "vendor"
)

// Customer model.
type Customer struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      CustomerType `json:"type"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DebtAdjustment is a manual debit or credit against a customer's ledger,
// independent of any order.
type DebtAdjustment struct {
	ID         string                `json:"id"`
	CustomerID string                `json:"customer_id"`
	Type       ledger.AdjustmentType `json:"type"`
	Amount     float64               `json:"amount"`
	Reason     string                `json:"reason"`
	AdjustedBy string                `json:"adjusted_by"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ToLedger maps the stored adjustment into the allocation engine's view.
func (a DebtAdjustment) ToLedger() ledger.Adjustment {
	return ledger.Adjustment{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Type:       a.Type,
		Amount:     a.Amount,
		Reason:     a.Reason,
		AdjustedBy: a.AdjustedBy,
		CreatedAt:  a.CreatedAt,
	}
}

// StatementEntry is one row of a customer statement: an order or a manual
// adjustment in chronological order with a running balance.
type StatementEntry struct {
	Date           time.Time `json:"date"`
	Kind           string    `json:"kind"`
	Reference      string    `json:"reference"`
	Description    string    `json:"description,omitempty"`
	Debit          float64   `json:"debit"`
	Credit         float64   `json:"credit"`
	RunningBalance float64   `json:"running_balance"`
}

// Statement is the rendered ledger for one customer.
type Statement struct {
	CustomerID     string           `json:"customer_id"`
	CustomerName   string           `json:"customer_name"`
	Entries        []StatementEntry `json:"entries"`
	Balance        ledger.Balance   `json:"balance"`
	FormattedOwed  string           `json:"formatted_owed"`
}
