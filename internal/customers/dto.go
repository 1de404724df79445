package customers

// CreateCustomerRequest creates a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Type    string `json:"type" validate:"required,oneof=shop hotel vendor"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=300"`
}

// UpdateCustomerRequest applies partial updates.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Type    *string `json:"type,omitempty" validate:"omitempty,oneof=shop hotel vendor"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// CreateAdjustmentRequest records a manual debit or credit.
type CreateAdjustmentRequest struct {
	Type       string  `json:"type" validate:"required,oneof=debit credit"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Reason     string  `json:"reason" validate:"required,max=300"`
	AdjustedBy string  `json:"adjusted_by" validate:"omitempty,max=120"`
}

// ListCustomersRequest filters the customer list.
type ListCustomersRequest struct {
	Type    string
	Search  string
	Page    int
	PerPage int
}
