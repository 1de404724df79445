package payments

// ManualEntryRequest hand-edits one order's allocation before submission.
type ManualEntryRequest struct {
	OrderID string  `json:"order_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"gte=0"`
}

// SmartPaymentRequest submits a batch payment for a customer. When
// Entries is empty the amount is spread oldest order first; manual
// entries always win over redistribution.
type SmartPaymentRequest struct {
	Amount     float64              `json:"amount" validate:"gte=0"`
	Method     string               `json:"method" validate:"omitempty,max=40"`
	Note       string               `json:"note" validate:"omitempty,max=300"`
	ManualMode bool                 `json:"manual_mode"`
	Entries    []ManualEntryRequest `json:"entries" validate:"omitempty,dive"`
}

// DirectPaymentRequest records a payment against a single order. Amounts
// above the order's remaining balance are clamped, not rejected.
type DirectPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"method" validate:"omitempty,max=40"`
	Note   string  `json:"note" validate:"omitempty,max=300"`
}
