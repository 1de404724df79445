package invoices

// GenerateInvoiceRequest cuts an invoice from an order.
type GenerateInvoiceRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Note    string `json:"note" validate:"omitempty,max=300"`
}
