package payments

import "time"

// Payment is one recorded payment against one order. A smart batch
// produces several of these sharing a BatchID.
type Payment struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	BatchID     string    `json:"batch_id,omitempty"`
	CustomerID  string    `json:"customer_id"`
	OrderID     string    `json:"order_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Method      string    `json:"method,omitempty"`
	Note        string    `json:"note,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// AllocationStatus reports what happened to one allocation of a batch.
type AllocationStatus string

const (
	AllocationRecorded AllocationStatus = "recorded"
	AllocationSkipped  AllocationStatus = "skipped"
	AllocationFailed   AllocationStatus = "failed"
)

// AllocationResult is the per-order outcome of a batch submission. The
// batch is not atomic: recording is sequential and idempotent per order,
// and the caller learns exactly which orders went through.
type AllocationResult struct {
	OrderID string           `json:"order_id"`
	Amount  float64          `json:"amount"`
	Status  AllocationStatus `json:"status"`
	Error   string           `json:"error,omitempty"`
}

// BatchResult summarises a smart payment submission.
type BatchResult struct {
	BatchID     string             `json:"batch_id"`
	CustomerID  string             `json:"customer_id"`
	Total       float64            `json:"total"`
	Recorded    int                `json:"recorded"`
	Failed      int                `json:"failed"`
	Allocations []AllocationResult `json:"allocations"`
}
