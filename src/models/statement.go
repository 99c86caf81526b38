package models

import "time"

// RawRecord is one row of extractor output. Its shape is not guaranteed:
// keys vary between extractor versions and values arrive as strings or
// numbers depending on how the table was lifted from the document.
// RawRecords are discarded after normalization.
type RawRecord map[string]interface{}

// TransactionStatus is the canonical lifecycle state of a single transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
	StatusFailed    TransactionStatus = "Failed"
	StatusUnknown   TransactionStatus = "Unknown"
)

// Transaction is a single canonical ledger entry. Exactly one of PaidIn and
// Withdrawn is present and non-zero; absent amounts are nil, never zero.
// Immutable once created during normalization.
type Transaction struct {
	ReceiptID   string            `json:"receipt_id"`
	CompletedAt time.Time         `json:"completed_at"`
	Details     string            `json:"details"`
	Status      TransactionStatus `json:"status"`
	PaidIn      *float64          `json:"paid_in,omitempty"`
	Withdrawn   *float64          `json:"withdrawn,omitempty"`
	Balance     float64           `json:"balance"`
}

// Amount returns the transaction's single monetary movement, and whether
// the movement is inbound.
func (t *Transaction) Amount() (value float64, inbound bool) {
	if t.PaidIn != nil && *t.PaidIn != 0 {
		return *t.PaidIn, true
	}
	if t.Withdrawn != nil {
		return *t.Withdrawn, false
	}
	return 0, false
}

// CategorySummary is one aggregate ledger line per canonical category,
// e.g. total paybill outflow for the statement period.
type CategorySummary struct {
	Category string  `json:"category"`
	PaidIn   float64 `json:"paid_in"`
	PaidOut  float64 `json:"paid_out"`
}

// TotalCategory is the canonical label of the synthetic grand-total summary row.
const TotalCategory = "TOTAL:"

// Statement is the reconciled, typed transaction ledger plus category
// summaries. Transactions are ordered newest first by CompletedAt; derived
// views re-sort explicitly rather than relying on this order.
type Statement struct {
	Transactions []Transaction     `json:"transactions"`
	Summaries    []CategorySummary `json:"summaries"`
}

// Total returns the grand-total summary row, if the statement carries one.
func (s *Statement) Total() (CategorySummary, bool) {
	for _, sum := range s.Summaries {
		if sum.Category == TotalCategory {
			return sum, true
		}
	}
	return CategorySummary{}, false
}
