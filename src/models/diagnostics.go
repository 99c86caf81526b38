package models

import "fmt"

// DiagnosticKind classifies a non-fatal anomaly observed while normalizing
// a statement. Diagnostics never abort the normalization pass; they are
// collected and surfaced so callers can flag caution.
type DiagnosticKind string

const (
	DiagMalformedAmount    DiagnosticKind = "MalformedAmount"
	DiagDuplicateReceipt   DiagnosticKind = "DuplicateReceipt"
	DiagAmbiguousDirection DiagnosticKind = "AmbiguousDirection"
	DiagSummaryMismatch    DiagnosticKind = "SummaryMismatch"
)

// Diagnostic records one recoverable anomaly and where it was seen.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	ReceiptID string         `json:"receipt_id,omitempty"`
	Field     string         `json:"field,omitempty"`
	Message   string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.ReceiptID != "" {
		return fmt.Sprintf("%s (%s): %s", d.Kind, d.ReceiptID, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
