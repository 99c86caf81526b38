package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

// ClassifiedRow is the intermediate produced for one RawRecord: either a
// transaction-shaped or a summary-shaped row, never both, plus any
// row-local diagnostics gathered while resolving its fields.
type ClassifiedRow struct {
	Transaction *models.Transaction
	Summary     *models.CategorySummary
	Diagnostics []models.Diagnostic
}

// Classify normalizes one raw record. A record is a transaction iff a
// receipt identifier is present and non-empty under any of its variant
// keys; otherwise it is treated as a category/summary row. Malformed
// amounts leave the field absent and record a diagnostic; they never drop
// the row.
func Classify(record models.RawRecord) ClassifiedRow {
	if receipt, ok := Resolve(record, FieldReceipt); ok {
		return classifyTransaction(record, receipt)
	}
	return classifySummary(record)
}

func classifyTransaction(record models.RawRecord, receipt string) ClassifiedRow {
	var diags []models.Diagnostic

	tx := models.Transaction{
		ReceiptID: receipt,
		Status:    models.StatusUnknown,
	}

	if details, ok := Resolve(record, FieldDetails); ok {
		tx.Details = details
	}
	if status, ok := Resolve(record, FieldStatus); ok {
		tx.Status = parseStatus(status)
	}
	if ts, ok := Resolve(record, FieldTime); ok {
		if parsed, err := utils.ParseCompletionTime(ts); err == nil {
			tx.CompletedAt = parsed
		}
	}

	tx.PaidIn = resolveAmount(record, FieldPaidIn, receipt, &diags)
	tx.Withdrawn = resolveAmount(record, FieldWithdrawn, receipt, &diags)

	if balance := resolveAmount(record, FieldBalance, receipt, &diags); balance != nil {
		tx.Balance = *balance
	}

	return ClassifiedRow{Transaction: &tx, Diagnostics: diags}
}

func classifySummary(record models.RawRecord) ClassifiedRow {
	var diags []models.Diagnostic

	category, _ := Resolve(record, FieldCategory)
	sum := models.CategorySummary{Category: CanonicalCategory(category)}

	if v := resolveAmount(record, FieldPaidIn, "", &diags); v != nil {
		sum.PaidIn = *v
	}
	if v := resolveAmount(record, FieldWithdrawn, "", &diags); v != nil {
		sum.PaidOut = *v
	}

	return ClassifiedRow{Summary: &sum, Diagnostics: diags}
}

// resolveAmount parses an amount field, degrading to absent on malformed
// input with a MalformedAmount diagnostic.
func resolveAmount(record models.RawRecord, field Field, receipt string, diags *[]models.Diagnostic) *float64 {
	raw, ok := Resolve(record, field)
	if !ok {
		return nil
	}
	value, err := ParseAmount(raw)
	if err != nil {
		if errors.Is(err, ErrMalformedAmount) {
			*diags = append(*diags, models.Diagnostic{
				Kind:      models.DiagMalformedAmount,
				ReceiptID: receipt,
				Field:     string(field),
				Message:   fmt.Sprintf("unparseable amount %q, treated as absent", raw),
			})
		}
		return nil
	}
	return value
}

func parseStatus(raw string) models.TransactionStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED", "COMPLETE":
		return models.StatusCompleted
	case "PENDING":
		return models.StatusPending
	case "FAILED":
		return models.StatusFailed
	default:
		return models.StatusUnknown
	}
}
