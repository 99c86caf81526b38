// src/ledger/builder.go
package ledger

import (
	"fmt"
	"sort"

	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/parsers"
	"github.com/username/mpesaviz/backend/src/utils"
)

// Builder assembles classified rows into one canonical Statement, enforcing
// the ledger invariants: unique receipt identifiers, exactly one movement
// direction per transaction, merged category summaries, and a TOTAL row
// that reconciles with the per-category rows within Tolerance.
type Builder struct {
	// Tolerance is the absolute currency tolerance used when validating
	// the TOTAL summary row against the sum of the per-category rows.
	Tolerance float64
}

func NewBuilder(tolerance float64) *Builder {
	return &Builder{Tolerance: tolerance}
}

// Build consumes classified rows in their original order and produces one
// Statement plus the non-fatal diagnostics gathered along the way. Row-level
// anomalies never abort the pass: a statement with a few bad rows is more
// useful than no statement.
func (b *Builder) Build(rows []parsers.ClassifiedRow) (*models.Statement, []models.Diagnostic) {
	var (
		diags        []models.Diagnostic
		transactions []models.Transaction
		seen         = map[string]bool{}
		categories   []string
		byCategory   = map[string]*models.CategorySummary{}
	)

	for _, row := range rows {
		diags = append(diags, row.Diagnostics...)

		switch {
		case row.Transaction != nil:
			tx := *row.Transaction
			if seen[tx.ReceiptID] {
				diags = append(diags, models.Diagnostic{
					Kind:      models.DiagDuplicateReceipt,
					ReceiptID: tx.ReceiptID,
					Message:   "duplicate receipt identifier, row dropped",
				})
				continue
			}
			seen[tx.ReceiptID] = true

			tx, keep, directionDiags := enforceDirection(tx)
			diags = append(diags, directionDiags...)
			if keep {
				transactions = append(transactions, tx)
			}

		case row.Summary != nil:
			// Pagination can split one category across multiple rows;
			// merge rows sharing the same canonical category.
			sum := row.Summary
			if existing, ok := byCategory[sum.Category]; ok {
				existing.PaidIn += sum.PaidIn
				existing.PaidOut += sum.PaidOut
				continue
			}
			merged := *sum
			byCategory[sum.Category] = &merged
			categories = append(categories, sum.Category)
		}
	}

	// Canonical ordering: newest first, matching statement presentation
	// order. Derived views re-sort explicitly.
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CompletedAt.After(transactions[j].CompletedAt)
	})

	summaries, totalDiags := b.reconcileTotal(categories, byCategory)
	diags = append(diags, totalDiags...)

	if len(diags) > 0 {
		logger.L.Warn("Statement built with diagnostics",
			"transactions", len(transactions),
			"summaries", len(summaries),
			"diagnostics", len(diags))
	}

	return &models.Statement{
		Transactions: transactions,
		Summaries:    summaries,
	}, diags
}

// enforceDirection applies the exactly-one-of paidIn/withdrawn invariant.
// When both are present and non-zero, paidIn wins: the extractor most
// commonly duplicates the debit into the withdrawal column by mistake.
func enforceDirection(tx models.Transaction) (models.Transaction, bool, []models.Diagnostic) {
	hasIn := tx.PaidIn != nil && *tx.PaidIn != 0
	hasOut := tx.Withdrawn != nil && *tx.Withdrawn != 0

	switch {
	case hasIn && hasOut:
		tx.Withdrawn = nil
		return tx, true, []models.Diagnostic{{
			Kind:      models.DiagAmbiguousDirection,
			ReceiptID: tx.ReceiptID,
			Message:   "both paid-in and withdrawn present, kept paid-in",
		}}
	case !hasIn && !hasOut:
		return tx, false, []models.Diagnostic{{
			Kind:      models.DiagAmbiguousDirection,
			ReceiptID: tx.ReceiptID,
			Message:   "no movement amount present, row dropped",
		}}
	case hasIn:
		tx.Withdrawn = nil
	default:
		tx.PaidIn = nil
	}
	return tx, true, nil
}

// reconcileTotal validates the TOTAL row against the sum of the non-total
// rows, synthesizing it when absent. A mismatch within reason is a warning,
// not a hard failure: statements may legitimately carry a few transactions
// outside the extracted category set.
func (b *Builder) reconcileTotal(order []string, byCategory map[string]*models.CategorySummary) ([]models.CategorySummary, []models.Diagnostic) {
	var (
		summaries []models.CategorySummary
		sumIn     float64
		sumOut    float64
	)

	for _, cat := range order {
		if cat == models.TotalCategory {
			continue
		}
		s := byCategory[cat]
		sumIn += s.PaidIn
		sumOut += s.PaidOut
		summaries = append(summaries, *s)
	}

	var diags []models.Diagnostic
	total, hasTotal := byCategory[models.TotalCategory]
	if hasTotal {
		if !utils.WithinTolerance(total.PaidIn, sumIn, b.Tolerance) ||
			!utils.WithinTolerance(total.PaidOut, sumOut, b.Tolerance) {
			diags = append(diags, models.Diagnostic{
				Kind: models.DiagSummaryMismatch,
				Message: fmt.Sprintf("TOTAL row (in=%.2f out=%.2f) does not match category sums (in=%.2f out=%.2f)",
					total.PaidIn, total.PaidOut, sumIn, sumOut),
			})
		}
		summaries = append(summaries, *total)
	} else if len(summaries) > 0 {
		summaries = append(summaries, models.CategorySummary{
			Category: models.TotalCategory,
			PaidIn:   utils.RoundFloat(sumIn, 2),
			PaidOut:  utils.RoundFloat(sumOut, 2),
		})
	}

	return summaries, diags
}
