package services

import (
	"context"
	"io"

	"github.com/username/mpesaviz/backend/src/models"
)

// StatementResult is what a successful normalization yields: the canonical
// statement plus the non-fatal diagnostics callers may surface as warnings.
type StatementResult struct {
	Statement   *models.Statement   `json:"statement"`
	Diagnostics []models.Diagnostic `json:"diagnostics,omitempty"`
}

// Analytics is every derived view of one statement, computed in a single
// pure pass over it.
type Analytics struct {
	NetFlow        models.NetFlow          `json:"net_flow"`
	Fees           models.FeeBreakdown     `json:"fees"`
	Trends         models.Trends           `json:"trends"`
	Counterparties []models.Counterparty   `json:"counterparties"`
	Recurring      []models.RecurringGroup `json:"recurring"`
}

// StatementService normalizes raw extractor rows into a canonical Statement
// and derives analytics from it.
type StatementService interface {
	Normalize(records []models.RawRecord) (*StatementResult, error)
	Analytics(statement *models.Statement) (*Analytics, error)
}

// ExtractorClient transfers a document to the external extraction service.
// The transfer result is transport-level only.
type ExtractorClient interface {
	Submit(ctx context.Context, token, filename, passCode string, file io.Reader) error
}
