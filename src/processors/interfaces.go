package processors

import (
	"github.com/username/mpesaviz/backend/src/models"
)

// All processors are pure reads over a canonical Statement: re-derivable at
// any time, no hidden state, safe to invoke repeatedly or concurrently.

// NetFlowProcessor computes statement-level cash flow and cross-validates
// it against the TOTAL summary row.
type NetFlowProcessor interface {
	Process(statement *models.Statement) models.NetFlow
}

// FeeProcessor identifies charge transactions and breaks them down by
// category and by day.
type FeeProcessor interface {
	Process(statement *models.Statement) models.FeeBreakdown
}

// TrendProcessor buckets transactions by calendar day and month.
type TrendProcessor interface {
	Process(statement *models.Statement) models.Trends
}

// CounterpartyProcessor groups transactions by the party inferred from the
// details text.
type CounterpartyProcessor interface {
	Process(statement *models.Statement) []models.Counterparty
}

// RecurringProcessor detects repeating payment patterns.
type RecurringProcessor interface {
	Process(statement *models.Statement) []models.RecurringGroup
}
