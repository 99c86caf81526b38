package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/mpesaviz/backend/src/ledger"
	"github.com/username/mpesaviz/backend/src/models"
)

func newTestService() StatementService {
	return NewStatementService(ledger.NewBuilder(0.01), cache.New(time.Minute, time.Minute))
}

func TestNormalize(t *testing.T) {
	svc := newTestService()

	result, err := svc.Normalize([]models.RawRecord{
		{
			"Receipt No.":        "ABC123",
			"Completion Time":    "2024-03-15 14:30:00",
			"Details":            "Pay Bill Online to 888880 - KPLC PREPAID",
			"Transaction Status": "Completed",
			"Withdrawn":          "500.00",
			"Balance":            "1,200.50",
		},
		{
			"Receipt No.":        "ABC124",
			"Completion Time":    "2024-03-16 09:00:00",
			"Details":            "Funds received from - 254712345678 JANE DOE",
			"Transaction Status": "Completed",
			"Paid In":            "1,000.00",
			"Balance":            "2,200.50",
		},
		{
			"TRANSACTION TYPE": "Pay Bill",
			"Withdrawn":        "500.00",
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Statement.Transactions, 2)
	// Newest first.
	assert.Equal(t, "ABC124", result.Statement.Transactions[0].ReceiptID)
	assert.Equal(t, "ABC123", result.Statement.Transactions[1].ReceiptID)

	// The paybill category row plus the synthesized TOTAL.
	require.Len(t, result.Statement.Summaries, 2)
	assert.Equal(t, "LIPA NA M-PESA (PAYBILL):", result.Statement.Summaries[0].Category)
	total, ok := result.Statement.Total()
	require.True(t, ok)
	assert.InDelta(t, 500, total.PaidOut, 0.001)
}

func TestNormalizeRejectsEmptyInput(t *testing.T) {
	svc := newTestService()

	for _, records := range [][]models.RawRecord{
		nil,
		{},
		{{"Unrelated Key": "value"}},
	} {
		_, err := svc.Normalize(records)
		assert.ErrorIs(t, err, ErrParsingFailed)
	}
}

func TestAnalyticsCachedByContentHash(t *testing.T) {
	svc := newTestService()

	paidIn := 1000.0
	stmt := &models.Statement{
		Transactions: []models.Transaction{{
			ReceiptID:   "ABC124",
			CompletedAt: time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC),
			Details:     "Funds received from - 254712345678 JANE DOE",
			Status:      models.StatusCompleted,
			PaidIn:      &paidIn,
			Balance:     2200.50,
		}},
	}

	first, err := svc.Analytics(stmt)
	require.NoError(t, err)
	second, err := svc.Analytics(stmt)
	require.NoError(t, err)

	// Identical content hits the cache and returns the same value.
	assert.Same(t, first, second)
	assert.InDelta(t, 1000, first.NetFlow.TotalIn, 0.001)
	require.Len(t, first.Counterparties, 1)
	assert.Equal(t, "JANE DOE", first.Counterparties[0].Name)

	// A changed statement hashes to a new key and is recomputed.
	withdrawn := 200.0
	stmt.Transactions = append(stmt.Transactions, models.Transaction{
		ReceiptID:   "ABC125",
		CompletedAt: time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC),
		Details:     "Pay Bill Charge",
		Status:      models.StatusCompleted,
		Withdrawn:   &withdrawn,
		Balance:     2000.50,
	})
	third, err := svc.Analytics(stmt)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.InDelta(t, 200, third.NetFlow.TotalOut, 0.001)
}
