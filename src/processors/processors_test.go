package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/mpesaviz/backend/src/models"
)

func amt(v float64) *float64 { return &v }

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func inboundTx(receipt string, at time.Time, amount, balance float64, details string) models.Transaction {
	return models.Transaction{
		ReceiptID:   receipt,
		CompletedAt: at,
		Details:     details,
		Status:      models.StatusCompleted,
		PaidIn:      amt(amount),
		Balance:     balance,
	}
}

func outboundTx(receipt string, at time.Time, amount, balance float64, details string) models.Transaction {
	return models.Transaction{
		ReceiptID:   receipt,
		CompletedAt: at,
		Details:     details,
		Status:      models.StatusCompleted,
		Withdrawn:   amt(amount),
		Balance:     balance,
	}
}

// statement builds a Statement in canonical newest-first order.
func statement(txs ...models.Transaction) *models.Statement {
	return &models.Statement{Transactions: txs}
}

func TestNetFlowProcessor(t *testing.T) {
	p := NewNetFlowProcessor()

	t.Run("computes totals and current balance", func(t *testing.T) {
		stmt := statement(
			outboundTx("N3", day(3, 10), 300, 800, "Pay Bill to 888880 - KPLC"),
			inboundTx("N2", day(2, 10), 1000, 1100, "Funds received from - 254712345678 JANE DOE"),
			inboundTx("N1", day(1, 10), 100, 100, "Funds received from - 254712345678 JANE DOE"),
		)

		flow := p.Process(stmt)
		assert.InDelta(t, 1100, flow.TotalIn, 0.001)
		assert.InDelta(t, 300, flow.TotalOut, 0.001)
		assert.InDelta(t, 800, flow.Net, 0.001)
		assert.Equal(t, 3, flow.Count)
		// Newest-first: the first row carries the closing balance.
		assert.InDelta(t, 800, flow.CurrentBalance, 0.001)
	})

	t.Run("cross-validates against the TOTAL row", func(t *testing.T) {
		stmt := statement(
			inboundTx("N1", day(1, 10), 1000, 1000, "deposit"),
			outboundTx("N2", day(2, 10), 400, 600, "Pay Bill"),
		)
		stmt.Summaries = []models.CategorySummary{
			{Category: "FUNDS RECEIVED:", PaidIn: 1000},
			{Category: "LIPA NA M-PESA (PAYBILL):", PaidOut: 400},
			{Category: models.TotalCategory, PaidIn: 1000, PaidOut: 400},
		}

		flow := p.Process(stmt)
		assert.InDelta(t, 600, flow.SummaryNet, 0.001)
		assert.InDelta(t, 0, flow.Delta, 0.001)
		assert.True(t, flow.Reconciles)
	})

	t.Run("reports disagreement with the TOTAL row", func(t *testing.T) {
		stmt := statement(inboundTx("N1", day(1, 10), 1000, 1000, "deposit"))
		stmt.Summaries = []models.CategorySummary{
			{Category: models.TotalCategory, PaidIn: 1200, PaidOut: 0},
		}

		flow := p.Process(stmt)
		assert.False(t, flow.Reconciles)
		assert.InDelta(t, -200, flow.Delta, 0.001)
	})

	t.Run("empty statement", func(t *testing.T) {
		flow := p.Process(statement())
		assert.Zero(t, flow.Count)
		assert.Zero(t, flow.CurrentBalance)
		assert.False(t, flow.Reconciles)
	})
}

func TestFeeCategory(t *testing.T) {
	tests := []struct {
		details string
		want    string
	}{
		{"Pay Bill Charge", "Paybill Fees"},
		{"Withdrawal Charge", "Withdrawal Fees"},
		{"Fuliza M-Pesa interest charge", "Overdraft Interest"},
		{"Customer Transfer charge", "Other Charges"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FeeCategory(tt.details), "details=%q", tt.details)
	}
}

func TestFeeProcessor(t *testing.T) {
	p := NewFeeProcessor()

	stmt := statement(
		outboundTx("F1", day(3, 10), 200, 1000, "Pay Bill to 888880 - KPLC"),
		outboundTx("F2", day(3, 11), 23, 977, "Pay Bill Charge"),
		outboundTx("F3", day(2, 10), 500, 1500, "Withdraw Cash at Agent"),
		outboundTx("F4", day(2, 11), 30, 1470, "Withdrawal Charge"),
		outboundTx("F5", day(2, 12), 10, 1460, "Customer Transfer fee"),
		inboundTx("F6", day(1, 10), 23, 2000, "Reversal of charge"),
	)

	fees := p.Process(stmt)
	assert.InDelta(t, 63, fees.Total, 0.001)
	assert.Equal(t, 3, fees.Count)
	assert.InDelta(t, 21, fees.Average, 0.001)

	require.NotNil(t, fees.Ratio)
	assert.InDelta(t, 63.0/763.0, *fees.Ratio, 0.001)

	require.Len(t, fees.ByCategory, 3)
	assert.Equal(t, "Withdrawal Fees", fees.ByCategory[0].Category)
	assert.InDelta(t, 30, fees.ByCategory[0].Amount, 0.001)

	require.Len(t, fees.Daily, 2)
	assert.Equal(t, "2024-03-02", fees.Daily[0].Date)
	assert.InDelta(t, 40, fees.Daily[0].Amount, 0.001)
	assert.Equal(t, "2024-03-03", fees.Daily[1].Date)
	assert.InDelta(t, 23, fees.Daily[1].Amount, 0.001)
}

func TestFeeProcessorRatioUndefinedWithoutWithdrawals(t *testing.T) {
	p := NewFeeProcessor()
	fees := p.Process(statement(
		inboundTx("F1", day(1, 10), 100, 100, "Funds received"),
	))
	assert.Nil(t, fees.Ratio)
	assert.Zero(t, fees.Total)
}

func TestTrendProcessor(t *testing.T) {
	p := NewTrendProcessor()

	stmt := statement(
		outboundTx("T5", day(3, 9), 50, 950, "Pay Bill"),
		outboundTx("T4", day(2, 15), 300, 1000, "Withdraw"),
		outboundTx("T3", day(2, 10), 100, 1300, "Pay Bill"),
		inboundTx("T2", day(1, 12), 1400, 1400, "Funds received"),
		outboundTx("T1", day(1, 9), 300, 0, "Pay Bill"),
	)

	trends := p.Process(stmt)

	require.Len(t, trends.Daily, 3)
	assert.Equal(t, "2024-03-01", trends.Daily[0].Date)
	assert.Equal(t, "2024-03-02", trends.Daily[1].Date)
	assert.Equal(t, "2024-03-03", trends.Daily[2].Date)
	assert.InDelta(t, 1400, trends.Daily[0].Income, 0.001)
	assert.InDelta(t, 300, trends.Daily[0].Expense, 0.001)
	assert.Equal(t, 2, trends.Daily[0].Count)

	require.Len(t, trends.Monthly, 1)
	assert.Equal(t, "2024-03", trends.Monthly[0].Month)
	assert.InDelta(t, 1400, trends.Monthly[0].PaidIn, 0.001)
	assert.InDelta(t, 750, trends.Monthly[0].Withdrawn, 0.001)

	require.NotNil(t, trends.HighestSpend)
	assert.Equal(t, "2024-03-02", trends.HighestSpend.Date)
	require.NotNil(t, trends.Busiest)
	// Days 1 and 2 tie at two transactions; the earliest wins.
	assert.Equal(t, "2024-03-01", trends.Busiest.Date)

	assert.InDelta(t, 250, trends.AvgDailySpend, 0.001)
}

func TestTrendProcessorHighestSpendTieBreaksEarliest(t *testing.T) {
	p := NewTrendProcessor()
	stmt := statement(
		outboundTx("T2", day(5, 10), 100, 0, "Pay Bill"),
		outboundTx("T1", day(2, 10), 100, 100, "Pay Bill"),
	)
	trends := p.Process(stmt)
	require.NotNil(t, trends.HighestSpend)
	assert.Equal(t, "2024-03-02", trends.HighestSpend.Date)
}

func TestExtractParty(t *testing.T) {
	tests := []struct {
		name      string
		details   string
		wantName  string
		wantPhone string
	}{
		{
			name:      "international phone with name",
			details:   "Customer Transfer to - 254712345678 JANE DOE",
			wantName:  "JANE DOE",
			wantPhone: "254712345678",
		},
		{
			name:      "national phone form",
			details:   "Funds received from - 0712345678 JOHN OTIENO",
			wantName:  "JOHN OTIENO",
			wantPhone: "0712345678",
		},
		{
			name:     "merchant without phone",
			details:  "Pay Bill Online to 888880 - KPLC PREPAID",
			wantName: "KPLC PREPAID",
		},
		{
			name:     "no hyphen uses whole string",
			details:  "Airtime Purchase",
			wantName: "Airtime Purchase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, phone := ExtractParty(tt.details)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPhone, phone)
		})
	}
}

func TestCounterpartyProcessor(t *testing.T) {
	p := NewCounterpartyProcessor()

	stmt := statement(
		outboundTx("C4", day(4, 10), 500, 0, "Customer Transfer to - 254712345678 JANE DOE"),
		outboundTx("C3", day(3, 10), 300, 500, "Customer Transfer to - 254712345678 JANE DOE"),
		outboundTx("C2", day(2, 10), 200, 800, "Pay Bill Online to 888880 - KPLC PREPAID"),
		outboundTx("C1", day(1, 10), 100, 1000, "Airtime Purchase -"),
	)

	parties := p.Process(stmt)
	require.Len(t, parties, 3)

	assert.Equal(t, "JANE DOE", parties[0].Name)
	assert.Equal(t, "254712345678", parties[0].Phone)
	assert.InDelta(t, 800, parties[0].TotalVolume, 0.001)
	assert.Equal(t, 2, parties[0].TransactionCount)

	assert.Equal(t, "KPLC PREPAID", parties[1].Name)
	assert.Empty(t, parties[1].Phone)

	// The empty fragment after the hyphen groups under the unknown bucket.
	assert.Equal(t, UnknownCounterparty, parties[2].Name)
	assert.InDelta(t, 100, parties[2].TotalVolume, 0.001)
}

func TestRecurringProcessor(t *testing.T) {
	p := NewRecurringProcessor()

	stmt := statement(
		outboundTx("R5", day(10, 10), 520, 0, "Pay Bill Online to 888880 - KPLC PREPAID ref 2"),
		outboundTx("R4", day(9, 10), 75, 520, "Buy"),
		outboundTx("R3", day(8, 10), 480, 595, "Pay Bill Online to 888880 - KPLC PREPAID ref 1"),
		outboundTx("R2", day(7, 10), 60, 1075, "Buy"),
		outboundTx("R1", day(5, 10), 1000, 1135, "Withdraw Cash at Agent - 0712345678 AGENT ONE"),
	)

	groups := p.Process(stmt)
	// "Buy" repeats but its key is too short; the withdrawal occurs once.
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Pay Bill Online to 888880", g.Name)
	assert.Equal(t, 2, g.Frequency)
	assert.InDelta(t, 1000, g.TotalVolume, 0.001)
	assert.InDelta(t, 500, g.Average, 0.001)
	// Newest first: the first occurrence seen is the most recent one.
	assert.Equal(t, day(10, 10), g.LastDate)
	assert.False(t, g.Inbound)
}

func TestProcessorsAreIdempotent(t *testing.T) {
	stmt := statement(
		outboundTx("I2", day(2, 10), 23, 977, "Pay Bill Charge"),
		inboundTx("I1", day(1, 10), 1000, 1000, "Funds received from - 254712345678 JANE DOE"),
	)

	fees := NewFeeProcessor()
	first := fees.Process(stmt)
	second := fees.Process(stmt)
	assert.Equal(t, first, second)

	flow := NewNetFlowProcessor()
	assert.Equal(t, flow.Process(stmt), flow.Process(stmt))

	trends := NewTrendProcessor()
	assert.Equal(t, trends.Process(stmt), trends.Process(stmt))
}
