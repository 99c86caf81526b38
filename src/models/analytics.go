package models

import "time"

// NetFlow is the statement-level cash flow summary, cross-validated against
// the extracted TOTAL summary row.
type NetFlow struct {
	TotalIn        float64 `json:"total_in"`
	TotalOut       float64 `json:"total_out"`
	Net            float64 `json:"net"`
	SummaryNet     float64 `json:"summary_net"`
	Reconciles     bool    `json:"reconciles"`
	Delta          float64 `json:"delta"`
	CurrentBalance float64 `json:"current_balance"`
	Count          int     `json:"transaction_count"`
}

// FeeBreakdown aggregates transactions identified as charges.
type FeeBreakdown struct {
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	Average    float64            `json:"average"`
	ByCategory []FeeCategoryTotal `json:"by_category"`
	Daily      []FeeDayTotal      `json:"daily"`
	// Ratio is total fees over total withdrawn; nil when the statement has
	// no withdrawals at all (undefined, not zero).
	Ratio *float64 `json:"ratio,omitempty"`
}

type FeeCategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type FeeDayTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DayBucket is one calendar day of activity, in the timestamps' own timezone.
type DayBucket struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Count   int     `json:"count"`
}

// MonthBucket is one calendar month of paid-in / withdrawn totals.
type MonthBucket struct {
	Month     string  `json:"month"`
	PaidIn    float64 `json:"paid_in"`
	Withdrawn float64 `json:"withdrawn"`
}

// Trends is the time-bucketed view of a statement. Buckets are ascending by
// date regardless of the statement's own transaction ordering.
type Trends struct {
	Daily         []DayBucket   `json:"daily"`
	Monthly       []MonthBucket `json:"monthly"`
	HighestSpend  *DayBucket    `json:"highest_spend_day,omitempty"`
	Busiest       *DayBucket    `json:"busiest_day,omitempty"`
	AvgDailySpend float64       `json:"avg_daily_spend"`
}

// Counterparty is the other party in a group of transactions, inferred from
// free-text details. Derived transiently, never persisted.
type Counterparty struct {
	Name             string  `json:"name"`
	Phone            string  `json:"phone,omitempty"`
	TotalVolume      float64 `json:"total_volume"`
	TransactionCount int     `json:"transaction_count"`
}

// RecurringGroup is a detected repeating payment pattern.
type RecurringGroup struct {
	Name        string    `json:"name"`
	Frequency   int       `json:"frequency"`
	TotalVolume float64   `json:"total_volume"`
	Average     float64   `json:"average"`
	LastDate    time.Time `json:"last_date"`
	Inbound     bool      `json:"inbound"`
}
