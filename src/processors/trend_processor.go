package processors

import (
	"sort"

	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

type trendProcessorImpl struct{}

func NewTrendProcessor() TrendProcessor {
	return &trendProcessorImpl{}
}

func (p *trendProcessorImpl) Process(statement *models.Statement) models.Trends {
	var trends models.Trends

	daily := map[string]*models.DayBucket{}
	monthly := map[string]*models.MonthBucket{}

	for _, tx := range statement.Transactions {
		if tx.CompletedAt.IsZero() {
			continue
		}
		// Calendar day in the timestamp's own timezone, no conversion.
		dayKey := tx.CompletedAt.Format(utils.DayFormat)
		monthKey := tx.CompletedAt.Format("2006-01")

		day, ok := daily[dayKey]
		if !ok {
			day = &models.DayBucket{Date: dayKey}
			daily[dayKey] = day
		}
		month, ok := monthly[monthKey]
		if !ok {
			month = &models.MonthBucket{Month: monthKey}
			monthly[monthKey] = month
		}

		if tx.PaidIn != nil {
			day.Income += *tx.PaidIn
			month.PaidIn += *tx.PaidIn
		}
		if tx.Withdrawn != nil {
			day.Expense += *tx.Withdrawn
			month.Withdrawn += *tx.Withdrawn
		}
		day.Count++
	}

	for _, bucket := range daily {
		bucket.Income = utils.RoundFloat(bucket.Income, 2)
		bucket.Expense = utils.RoundFloat(bucket.Expense, 2)
		trends.Daily = append(trends.Daily, *bucket)
	}
	// Buckets ascend by date regardless of statement ordering.
	sort.Slice(trends.Daily, func(i, j int) bool {
		return trends.Daily[i].Date < trends.Daily[j].Date
	})

	for _, bucket := range monthly {
		bucket.PaidIn = utils.RoundFloat(bucket.PaidIn, 2)
		bucket.Withdrawn = utils.RoundFloat(bucket.Withdrawn, 2)
		trends.Monthly = append(trends.Monthly, *bucket)
	}
	sort.Slice(trends.Monthly, func(i, j int) bool {
		return trends.Monthly[i].Month < trends.Monthly[j].Month
	})

	var totalExpense float64
	for i := range trends.Daily {
		bucket := &trends.Daily[i]
		totalExpense += bucket.Expense

		// Ties break toward the earliest date; ascending order makes the
		// first strict maximum the winner.
		if trends.HighestSpend == nil || bucket.Expense > trends.HighestSpend.Expense {
			trends.HighestSpend = bucket
		}
		if trends.Busiest == nil || bucket.Count > trends.Busiest.Count {
			trends.Busiest = bucket
		}
	}
	if len(trends.Daily) > 0 {
		trends.AvgDailySpend = utils.RoundFloat(totalExpense/float64(len(trends.Daily)), 2)
	}

	return trends
}
