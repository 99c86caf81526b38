package processors

import (
	"sort"
	"strings"

	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

// feeKeywords identify a charge transaction anywhere in its details text.
var feeKeywords = []string{"charge", "cost", "fee"}

// feeCategoryRules assign a fee category by ordered keyword match against
// the details text; first match wins.
var feeCategoryRules = []struct {
	keyword  string
	category string
}{
	{"pay bill", "Paybill Fees"},
	{"withdrawal", "Withdrawal Fees"},
	{"fuliza", "Overdraft Interest"},
}

const feeCategoryOther = "Other Charges"

type feeProcessorImpl struct{}

func NewFeeProcessor() FeeProcessor {
	return &feeProcessorImpl{}
}

// IsFee reports whether a transaction is a charge, based on its details text.
func IsFee(tx *models.Transaction) bool {
	details := strings.ToLower(tx.Details)
	for _, kw := range feeKeywords {
		if strings.Contains(details, kw) {
			return true
		}
	}
	return false
}

// FeeCategory assigns a fee category from the details text.
func FeeCategory(details string) string {
	lower := strings.ToLower(details)
	for _, rule := range feeCategoryRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.category
		}
	}
	return feeCategoryOther
}

func (p *feeProcessorImpl) Process(statement *models.Statement) models.FeeBreakdown {
	var (
		breakdown      models.FeeBreakdown
		totalWithdrawn float64
		byCategory     = map[string]float64{}
		byDay          = map[string]float64{}
	)

	for i := range statement.Transactions {
		tx := &statement.Transactions[i]
		if tx.Withdrawn != nil {
			totalWithdrawn += *tx.Withdrawn
		}
		if !IsFee(tx) {
			continue
		}

		amount, inbound := tx.Amount()
		if inbound {
			// Reversed charges come back as paid-in; they are not a cost.
			continue
		}

		breakdown.Total += amount
		breakdown.Count++
		byCategory[FeeCategory(tx.Details)] += amount
		if !tx.CompletedAt.IsZero() {
			byDay[tx.CompletedAt.Format(utils.DayFormat)] += amount
		}
	}

	breakdown.Total = utils.RoundFloat(breakdown.Total, 2)
	if breakdown.Count > 0 {
		breakdown.Average = utils.RoundFloat(breakdown.Total/float64(breakdown.Count), 2)
	}

	// Ratio is undefined, not zero, when nothing was withdrawn at all.
	if totalWithdrawn > 0 {
		ratio := utils.RoundFloat(breakdown.Total/totalWithdrawn, 4)
		breakdown.Ratio = &ratio
	}

	for category, amount := range byCategory {
		breakdown.ByCategory = append(breakdown.ByCategory, models.FeeCategoryTotal{
			Category: category,
			Amount:   utils.RoundFloat(amount, 2),
		})
	}
	sort.Slice(breakdown.ByCategory, func(i, j int) bool {
		a, b := breakdown.ByCategory[i], breakdown.ByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})

	for day, amount := range byDay {
		breakdown.Daily = append(breakdown.Daily, models.FeeDayTotal{
			Date:   day,
			Amount: utils.RoundFloat(amount, 2),
		})
	}
	sort.Slice(breakdown.Daily, func(i, j int) bool {
		return breakdown.Daily[i].Date < breakdown.Daily[j].Date
	})

	return breakdown
}
