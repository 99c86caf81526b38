package processors

import (
	"sort"
	"strings"

	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

type recurringProcessorImpl struct{}

func NewRecurringProcessor() RecurringProcessor {
	return &recurringProcessorImpl{}
}

// recurringKey groups by the text before the first hyphen: a coarser key
// than counterparty extraction, since recurring merchant references vary
// their trailing reference number.
func recurringKey(details string) string {
	key := details
	if idx := strings.Index(details, "-"); idx >= 0 {
		key = details[:idx]
	}
	return strings.TrimSpace(key)
}

func (p *recurringProcessorImpl) Process(statement *models.Statement) []models.RecurringGroup {
	groups := map[string]*models.RecurringGroup{}

	// Statement order is newest first; the first transaction seen for a
	// group is its most recent occurrence.
	for i := range statement.Transactions {
		tx := &statement.Transactions[i]
		key := recurringKey(tx.Details)
		amount, inbound := tx.Amount()

		group, ok := groups[key]
		if !ok {
			group = &models.RecurringGroup{
				Name:     key,
				LastDate: tx.CompletedAt,
				Inbound:  inbound,
			}
			groups[key] = group
		}
		group.Frequency++
		group.TotalVolume += amount
	}

	var recurring []models.RecurringGroup
	for key, group := range groups {
		if group.Frequency <= 1 || len(key) <= 3 {
			continue
		}
		group.TotalVolume = utils.RoundFloat(group.TotalVolume, 2)
		group.Average = utils.RoundFloat(group.TotalVolume/float64(group.Frequency), 2)
		recurring = append(recurring, *group)
	}

	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].TotalVolume != recurring[j].TotalVolume {
			return recurring[i].TotalVolume > recurring[j].TotalVolume
		}
		return recurring[i].Name < recurring[j].Name
	})

	return recurring
}
