package processors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

// UnknownCounterparty collects transactions whose details yield no usable
// party name (internal transfers, airtime, bare references).
const UnknownCounterparty = "Internal Transfer/Unknown"

// phonePattern matches a Kenyan MSISDN in national (07..., 01...) or
// international (254...) form embedded in the details text.
var phonePattern = regexp.MustCompile(`(?:254|0)\d{9}`)

type counterpartyProcessorImpl struct{}

func NewCounterpartyProcessor() CounterpartyProcessor {
	return &counterpartyProcessorImpl{}
}

// ExtractParty pulls the counterparty name and phone from a details string.
// The identity fragment is the text after the first hyphen (statement
// details read "Customer Transfer to - 2547... JANE DOE"); without a hyphen
// the whole string is used.
func ExtractParty(details string) (name, phone string) {
	fragment := details
	if idx := strings.Index(details, "-"); idx >= 0 {
		fragment = details[idx+1:]
	}
	fragment = strings.TrimSpace(fragment)

	phone = phonePattern.FindString(fragment)
	name = strings.TrimSpace(strings.Replace(fragment, phone, "", 1))
	name = strings.Join(strings.Fields(name), " ")
	return name, phone
}

func (p *counterpartyProcessorImpl) Process(statement *models.Statement) []models.Counterparty {
	groups := map[string]*models.Counterparty{}

	for i := range statement.Transactions {
		tx := &statement.Transactions[i]
		name, phone := ExtractParty(tx.Details)
		if len(name) < 3 {
			name = UnknownCounterparty
			phone = ""
		}

		group, ok := groups[name]
		if !ok {
			group = &models.Counterparty{Name: name, Phone: phone}
			groups[name] = group
		}
		if group.Phone == "" {
			group.Phone = phone
		}

		amount, _ := tx.Amount()
		group.TotalVolume += amount
		group.TransactionCount++
	}

	parties := make([]models.Counterparty, 0, len(groups))
	for _, group := range groups {
		group.TotalVolume = utils.RoundFloat(group.TotalVolume, 2)
		parties = append(parties, *group)
	}

	sort.Slice(parties, func(i, j int) bool {
		if parties[i].TotalVolume != parties[j].TotalVolume {
			return parties[i].TotalVolume > parties[j].TotalVolume
		}
		if parties[i].TransactionCount != parties[j].TransactionCount {
			return parties[i].TransactionCount > parties[j].TransactionCount
		}
		return parties[i].Name < parties[j].Name
	})

	return parties
}
