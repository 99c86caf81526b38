package parsers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount is returned for a non-empty value that cannot be read
// as a monetary amount. Empty and zero values are "absent", not errors.
var ErrMalformedAmount = errors.New("malformed amount")

var amountPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*(\.\d+)?$|^-?\d+(\.\d+)?$`)

// ParseAmount turns a locale-formatted monetary string into a non-negative
// value. Empty strings, "0" and "0.00" normalize to nil so that absence can
// be distinguished from a true zero-value transaction.
func ParseAmount(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	if d.IsZero() {
		return nil, nil
	}

	// Extractors occasionally emit debits with a sign; the ledger keeps
	// direction in the column, not the value.
	v, _ := d.Abs().Float64()
	return &v, nil
}

// categorySynonyms maps normalized historical export labels to the fixed
// canonical vocabulary. Keys are uppercase with trailing colons stripped.
// Adding a new extractor-version quirk is a data edit here, not a code path.
var categorySynonyms = map[string]string{
	"PAY BILL":                 "LIPA NA M-PESA (PAYBILL):",
	"PAYBILL":                  "LIPA NA M-PESA (PAYBILL):",
	"LIPA NA M-PESA PAYBILL":   "LIPA NA M-PESA (PAYBILL):",
	"BUY GOODS":                "LIPA NA M-PESA (BUY GOODS):",
	"MERCHANT PAYMENT":         "LIPA NA M-PESA (BUY GOODS):",
	"LIPA NA M-PESA BUY GOODS": "LIPA NA M-PESA (BUY GOODS):",
	"WITHDRAWAL":               "CASH WITHDRAWAL:",
	"CASH OUT":                 "CASH WITHDRAWAL:",
	"AGENT WITHDRAWAL":         "CASH WITHDRAWAL:",
	"DEPOSIT":                  "CASH DEPOSIT:",
	"CASH IN":                  "CASH DEPOSIT:",
	"AGENT DEPOSIT":            "CASH DEPOSIT:",
	"AIRTIME":                  "AIRTIME PURCHASE:",
	"AIRTIME PURCHASE":         "AIRTIME PURCHASE:",
	"SEND MONEY":               "SEND MONEY:",
	"CUSTOMER TRANSFER":        "SEND MONEY:",
	"FUNDS RECEIVED":           "FUNDS RECEIVED:",
	"RECEIVED MONEY":           "FUNDS RECEIVED:",
	"OD WITHDRAW":              "OD WITHDRAWAL (FULIZA):",
	"OVERDRAFT WITHDRAW":       "OD WITHDRAWAL (FULIZA):",
	"FULIZA WITHDRAW":          "OD WITHDRAWAL (FULIZA):",
	"OD DEPOSIT":               "OD REPAYMENT (FULIZA):",
	"OVERDRAFT DEPOSIT":        "OD REPAYMENT (FULIZA):",
	"FULIZA REPAYMENT":         "OD REPAYMENT (FULIZA):",
	"TOTAL":                    "TOTAL:",
}

// CanonicalCategory maps a raw category label to its canonical form:
// uppercase, colon-terminated, with known synonyms collapsed. Unrecognized
// labels are preserved uppercase+colon rather than rejected.
func CanonicalCategory(label string) string {
	key := strings.ToUpper(strings.TrimSpace(label))
	key = strings.TrimSuffix(key, ":")
	key = strings.Join(strings.Fields(key), " ")
	if key == "" {
		return ""
	}
	if canonical, ok := categorySynonyms[key]; ok {
		return canonical
	}
	return key + ":"
}
