package parsers

import (
	"fmt"
	"strings"

	"github.com/username/mpesaviz/backend/src/models"
)

// Field is a logical statement column, independent of how any particular
// extractor version spelled it.
type Field string

const (
	FieldReceipt   Field = "receipt"
	FieldTime      Field = "time"
	FieldDetails   Field = "details"
	FieldStatus    Field = "status"
	FieldPaidIn    Field = "paid_in"
	FieldWithdrawn Field = "withdrawn"
	FieldBalance   Field = "balance"
	FieldCategory  Field = "category"
)

// fieldVariants maps each logical field to the raw keys it has appeared
// under across extractor versions, in precedence order. The first key with
// a non-empty value wins. Absorbing a new extraction quirk is an edit to
// this table, never a new code path.
var fieldVariants = map[Field][]string{
	FieldReceipt:   {"Receipt No.", "Receipt No", "Receipt"},
	FieldTime:      {"Completion Time", "Completion time", "Time"},
	FieldDetails:   {"Details", "Transaction Details", "Description"},
	FieldStatus:    {"Transaction Status", "Status"},
	FieldPaidIn:    {"Paid In", "Paid in", "PAID IN"},
	FieldWithdrawn: {"Withdrawn", "Paid Out", "PAID OUT", "Withdrawal"},
	FieldBalance:   {"Balance", "BALANCE"},
	FieldCategory:  {"TRANSACTION TYPE", "TRANSACTION TYPE:", "Transaction Type"},
}

// Resolve returns the first non-empty value for the logical field, trying
// the field's variant keys in precedence order. A miss yields ("", false);
// it is not an error.
func Resolve(record models.RawRecord, field Field) (string, bool) {
	for _, key := range fieldVariants[field] {
		raw, ok := record[key]
		if !ok {
			continue
		}
		s := stringify(raw)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// stringify flattens a raw cell value. Extractors emit numbers for cleanly
// recognized cells and strings for everything else.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
