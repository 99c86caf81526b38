package utils

import (
	"fmt"
	"time"
)

// CompletionTimeFormat is the timestamp layout used in statement exports.
const CompletionTimeFormat = "2006-01-02 15:04:05"

// DayFormat is the calendar-day key used by time-bucketed analytics.
const DayFormat = "2006-01-02"

// ParseCompletionTime parses a statement timestamp. Timestamps carry no
// zone; they are kept in their own local reading, no conversion.
func ParseCompletionTime(value string) (time.Time, error) {
	if t, err := time.Parse(CompletionTimeFormat, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DayFormat, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
