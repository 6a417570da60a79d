package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayouts are the formats a stored timestamp may appear in: RFC3339 for
// application-written rows, the sqlite CURRENT_TIMESTAMP shape for
// database-defaulted columns, and bare dates.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a stored date string in any of the supported layouts.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date %q", str)
}

// ParseDecimal parses a stored decimal string.
func ParseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal %q: %w", str, err)
	}
	return d, nil
}
