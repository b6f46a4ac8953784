package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCents renders cents as a two-digit decimal string, e.g. 1800 -> "18.00".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseAmount parses a currency amount such as "12.5" or "12.50" into cents.
// More than two fractional digits are rejected rather than rounded.
func ParseAmount(v string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", v, err)
	}
	return AmountToCents(d)
}

// AmountToCents converts a decimal currency amount to cents.
func AmountToCents(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", d.String())
	}
	return shifted.IntPart(), nil
}
