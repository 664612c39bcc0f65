package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CurrencySymbol is prefixed to every rendered amount.
const CurrencySymbol = "₱"

const (
	dateLayout     = "January 2, 2006"
	dateTimeLayout = "January 2, 2006 at 03:04 PM"
)

// Currency renders amount with two decimals and the currency glyph.
// Negative amounts keep the sign in front of the glyph. NaN and infinities
// render as zero.
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	s := fmt.Sprintf("%.2f", amount)
	if strings.HasPrefix(s, "-") {
		if s == "-0.00" {
			return CurrencySymbol + "0.00"
		}
		return "-" + CurrencySymbol + s[1:]
	}
	return CurrencySymbol + s
}

// Date renders t as "Month D, Year", optionally followed by hour and minute.
func Date(t time.Time, includeTime bool) string {
	if includeTime {
		return t.Format(dateTimeLayout)
	}
	return t.Format(dateLayout)
}

// ParseDate reads an ISO-8601 timestamp as stored on orders.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StoredDate renders an order's stored timestamp, or the raw value when it
// cannot be parsed.
func StoredDate(s string, includeTime bool) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return Date(t, includeTime)
}
