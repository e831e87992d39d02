package documents

import (
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is used when the school has not configured one
const DefaultCurrency = "FCFA"

// FormatAmount groups thousands with spaces: 1500000 → "1 500 000".
// Fractions are kept to two decimals with a comma.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}

	negative := v < 0
	v = math.Abs(v)
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if negative && cents != 0 {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if frac != 0 {
		b.WriteByte(',')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}

// FormatMoney is FormatAmount followed by the currency
func FormatMoney(v float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return FormatAmount(v) + " " + currency
}
