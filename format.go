package portal

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatHeader turns a column key into a display header:
// "market_price_usd" becomes "Market Price USD", "user_id" becomes "User ID".
func FormatHeader(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	runes := []rune(s)
	for i, r := range runes {
		if i == 0 || !isWordRune(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	s = string(runes)
	s = strings.ReplaceAll(s, "Id", "ID")
	s = strings.ReplaceAll(s, "Usd", "USD")
	return s
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// FormatCell renders a raw cell value for display.
//
//   - null is "-"
//   - numbers above 1000 that are fractional or above 100000 are currency
//   - fractional numbers strictly between 0 and 100 are percentages
//   - other numbers are grouped by thousands
//   - strings starting with an ISO date are shown as "Jan 2, 2006"
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return t.String()
		}
		return formatNumber(d)
	case float64:
		return formatNumber(decimal.NewFromFloat(t))
	case int:
		return formatNumber(decimal.NewFromInt(int64(t)))
	case string:
		if isoDate.MatchString(t) {
			if on, err := time.Parse("2006-01-02", t[:10]); err == nil {
				return on.Format("Jan 2, 2006")
			}
		}
		return t
	}
	return textOf(v)
}

func formatNumber(d decimal.Decimal) string {
	integer := d.Equal(d.Truncate(0))
	f := d.InexactFloat64()
	if f > 1000 && (!integer || f > 100000) {
		return USD(d).String()
	}
	if f < 100 && f > 0 && !integer {
		return Percent(f).String()
	}
	return groupNumber(d)
}

// groupNumber writes d with thousand separators and at most 3 fraction digits.
func groupNumber(d decimal.Decimal) string {
	d = d.Round(3)
	intPart := d.Truncate(0)
	grouped := money.NewFormatter(0, ".", ",", "", "1").Format(intPart.Abs().IntPart())
	frac := d.Sub(intPart).Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	if frac.IsZero() {
		return sign + grouped
	}
	// frac is "0.xyz"
	fs := strings.TrimPrefix(frac.String(), "0")
	return sign + grouped + fs
}

// FormatCount is an integer grouped by thousands.
func FormatCount(n int) string {
	return groupNumber(decimal.NewFromInt(int64(n)))
}

// Initials returns the upper-case initials of a full name.
func Initials(fullName string) string {
	var b strings.Builder
	for _, w := range strings.Fields(fullName) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return b.String()
}

// TitleCase upper-cases the first letter of every word of a dash or
// underscore separated name: "product-market-data" becomes "Product Market Data".
func TitleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
