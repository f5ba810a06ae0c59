package locale

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyCleaner = strings.NewReplacer(
	"R$", "",
	"r$", "",
	"\u00a0", "",
	" ", "",
	"\t", "",
)

// ParseCurrency converts a Brazilian formatted amount ("R$ 1.234,56",
// "-150,00", "(80,10)") or a numeric cell into its absolute value. Direction
// is never derived here; see IsNegative. Empty or unparseable input yields
// false, an explicit "0,00" yields zero and true.
func ParseCurrency(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.Abs(), true
	case float64:
		return decimal.NewFromFloat(v).Abs(), true
	case float32:
		return decimal.NewFromFloat32(v).Abs(), true
	case int:
		return decimal.NewFromInt(int64(v)).Abs(), true
	case int64:
		return decimal.NewFromInt(v).Abs(), true
	case string:
		return parseCurrencyString(v)
	}

	return decimal.Zero, false
}

// IsNegative reports whether a cell carries an outflow sign: a negative
// number, a leading or trailing minus, or accounting parentheses.
func IsNegative(value any) bool {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.IsNegative()
	case float64:
		return v < 0
	case float32:
		return v < 0
	case int:
		return v < 0
	case int64:
		return v < 0
	case string:
		s := strings.TrimSpace(currencyCleaner.Replace(v))
		return strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") ||
			(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
	}

	return false
}

func parseCurrencyString(s string) (decimal.Decimal, bool) {
	s = currencyCleaner.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, "+-()")
	if s == "" {
		return decimal.Zero, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if !isDecimalPoint(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d.Abs(), true
}

// isDecimalPoint reports whether a comma-free amount uses its single dot as
// a decimal separator ("150.5", "150.00") rather than for thousands ("1.234").
func isDecimalPoint(s string) bool {
	if strings.Count(s, ".") != 1 {
		return false
	}
	frac := len(s) - strings.Index(s, ".") - 1
	return frac == 1 || frac == 2
}
