package types

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF ",
}

// FormatAmount renders an amount in minor units (cents) with its currency.
func FormatAmount(minor int64, currency string) string {
	cur := strings.ToUpper(currency)
	if cur == "" {
		cur = "EUR"
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	whole := minor / 100
	frac := minor % 100
	digits := groupThousands(whole)

	if sym, ok := currencySymbols[cur]; ok {
		return fmt.Sprintf("%s%s%s.%02d", sign, sym, digits, frac)
	}
	return fmt.Sprintf("%s%s.%02d %s", sign, digits, frac, cur)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ParseAmount reads a decimal major-unit amount ("1,250.50", "20") into
// minor units. At most two decimals are accepted.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && !hasFrac {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var minor int64
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		minor = minor*10 + int64(r-'0')
		if minor < 0 {
			return 0, fmt.Errorf("amount %q is too large", s)
		}
	}
	if neg {
		minor = -minor
	}
	return minor, nil
}
