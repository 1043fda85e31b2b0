// Package money formats engine amounts for display. Amounts stay float64
// inside the pricing pipeline and are rounded only here.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const nbsp = "\u00a0"

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// RUB formats a whole-ruble amount: "1 164 ₽".
func RUB(v float64) string {
	return group(Round(v, 0).StringFixed(0)) + nbsp + "₽"
}

// Number formats with at most two fraction digits and a decimal comma.
func Number(v float64) string {
	s := Round(v, 2).String()
	intPart, frac, _ := strings.Cut(s, ".")
	if frac == "" {
		return group(intPart)
	}
	return group(intPart) + "," + frac
}

// Percent formats a rate such as 0.075 as "7,5%".
func Percent(rate float64) string {
	return Number(rate*100) + "%"
}

func group(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
