package equation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var errOutOfRange = errors.New("result is out of the representable range")

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// fixed2 renders f with exactly two decimals, rounding half away from zero.
// Negative zero prints as 0.00.
func fixed2(f float64) string {
	if f == 0 {
		f = 0
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

func round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

// variableTerm renders coefficient*x the way a person writes it: "x", "-x", "2.5x".
func variableTerm(coefficient decimal.Decimal, power int) string {
	v := "x"
	if power == 2 {
		v = "x^2"
	}

	switch {
	case coefficient.Equal(decimal.NewFromInt(1)):
		return v
	case coefficient.Equal(decimal.NewFromInt(-1)):
		return "-" + v
	default:
		return coefficient.String() + v
	}
}

// signed splits d into a binary operator and its magnitude so that "+ -4"
// renders as "- 4".
func signed(d decimal.Decimal) (string, string) {
	if d.IsNegative() {
		return "-", d.Abs().String()
	}
	return "+", d.String()
}

// squared renders d² with negative bases parenthesized.
func squared(d decimal.Decimal) string {
	if d.IsNegative() {
		return fmt.Sprintf("(%s)²", d)
	}
	return d.String() + "²"
}
