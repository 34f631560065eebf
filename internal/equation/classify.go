package equation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	numberPattern = `(?:\d+(?:\.\d+)?|\.\d+)`
	coefPattern   = `(?:` + numberPattern + `\*?)?`
)

var (
	// <coef>?x<op><const>
	linearLeading = regexp.MustCompile(`^[+-]?` + coefPattern + `x(?:[+-]` + numberPattern + `)?$`)

	// <const><op><coef>?x
	linearTrailing = regexp.MustCompile(`^[+-]?` + numberPattern + `[+-]` + coefPattern + `x$`)

	constantSide = regexp.MustCompile(`^[+-]?` + numberPattern + `$`)

	// <coef>?x^2 [<op><coef>?x] [<op><const>]
	quadraticSide = regexp.MustCompile(`^[+-]?` + coefPattern + `x\^2(?:[+-]` + coefPattern + `x)?(?:[+-]` + numberPattern + `)?$`)

	arithmetic = regexp.MustCompile(`^[0-9+\-*/().^]+$`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
)

// Classify assigns a normalized equation string to exactly one Shape. The
// rules are evaluated in order and the first match wins:
//
//  1. one '=' with a linear side in x and a constant side: Linear
//  2. one '=' with a quadratic left side and a right side of exactly "0": Quadratic
//  3. any other string containing '=': Unsupported
//  4. digits, operators, parentheses and decimal points only: ArithmeticExpression
//  5. anything else: Unsupported
func Classify(normalized string) Shape {
	if strings.Contains(normalized, "=") {
		lhs, rhs, ok := splitEquation(normalized)
		if !ok {
			return Unsupported
		}

		if (isLinearSide(lhs) && constantSide.MatchString(rhs)) ||
			(constantSide.MatchString(lhs) && isLinearSide(rhs)) {
			return Linear
		}

		if rhs == "0" && quadraticSide.MatchString(lhs) {
			return Quadratic
		}

		return Unsupported
	}

	if arithmetic.MatchString(normalized) && hasDigit.MatchString(normalized) {
		return ArithmeticExpression
	}

	return Unsupported
}

func isLinearSide(s string) bool {
	return linearLeading.MatchString(s) || linearTrailing.MatchString(s)
}

// splitEquation splits on the single '='. Strings with zero or several '='
// are rejected.
func splitEquation(s string) (lhs, rhs string, ok bool) {
	if strings.Count(s, "=") != 1 {
		return "", "", false
	}
	lhs, rhs, _ = strings.Cut(s, "=")
	return lhs, rhs, true
}

// quadraticHint returns guidance for an equation with an x^2 term that
// failed rule 2, or "" when there is none. A right side that is zero written
// another way, such as 0.0 or -0, gets different advice from one that holds
// terms.
func quadraticHint(normalized string) string {
	lhs, rhs, ok := splitEquation(normalized)
	if !ok || rhs == "0" {
		return ""
	}
	if !strings.Contains(lhs, "x^2") && !strings.Contains(rhs, "x^2") {
		return ""
	}
	if d, err := decimal.NewFromString(rhs); err == nil && d.IsZero() {
		return "Write the right side as exactly 0, like 'x^2+5x+6=0'"
	}
	return "Move every term to the left side so the quadratic reads ... = 0"
}
