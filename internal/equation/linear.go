package equation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var errZeroCoefficient = errors.New("coefficient of x is zero")

type linearCoefficients struct {
	coefficient   decimal.Decimal
	constant      decimal.Decimal
	rightHandSide decimal.Decimal
}

// extractLinear reads coefficient*x + constant = rightHandSide from a
// normalized equation, moving the variable side to the left when needed.
func extractLinear(normalized string) (linearCoefficients, error) {
	lhs, rhs, ok := splitEquation(normalized)
	if !ok {
		return linearCoefficients{}, fmt.Errorf("expected exactly one '=' in %q", normalized)
	}
	if !strings.Contains(lhs, "x") {
		lhs, rhs = rhs, lhs
	}

	left, err := parseTerms(lhs)
	if err != nil {
		return linearCoefficients{}, fmt.Errorf("left side: %w", err)
	}
	right, err := parseTerms(rhs)
	if err != nil {
		return linearCoefficients{}, fmt.Errorf("right side: %w", err)
	}

	for _, t := range right {
		if t.hasVariable() {
			return linearCoefficients{}, errors.New("variable on both sides")
		}
	}

	leftSums, err := sumByPower(left, 1)
	if err != nil {
		return linearCoefficients{}, err
	}
	rightSums, err := sumByPower(right, 0)
	if err != nil {
		return linearCoefficients{}, err
	}

	c := linearCoefficients{
		coefficient:   leftSums[1],
		constant:      leftSums[0],
		rightHandSide: rightSums[0],
	}
	if c.coefficient.IsZero() {
		return linearCoefficients{}, errZeroCoefficient
	}

	return c, nil
}

func solveLinear(normalized string) SolveResult {
	c, err := extractLinear(normalized)
	if err != nil {
		return failure(normalized, Linear, OutcomeParseFailure, msgLinearParseFailure, stepTryAnotherFormat, err)
	}

	isolated := c.rightHandSide.Sub(c.constant)
	x := isolated.Div(c.coefficient)
	xf, _ := x.Float64()
	if !finite(xf) {
		return failure(normalized, Linear, OutcomeParseFailure, msgLinearParseFailure, stepTryAnotherFormat, errOutOfRange)
	}
	result := fixed2(xf)

	lhs := variableTerm(c.coefficient, 1)
	op, magnitude := signed(c.constant.Neg())

	move := fmt.Sprintf("Subtract %s from both sides: %s = %s", c.constant, lhs, isolated)
	if c.constant.IsNegative() {
		move = fmt.Sprintf("Add %s to both sides: %s = %s", c.constant.Abs(), lhs, isolated)
	}

	return SolveResult{
		Equation:   normalized,
		Normalized: normalized,
		Shape:      Linear,
		Outcome:    OutcomeSolved,
		Solution:   "x = " + result,
		Steps: []string{
			"Start with the equation: " + normalized,
			fmt.Sprintf("Isolate the variable term on the left: %s = %s %s %s", lhs, c.rightHandSide, op, magnitude),
			move,
			fmt.Sprintf("Divide both sides by %s: x = %s", c.coefficient, result),
		},
		Roots: []float64{round2(xf)},
	}
}
