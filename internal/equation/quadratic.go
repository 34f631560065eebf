package equation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	errNonZeroRightSide = errors.New("right side must be 0; move every term to the left")
	errZeroLeading      = errors.New("coefficient of x^2 is zero")
)

type quadraticCoefficients struct {
	a, b, c decimal.Decimal
}

// discriminant is b² − 4ac, exact for decimal coefficients.
func (q quadraticCoefficients) discriminant() decimal.Decimal {
	return q.b.Mul(q.b).Sub(decimal.NewFromInt(4).Mul(q.a).Mul(q.c))
}

func extractQuadratic(normalized string) (quadraticCoefficients, error) {
	lhs, rhs, ok := splitEquation(normalized)
	if !ok {
		return quadraticCoefficients{}, fmt.Errorf("expected exactly one '=' in %q", normalized)
	}
	if rhs != "0" {
		return quadraticCoefficients{}, errNonZeroRightSide
	}

	terms, err := parseTerms(lhs)
	if err != nil {
		return quadraticCoefficients{}, fmt.Errorf("left side: %w", err)
	}
	sums, err := sumByPower(terms, 2)
	if err != nil {
		return quadraticCoefficients{}, err
	}

	q := quadraticCoefficients{a: sums[2], b: sums[1], c: sums[0]}
	if q.a.IsZero() {
		return quadraticCoefficients{}, errZeroLeading
	}
	return q, nil
}

func solveQuadratic(normalized string) SolveResult {
	q, err := extractQuadratic(normalized)
	if err != nil {
		return failure(normalized, Quadratic, OutcomeParseFailure, msgQuadraticParseFailure, stepTryAnotherFormat, err)
	}

	d := q.discriminant()
	bOp, bAbs := signed(q.b)
	cOp, cAbs := signed(q.c)

	steps := []string{
		fmt.Sprintf("Standard form: %s %s %sx %s %s = 0", variableTerm(q.a, 2), bOp, bAbs, cOp, cAbs),
		"Using the quadratic formula: x = (-b ± √(b² - 4ac)) / 2a",
		fmt.Sprintf("a = %s, b = %s, c = %s", q.a, q.b, q.c),
		fmt.Sprintf("Discriminant = b² - 4ac = %s - 4(%s)(%s) = %s", squared(q.b), q.a, q.c, d),
	}

	r := SolveResult{
		Equation:   normalized,
		Normalized: normalized,
		Shape:      Quadratic,
	}

	negB := q.b.Neg()
	twoA := q.a.Mul(decimal.NewFromInt(2))
	negBf := negB.InexactFloat64()
	twoAf := twoA.InexactFloat64()
	sq := math.Sqrt(math.Abs(d.InexactFloat64()))
	if !finite(negBf, twoAf, sq, (negBf+sq)/twoAf, (negBf-sq)/twoAf) {
		return failure(normalized, Quadratic, OutcomeParseFailure, msgQuadraticParseFailure, stepTryAnotherFormat, errOutOfRange)
	}

	switch d.Sign() {
	case -1:
		r.Outcome = OutcomeNoRealSolution
		r.Solution = msgNoRealSolutions
		steps = append(steps, "Since discriminant < 0, there are no real solutions")
	case 0:
		x := negBf / twoAf
		r.Outcome = OutcomeSolved
		r.Solution = "x = " + fixed2(x)
		r.Roots = []float64{round2(x)}
		steps = append(steps, fmt.Sprintf("x = %s / (2 * %s) = %s", negB, q.a, fixed2(x)))
	default:
		x1 := (negBf + sq) / twoAf
		x2 := (negBf - sq) / twoAf
		r.Outcome = OutcomeSolved
		r.Solution = fmt.Sprintf("x₁ = %s, x₂ = %s", fixed2(x1), fixed2(x2))
		r.Roots = []float64{round2(x1), round2(x2)}
		steps = append(steps,
			fmt.Sprintf("x₁ = (%s + √%s) / %s = %s", negB, d, twoA, fixed2(x1)),
			fmt.Sprintf("x₂ = (%s - √%s) / %s = %s", negB, d, twoA, fixed2(x2)),
		)
	}

	r.Steps = steps
	return r
}
