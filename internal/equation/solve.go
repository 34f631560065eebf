// Package equation classifies and solves the small family of equations the
// service understands: single-variable linear equations, quadratics with a
// zero right side and plain arithmetic expressions.
package equation

import "fmt"

var solvers = map[Shape]func(string) SolveResult{
	Linear:               solveLinear,
	Quadratic:            solveQuadratic,
	ArithmeticExpression: solveArithmetic,
}

// Solve classifies an already normalized equation string and routes it to
// the matching solver. It never panics; every path returns a displayable
// result whose Outcome tells success from fallback text.
func Solve(normalized string) (result SolveResult) {
	shape := Classify(normalized)

	defer func() {
		if rec := recover(); rec != nil {
			result = failure(normalized, shape, OutcomeEvaluationFailure, msgEvaluationFailure, stepCheckSyntax, fmt.Errorf("solver panic: %v", rec))
		}
	}()

	solve, ok := solvers[shape]
	if !ok {
		return unsupported(normalized)
	}
	return solve(normalized)
}

// SolveInput normalizes raw input and solves it. The result keeps raw as its
// Equation.
func SolveInput(raw string) SolveResult {
	result := Solve(Normalize(raw))
	result.Equation = raw
	return result
}

func unsupported(normalized string) SolveResult {
	steps := []string{
		"This solver handles single-variable linear equations, quadratic equations and arithmetic expressions.",
		"Try a simple linear equation like '2x+5=13' or a quadratic equation like 'x^2+5x+6=0'",
	}
	if hint := quadraticHint(normalized); hint != "" {
		steps = append(steps, hint)
	}

	return SolveResult{
		Equation:   normalized,
		Normalized: normalized,
		Shape:      Unsupported,
		Outcome:    OutcomeUnsupported,
		Solution:   msgUnsupported,
		Steps:      steps,
	}
}
