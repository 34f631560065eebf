package equation

import (
	"github.com/shopspring/decimal"

	"go-equation-solver/internal/equation/expr"
)

func solveArithmetic(normalized string) SolveResult {
	v, err := expr.Eval(normalized)
	if err != nil {
		return failure(normalized, ArithmeticExpression, OutcomeEvaluationFailure, msgEvaluationFailure, stepCheckSyntax, err)
	}

	if v == 0 {
		v = 0
	}
	result := decimal.NewFromFloat(v).String()

	return SolveResult{
		Equation:   normalized,
		Normalized: normalized,
		Shape:      ArithmeticExpression,
		Outcome:    OutcomeSolved,
		Solution:   result,
		Steps: []string{
			"Evaluate the expression: " + normalized,
			"Apply order of operations (PEMDAS)",
			"Result: " + result,
		},
		Value: &v,
	}
}
