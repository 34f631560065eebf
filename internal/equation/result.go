package equation

// SolveResult is the outcome of one solve call. It is built once and not
// modified afterwards.
type SolveResult struct {
	// Equation is the input as the caller supplied it, before normalization.
	Equation   string   `json:"equation"`
	Normalized string   `json:"normalized"`
	Shape      Shape    `json:"shape"`
	Outcome    Outcome  `json:"outcome"`
	Solution   string   `json:"solution"`
	Steps      []string `json:"steps"`

	// Roots holds the rounded roots of a linear or quadratic equation.
	Roots []float64 `json:"roots,omitempty"`

	// Value holds the result of an arithmetic expression.
	Value *float64 `json:"value,omitempty"`

	// Reason explains a failure outcome.
	Reason string `json:"reason,omitempty"`
}

// OK reports whether the result is a genuine answer rather than fallback text.
func (r SolveResult) OK() bool {
	return r.Outcome == OutcomeSolved || r.Outcome == OutcomeNoRealSolution
}

const (
	msgLinearParseFailure    = "Couldn't parse this equation format"
	msgQuadraticParseFailure = "Couldn't parse this quadratic equation"
	msgEvaluationFailure     = "Couldn't evaluate this expression"
	msgUnsupported           = "Equation type not supported"
	msgNoRealSolutions       = "No real solutions (discriminant < 0)"

	stepTryAnotherFormat = "Try a different equation format or check your input"
	stepCheckSyntax      = "Check the syntax of your expression"
)

func failure(normalized string, shape Shape, outcome Outcome, solution, step string, err error) SolveResult {
	r := SolveResult{
		Equation:   normalized,
		Normalized: normalized,
		Shape:      shape,
		Outcome:    outcome,
		Solution:   solution,
		Steps:      []string{step},
	}
	if err != nil {
		r.Reason = err.Error()
	}
	return r
}
