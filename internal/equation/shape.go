package equation

import "fmt"

// Shape is the classification assigned to a normalized equation string. It
// selects the solver and is recomputed for every request.
type Shape int

const (
	Unsupported Shape = iota
	Linear
	Quadratic
	ArithmeticExpression
)

var shapeNames = map[Shape]string{
	Unsupported:          "unsupported",
	Linear:               "linear",
	Quadratic:            "quadratic",
	ArithmeticExpression: "arithmetic",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	for shape, name := range shapeNames {
		if name == string(text) {
			*s = shape
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", text)
}

// Outcome tells callers whether a SolveResult holds a genuine answer or
// fallback text, without matching on the solution message.
type Outcome int

const (
	OutcomeSolved Outcome = iota
	OutcomeNoRealSolution
	OutcomeUnsupported
	OutcomeParseFailure
	OutcomeEvaluationFailure
)

var outcomeNames = map[Outcome]string{
	OutcomeSolved:            "solved",
	OutcomeNoRealSolution:    "no_real_solution",
	OutcomeUnsupported:       "unsupported",
	OutcomeParseFailure:      "parse_failure",
	OutcomeEvaluationFailure: "evaluation_failure",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}
