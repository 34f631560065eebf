package expr

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestEvalPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{src: "2+3*4", want: 14},
		{src: "(2+3)*4", want: 20},
		{src: "10-4-3", want: 3},
		{src: "100/10/5", want: 2},
		{src: "2^3^2", want: 512},
		{src: "-2^2", want: -4},
		{src: "(-2)^2", want: 4},
		{src: "2^-1", want: 0.5},
		{src: "2*3^2", want: 18},
		{src: "--3", want: 3},
		{src: "+7", want: 7},
		{src: "1.5*4", want: 6},
		{src: ".5+.25", want: 0.75},
		{src: "((1+2)*(3+4))/7", want: 3},
		{src: "8/2*(2+2)", want: 16},
	}

	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got, err := Eval(tc.src)
			if err != nil {
				t.Fatalf("Eval(%q): unexpected error: %v", tc.src, err)
			}
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("Eval(%q): expected %g, got %g", tc.src, tc.want, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{src: "", want: ErrEmptyExpression},
		{src: "1/0", want: ErrDivisionByZero},
		{src: "5/(3-3)", want: ErrDivisionByZero},
		{src: "(2+3", want: ErrUnbalancedParens},
		{src: "2+3)", want: ErrUnbalancedParens},
		{src: "2+", want: ErrMissingOperand},
		{src: "*2", want: ErrMissingOperand},
		{src: "()", want: ErrMissingOperand},
		{src: "1..2", want: ErrMalformedNumber},
		{src: "1.2.3", want: ErrMalformedNumber},
		{src: "2x", want: ErrInvalidCharacter},
		{src: "2(3)", want: ErrUnexpectedToken},
		{src: "10^400", want: ErrNonFiniteResult},
		{src: "(-8)^0.5", want: ErrNonFiniteResult},
		{src: strings.Repeat("(", MaxDepth+1) + "1" + strings.Repeat(")", MaxDepth+1), want: ErrNestingTooDeep},
		{src: strings.Repeat("-", MaxDepth+1) + "1", want: ErrNestingTooDeep},
	}

	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			_, err := Eval(tc.src)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Eval(%q): expected error %v, got %v", tc.src, tc.want, err)
			}
		})
	}
}

func TestEvalAcceptsNestingAtLimit(t *testing.T) {
	src := strings.Repeat("(", MaxDepth) + "1" + strings.Repeat(")", MaxDepth)

	got, err := Eval(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1, got %g", got)
	}
}
