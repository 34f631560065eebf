package equation

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"whitespace stripped", " 2x + 5 = 13 ", "2x+5=13"},
		{"tabs and newlines", "x^2\t+5x\n+6=0", "x^2+5x+6=0"},
		{"superscript square", "x²+5x+6=0", "x^2+5x+6=0"},
		{"superscript cube", "x³=8", "x^3=8"},
		{"superscript run", "x¹⁰=1", "x^10=1"},
		{"negative exponent", "x⁻¹", "x^-1"},
		{"vulgar fraction", "½x=1", "1/2x=1"},
		{"fullwidth operators", "２＋２＝４", "2+2=4"},
		{"multiplication sign", "3×4", "3*4"},
		{"middle dot", "3·4", "3*4"},
		{"division sign", "8÷2", "8/2"},
		{"unicode minus", "x−4=0", "x-4=0"},
		{"en dash", "7–x=2", "7-x=2"},
		{"upper case variable", "2X+1=3", "2x+1=3"},
		{"fullwidth digits", "１２+３", "12+3"},
		{"letters dropped", "solve: 2x+5=13", "2x+5=13"},
		{"relations kept", "x≤5", "x≤5"},
		{"empty", "", Sentinel},
		{"single rune", "7", Sentinel},
		{"only noise", "hello world", Sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"2x + 5 = 13",
		"x² − 4 = 0",
		"√(16) ÷ 2",
		"ＡＢＣ x=1",
		"∫∑∏!",
		"x⁻²+¾",
		"",
		"  ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeAlphabet(t *testing.T) {
	got := Normalize("a1 b2 c3 = x y z + é ∂ ≥ 4")
	for _, r := range got {
		if !strings.ContainsRune(allowedSymbols, r) {
			t.Errorf("Normalize produced %q outside the alphabet in %q", r, got)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	if !IsSentinel(Normalize("?")) {
		t.Error("expected a one-rune input to normalize to the sentinel")
	}
	if IsSentinel("2x=4") {
		t.Error("2x=4 is not the sentinel")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Shape
	}{
		{"2x+5=13", Linear},
		{"x=4", Linear},
		{"2x=8", Linear},
		{"-x+4=1", Linear},
		{"7-x=2", Linear},
		{"13=2x+5", Linear},
		{"2*x+1=2", Linear},
		{"x^2+5x+6=0", Quadratic},
		{"x^2-4=0", Quadratic},
		{"2x^2=0", Quadratic},
		{"-x^2+x=0", Quadratic},
		{"x^2+5x+6=2", Unsupported},
		{"x+y=3", Unsupported},
		{"x^3=8", Unsupported},
		{"1=2=3", Unsupported},
		{"0=0", Unsupported},
		{"2+3*4", ArithmeticExpression},
		{"(1+2)^2", ArithmeticExpression},
		{".5*4", ArithmeticExpression},
		{"()", Unsupported},
		{"√4", Unsupported},
		{"x", Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShapeString(t *testing.T) {
	if Quadratic.String() != "quadratic" {
		t.Errorf("Quadratic.String() = %q", Quadratic.String())
	}
	if got := Shape(42).String(); got != "shape(42)" {
		t.Errorf("unknown shape rendered as %q", got)
	}
	text, err := ArithmeticExpression.MarshalText()
	if err != nil || string(text) != "arithmetic" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
}

func FuzzClassify(f *testing.F) {
	for _, seed := range []string{"2x+5=13", "x^2-4=0", "1+1", "", "x=", "=x", "^^"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		shape := Classify(Normalize(s))
		if _, ok := shapeNames[shape]; !ok {
			t.Fatalf("Classify returned unknown shape %d", shape)
		}
	})
}

func TestShapeTextRoundTrip(t *testing.T) {
	for shape := range shapeNames {
		text, _ := shape.MarshalText()
		var got Shape
		if err := got.UnmarshalText(text); err != nil || got != shape {
			t.Errorf("round trip of %v gave %v, %v", shape, got, err)
		}
	}
	var s Shape
	if err := s.UnmarshalText([]byte("cubic")); err == nil {
		t.Error("expected an error for an unknown shape")
	}
	var o Outcome
	if err := o.UnmarshalText([]byte("no_real_solution")); err != nil || o != OutcomeNoRealSolution {
		t.Errorf("UnmarshalText(no_real_solution) = %v, %v", o, err)
	}
}
