package equation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	errEmptyTerm       = errors.New("empty term")
	errMissingOperator = errors.New("missing operator between terms")
	errDanglingStar    = errors.New("'*' without a following variable")
	errBadNumber       = errors.New("unparseable number")
)

// term is one signed summand of a polynomial side such as "-3x" or "+7".
type term struct {
	sign        int
	coefficient decimal.Decimal // magnitude; 1 when the literal is omitted
	power       int             // 0 constant, 1 x, 2 x^2
}

func (t term) value() decimal.Decimal {
	if t.sign < 0 {
		return t.coefficient.Neg()
	}
	return t.coefficient
}

func (t term) hasVariable() bool {
	return t.power > 0
}

// parseTerms splits one side of an equation into terms in x. Only the first
// term may omit its sign.
func parseTerms(side string) ([]term, error) {
	var terms []term

	for i := 0; i < len(side); {
		sign := 1
		switch side[i] {
		case '+':
			i++
		case '-':
			sign = -1
			i++
		default:
			if len(terms) > 0 {
				return nil, fmt.Errorf("%w at offset %d", errMissingOperator, i)
			}
		}

		start := i
		for i < len(side) && (isDigit(side[i]) || side[i] == '.') {
			i++
		}
		literal := side[start:i]

		starred := false
		if i < len(side) && side[i] == '*' {
			starred = true
			i++
		}

		power := 0
		if i < len(side) && side[i] == 'x' {
			power = 1
			i++
			if i+1 < len(side) && side[i] == '^' && side[i+1] == '2' {
				power = 2
				i += 2
			}
		}

		if starred && (literal == "" || power == 0) {
			return nil, fmt.Errorf("%w at offset %d", errDanglingStar, start)
		}
		if literal == "" && power == 0 {
			return nil, fmt.Errorf("%w at offset %d", errEmptyTerm, start)
		}

		coefficient := decimal.NewFromInt(1)
		if literal != "" {
			d, err := decimal.NewFromString(literal)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", errBadNumber, literal, err)
			}
			coefficient = d
		}

		terms = append(terms, term{sign: sign, coefficient: coefficient, power: power})
	}

	if len(terms) == 0 {
		return nil, errEmptyTerm
	}

	return terms, nil
}

// sumByPower adds up the signed coefficients of each power up to maxPower.
// A term of higher degree is an error.
func sumByPower(terms []term, maxPower int) ([]decimal.Decimal, error) {
	sums := make([]decimal.Decimal, maxPower+1)
	for i := range sums {
		sums[i] = decimal.Zero
	}

	for _, t := range terms {
		if t.power > maxPower {
			return nil, fmt.Errorf("term of degree %d where at most %d is allowed", t.power, maxPower)
		}
		sums[t.power] = sums[t.power].Add(t.value())
	}

	return sums, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
