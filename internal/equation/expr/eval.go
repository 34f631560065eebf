// Package expr evaluates plain arithmetic expressions over numbers, the
// operators + - * / ^ and parentheses.
//
// Grammar, lowest precedence first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | "(" expr ")"
//
// Exponentiation is right-associative and binds tighter than a leading sign,
// so -2^2 is -4 and 2^3^2 is 512.
package expr

import (
	"fmt"
	"math"
)

// MaxDepth bounds the combined nesting of parentheses and unary signs.
const MaxDepth = 64

// Eval parses and evaluates src. Division by zero and non-finite results are
// reported as errors rather than returned as Inf or NaN.
func Eval(src string) (float64, error) {
	if src == "" {
		return 0, ErrEmptyExpression
	}

	tokens, err := tokenize(src)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: tokens}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return 0, fmt.Errorf("%w: unmatched ')' at offset %d", ErrUnbalancedParens, t.pos)
		}
		return 0, fmt.Errorf("%w %s at offset %d", ErrUnexpectedToken, t.kind, t.pos)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFiniteResult
	}

	return v, nil
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return ErrNestingTooDeep
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case tokSlash:
			op := p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("%w at offset %d", ErrDivisionByZero, op.pos)
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	switch p.peek().kind {
	case tokPlus, tokMinus:
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		op := p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op.kind == tokMinus {
			return -v, nil
		}
		return v, nil
	default:
		return p.parsePower()
	}
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.next()

	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	t := p.next()

	switch t.kind {
	case tokNumber:
		return t.value, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, fmt.Errorf("%w: '(' at offset %d is never closed", ErrUnbalancedParens, t.pos)
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w at end of expression", ErrMissingOperand)
	default:
		return 0, fmt.Errorf("%w: found %s at offset %d", ErrMissingOperand, t.kind, t.pos)
	}
}
