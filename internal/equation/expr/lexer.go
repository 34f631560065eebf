package expr

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokCaret:
		return "'^'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "end of expression"
	}
}

type token struct {
	kind  tokenKind
	value float64
	pos   int
}

var operators = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
	'(': tokLParen,
	')': tokRParen,
}

// tokenize splits src into tokens. Only digits, '.', the five operators and
// parentheses are accepted; anything else is an ErrInvalidCharacter.
func tokenize(src string) ([]token, error) {
	tokens := make([]token, 0, len(src)+1)

	for i := 0; i < len(src); {
		c := src[i]

		if kind, ok := operators[c]; ok {
			tokens = append(tokens, token{kind: kind, pos: i})
			i++
			continue
		}

		if isDigit(c) || c == '.' {
			start := i
			dots := 0
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				if src[i] == '.' {
					dots++
				}
				i++
			}
			lit := src[start:i]
			if dots > 1 || lit == "." {
				return nil, fmt.Errorf("%w %q at offset %d", ErrMalformedNumber, lit, start)
			}
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, fmt.Errorf("%w %q at offset %d", ErrMalformedNumber, lit, start)
			}
			tokens = append(tokens, token{kind: tokNumber, value: v, pos: start})
			continue
		}

		return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidCharacter, rune(c), i)
	}

	return append(tokens, token{kind: tokEOF, pos: len(src)}), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
