package expr

import "errors"

var (
	ErrEmptyExpression  = errors.New("empty expression")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrMalformedNumber  = errors.New("malformed number")
	ErrMissingOperand   = errors.New("missing operand")
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrUnbalancedParens = errors.New("unbalanced parentheses")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNonFiniteResult  = errors.New("result is not a finite number")
	ErrNestingTooDeep   = errors.New("expression nested too deeply")
)
