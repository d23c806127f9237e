package formula

import (
	"errors"
	"strconv"
)

// ErrorKind classifies the errors produced by the package.
//
// The structural kinds are found by Parse without evaluating. Besides the
// four for unrecognized characters, invalid numbers, unbalanced parentheses,
// and empty formulas, Parse reports KindMissingOperand and KindExtraOperand
// for operator sequences that cannot form a program, so a program from Parse
// never fails evaluation as malformed.
type ErrorKind int8

const (
	// KindNone is the kind of errors not produced by this package.
	KindNone ErrorKind = iota

	KindUnrecognizedCharacter
	KindInvalidNumber
	KindUnbalancedParens
	KindEmptyFormula
	KindMissingOperand
	KindExtraOperand

	KindUndefinedVariable
	KindDivisionByZero
	KindInvalidResult
	KindMalformedProgram
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnrecognizedCharacter:
		return "unrecognized-character"
	case KindInvalidNumber:
		return "invalid-number-literal"
	case KindUnbalancedParens:
		return "unbalanced-parentheses"
	case KindEmptyFormula:
		return "empty-formula"
	case KindMissingOperand:
		return "missing-operand"
	case KindExtraOperand:
		return "extra-operand"
	case KindUndefinedVariable:
		return "undefined-variable"
	case KindDivisionByZero:
		return "division-by-zero"
	case KindInvalidResult:
		return "invalid-result"
	case KindMalformedProgram:
		return "malformed-program"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Structural reports whether the kind describes malformed formula text, as
// opposed to a failure that depends on the bindings used for evaluation.
func (k ErrorKind) Structural() bool {
	return KindUnrecognizedCharacter <= k && k <= KindExtraOperand
}

// KindOf returns the kind of the first error in err's chain that has one. The
// result is KindNone if there is no such error.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindNone
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the offending character, or the whole literal if Number is set.
	Text string
	// Col is the position of the start of the token.
	Col int
	// Number is whether the lexer was scanning a numeric literal.
	Number bool
}

func (err *LexError) Error() string {
	if err.Number {
		return errpos(err.Col, "invalid number literal "+strconv.Quote(err.Text))
	}
	return errpos(err.Col, "unrecognized character "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}

// Kind returns KindInvalidNumber or KindUnrecognizedCharacter.
func (err *LexError) Kind() ErrorKind {
	if err.Number {
		return KindInvalidNumber
	}
	return KindUnrecognizedCharacter
}

// BracketError is an error indicating a parenthesis with no partner. It
// implements InputError.
type BracketError struct {
	// Col is the position of the parenthesis.
	Col int
	// Paren is the unmatched parenthesis, either "(" or ")".
	Paren string
}

func (err *BracketError) Error() string {
	if err.Paren == "(" {
		return errpos(err.Col, "open bracket ( with no close bracket")
	}
	return errpos(err.Col, "close bracket "+err.Paren+" with no open bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

func (err *BracketError) Kind() ErrorKind {
	return KindUnbalancedParens
}

// EmptyExpressionError is an error indicating a formula with no values in it.
type EmptyExpressionError struct {
	// Col is the position just past the end of the formula's tokens.
	Col int
}

func (err *EmptyExpressionError) Error() string {
	return errpos(err.Col, "no expression")
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

func (err *EmptyExpressionError) Kind() ErrorKind {
	return KindEmptyFormula
}

// OperandError is an error indicating an operator without enough operands, or
// operands not joined by any operator, as in "1+" or "2 3". It implements
// InputError.
type OperandError struct {
	// Col is the position of the operator missing an operand, or of the
	// first value that no operator applies to.
	Col int
	// Op is the operator missing an operand. It is OpNone if Extra is set.
	Op Op
	// Extra is whether the error is an operand with no operator.
	Extra bool
}

func (err *OperandError) Error() string {
	if err.Extra {
		return errpos(err.Col, "missing operator before operand")
	}
	return errpos(err.Col, "missing operand for "+strconv.Quote(err.Op.symbol()))
}

func (err *OperandError) Pos() int {
	return err.Col
}

// Kind returns KindExtraOperand or KindMissingOperand.
func (err *OperandError) Kind() ErrorKind {
	if err.Extra {
		return KindExtraOperand
	}
	return KindMissingOperand
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid formula text implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
	// Kind returns the classification of the error.
	Kind() ErrorKind
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*OperandError)(nil)
)
