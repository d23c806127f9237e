package formula

import (
	"math"
	"strconv"
)

// Bindings maps variable names to their values for evaluation.
type Bindings map[string]float64

// Evaluate computes the value of a program. Evaluation stops at the first
// error; there is no partial result. The result is always finite.
func Evaluate(p Program, b Bindings) (float64, error) {
	stack := make([]float64, 0, len(p)/2+1)
	for i, tok := range p {
		switch tok.Kind {
		case TokenNum:
			if !finite(tok.Num) {
				return 0, &ResultError{Index: i, Token: tok}
			}
			stack = append(stack, tok.Num)
		case TokenIdent:
			v, ok := b[tok.Name]
			if !ok || !finite(v) {
				return 0, &NameError{Name: tok.Name, Index: i}
			}
			stack = append(stack, v)
		case TokenOp:
			n := tok.Op.arity()
			if n == 0 || len(stack) < n {
				return 0, &ProgramError{Index: i, Token: tok, Depth: len(stack)}
			}
			if n == 1 {
				stack[len(stack)-1] = -stack[len(stack)-1]
				continue
			}
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			l := stack[len(stack)-1]
			var v float64
			switch tok.Op {
			case OpAdd:
				v = l + r
			case OpSub:
				v = l - r
			case OpMul:
				v = l * r
			case OpDiv:
				if r == 0 {
					return 0, &ZeroDivisionError{Index: i}
				}
				v = l / r
			}
			if !finite(v) {
				return 0, &ResultError{Index: i, Token: tok}
			}
			stack[len(stack)-1] = v
		default:
			return 0, &ProgramError{Index: i, Token: tok, Depth: len(stack)}
		}
	}
	if len(stack) != 1 {
		return 0, &ProgramError{Index: len(p), Depth: len(stack)}
	}
	return stack[0], nil
}

// Eval is a shortcut for Evaluate(p, b).
func (p Program) Eval(b Bindings) (float64, error) {
	return Evaluate(p, b)
}

// EvalString is a shortcut to parse and evaluate a formula.
func EvalString(src string, b Bindings) (float64, error) {
	p, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return Evaluate(p, b)
}

func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

// NameError is an error from a lookup for a variable that is missing from the
// bindings or bound to a value that is not finite.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// Index is the position of the variable in the program.
	Index int
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

func (err *NameError) Kind() ErrorKind {
	return KindUndefinedVariable
}

// ZeroDivisionError is an error indicating a division with a divisor equal to
// zero.
type ZeroDivisionError struct {
	// Index is the position of the division in the program.
	Index int
}

func (err *ZeroDivisionError) Error() string {
	return "division by zero at instruction " + strconv.Itoa(err.Index)
}

func (err *ZeroDivisionError) Kind() ErrorKind {
	return KindDivisionByZero
}

// ResultError is an error indicating a value that is infinite or NaN, from
// either a literal or an operation that overflowed.
type ResultError struct {
	// Index is the position of the token in the program.
	Index int
	// Token is the literal or operator that produced the value.
	Token Token
}

func (err *ResultError) Error() string {
	if err.Token.Kind == TokenNum {
		return "literal " + err.Token.String() + " is not finite"
	}
	return "result of " + strconv.Quote(err.Token.String()) + " at instruction " + strconv.Itoa(err.Index) + " is not finite"
}

func (err *ResultError) Kind() ErrorKind {
	return KindInvalidResult
}

// ProgramError is an error indicating a program that cannot have come from
// Parse: an operator without enough operands, a token that is not an
// instruction, or a final stack that does not hold exactly one value.
type ProgramError struct {
	// Index is the position of the offending token, or the length of the
	// program if the program ended with the wrong number of values.
	Index int
	// Token is the offending token. Its Kind is TokenNone if the program
	// ended with the wrong number of values.
	Token Token
	// Depth is the number of values on the stack at the error.
	Depth int
}

func (err *ProgramError) Error() string {
	switch {
	case err.Token.Kind == TokenNone:
		return "malformed program: " + strconv.Itoa(err.Depth) + " values at end"
	case err.Token.Kind == TokenOp && err.Token.Op.arity() > 0:
		return "malformed program: " + strconv.Quote(err.Token.String()) + " at instruction " + strconv.Itoa(err.Index) + " with " + strconv.Itoa(err.Depth) + " values"
	default:
		return "malformed program: invalid instruction " + strconv.Quote(err.Token.String()) + " at " + strconv.Itoa(err.Index)
	}
}

func (err *ProgramError) Kind() ErrorKind {
	return KindMalformedProgram
}
