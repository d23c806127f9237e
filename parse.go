package formula

import (
	"slices"
	"strings"
)

// Formula = Expr
// Expr = num | name | Neg | Add | Sub | Mul | Div | '(' Expr ')'
// Neg = '-' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr

// Program is a compiled formula: its tokens in postfix order. A Program
// returned by Parse is never modified by this package, so it may be shared
// and evaluated concurrently with any bindings.
type Program []Token

// Parse compiles a formula.
func Parse(src string) (Program, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// cursor is what the parser last saw. It decides whether - is negation.
type cursor int8

const (
	atStart cursor = iota
	afterOp
	afterValue
	afterOpen
)

// ParseTokens orders a token sequence into a Program using the shunting-yard
// algorithm. toks is not modified.
func ParseTokens(toks []Token) (Program, error) {
	out := make(Program, 0, len(toks))
	var ops []Token
	cur := atStart
	values := 0
	for _, tok := range toks {
		switch tok.Kind {
		case TokenNum, TokenIdent:
			out = append(out, tok)
			values++
			cur = afterValue
		case TokenOp:
			if tok.Op.arity() == 0 {
				return nil, &LexError{Text: tok.String(), Col: tok.Pos}
			}
			if tok.Op == OpSub && cur != afterValue {
				tok.Op = OpNeg
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind != TokenOp || !tok.Op.yields(top.Op) {
					break
				}
				out = append(out, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
			cur = afterOp
		case TokenOpen:
			ops = append(ops, tok)
			cur = afterOpen
		case TokenClose:
			matched := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Kind == TokenOpen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, &BracketError{Col: tok.Pos, Paren: ")"}
			}
			cur = afterValue
		default:
			return nil, &LexError{Text: tok.String(), Col: tok.Pos}
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Kind == TokenOpen {
			return nil, &BracketError{Col: top.Pos, Paren: "("}
		}
		out = append(out, top)
	}
	if values == 0 {
		end := 1
		if len(toks) > 0 {
			end = toks[len(toks)-1].Pos + 1
		}
		return nil, &EmptyExpressionError{Col: end}
	}
	if err := out.check(); err != nil {
		return nil, err
	}
	return out, nil
}

// check verifies that every operator in p has its operands and that the
// program leaves exactly one value.
func (p Program) check() error {
	// pos holds the position of the token that produced each stack value.
	pos := make([]int, 0, len(p))
	for _, tok := range p {
		switch tok.Kind {
		case TokenNum, TokenIdent:
			pos = append(pos, tok.Pos)
		case TokenOp:
			n := tok.Op.arity()
			if len(pos) < n {
				return &OperandError{Col: tok.Pos, Op: tok.Op}
			}
			pos = pos[:len(pos)-n+1]
		}
	}
	if len(pos) > 1 {
		return &OperandError{Col: pos[1], Extra: true}
	}
	return nil
}

// Vars returns the sorted names of the variables the program uses.
func (p Program) Vars() []string {
	var names []string
	for _, tok := range p {
		if tok.Kind == TokenIdent {
			names = append(names, tok.Name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// String formats the program in postfix notation with tokens separated by
// spaces. Negation is written as neg.
func (p Program) String() string {
	var b strings.Builder
	for i, tok := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

// Prec returns the precedence of the operator. Higher is more binding.
func (op Op) Prec() int {
	switch op {
	case OpNeg:
		return 3
	case OpMul, OpDiv:
		return 2
	case OpAdd, OpSub:
		return 1
	default:
		return 0
	}
}

// RightAssoc reports whether the operator is right-associative. Only negation
// is.
func (op Op) RightAssoc() bool {
	return op == OpNeg
}

// yields reports whether top must leave the operator stack before op is
// pushed.
func (op Op) yields(top Op) bool {
	if op.RightAssoc() {
		return op.Prec() < top.Prec()
	}
	return op.Prec() <= top.Prec()
}

// arity returns the number of operands the operator takes, or 0 if it is not
// an operator.
func (op Op) arity() int {
	switch op {
	case OpNeg:
		return 1
	case OpAdd, OpSub, OpMul, OpDiv:
		return 2
	default:
		return 0
	}
}

// symbol is the text of the operator in a formula.
func (op Op) symbol() string {
	if op == OpNeg {
		return "-"
	}
	return op.String()
}
