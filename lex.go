package formula

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Token is a lexical token of a formula. The same type is used for the
// instructions of a Program.
type Token struct {
	Kind TokenKind
	// Num is the value of a TokenNum.
	Num float64
	// Name is the variable name of a TokenIdent.
	Name string
	// Op is the operator of a TokenOp.
	Op Op
	// Pos is the position of the token as the number of runes up to and
	// including its first rune. Tokens constructed by hand may leave it zero.
	Pos int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenNum:
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	case TokenIdent:
		return t.Name
	case TokenOp:
		return t.Op.String()
	case TokenOpen:
		return "("
	case TokenClose:
		return ")"
	default:
		return "<" + t.Kind.String() + ">"
	}
}

// TokenKind is the variant of a Token.
type TokenKind int8

const (
	TokenNone TokenKind = iota
	// TokenNum is a numeric literal.
	TokenNum
	// TokenIdent is a variable name.
	TokenIdent
	// TokenOp is an operator.
	TokenOp
	// TokenOpen is an open parenthesis.
	TokenOpen
	// TokenClose is a close parenthesis.
	TokenClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenNone:
		return "None"
	case TokenNum:
		return "Num"
	case TokenIdent:
		return "Ident"
	case TokenOp:
		return "Op"
	case TokenOpen:
		return "Open"
	case TokenClose:
		return "Close"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is an arithmetic operator. The lexer only produces the binary operators;
// the parser rewrites a prefix - to OpNeg.
type Op int8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	// OpNeg is unary minus.
	OpNeg
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpNeg:
		return "neg"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// opRune gets the binary operator for a rune, or OpNone.
func opRune(r rune) Op {
	switch r {
	case '+':
		return OpAdd
	case '-':
		return OpSub
	case '*':
		return OpMul
	case '/':
		return OpDiv
	default:
		return OpNone
	}
}

type lexer struct {
	src io.RuneScanner
	buf strings.Builder
	// col is the number of runes read so far.
	col int
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{src: src}
}

// Tokenize splits a formula into tokens. Whitespace separates tokens but is
// otherwise ignored, so an empty or blank formula has no tokens and no error.
func Tokenize(src string) ([]Token, error) {
	l := lex(strings.NewReader(src))
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return toks, nil
			}
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (rune, error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.col++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.col--
}

// next scans the next token from the input. At the end of the input, the
// error is io.EOF.
func (l *lexer) next() (Token, error) {
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			return Token{}, err
		}
		pos := l.col
		switch {
		case unicode.IsSpace(r):
			continue
		case isDigit(r), r == '.':
			l.unreadRune()
			return l.scanNum(pos)
		case r == '_', isLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return Token{}, err
			}
			return Token{Kind: TokenIdent, Name: l.buf.String(), Pos: pos}, nil
		case r == '(':
			return Token{Kind: TokenOpen, Pos: pos}, nil
		case r == ')':
			return Token{Kind: TokenClose, Pos: pos}, nil
		default:
			if op := opRune(r); op != OpNone {
				return Token{Kind: TokenOp, Op: op, Pos: pos}, nil
			}
			return Token{}, &LexError{Text: string(r), Col: pos}
		}
	}
}

// scanNum scans a maximal run of digits and dots. At most one dot is allowed,
// and there must be at least one digit.
func (l *lexer) scanNum(pos int) (Token, error) {
	var dig, dots int
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{}, err
		}
		if r == '_' || isLetter(r) {
			// 2x is not a number followed by a name.
			l.buf.WriteRune(r)
			return Token{}, &LexError{Text: l.buf.String(), Col: pos, Number: true}
		}
		if !isDigit(r) && r != '.' {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		if r == '.' {
			dots++
		} else {
			dig++
		}
	}
	text := l.buf.String()
	if dig == 0 || dots > 1 {
		return Token{}, &LexError{Text: text, Col: pos, Number: true}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Only range errors are possible here.
		return Token{}, &LexError{Text: text, Col: pos, Number: true}
	}
	return Token{Kind: TokenNum, Num: v, Pos: pos}, nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', isLetter(r), isDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}
