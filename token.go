package formula

import (
	"errors"
	"strconv"
	"strings"
)

type tokenKind int

const (
	// tokenInvalid is a token that is none of the other kinds.
	tokenInvalid tokenKind = iota
	// tokenNum is a numeric literal.
	tokenNum
	// tokenCell is a reference to another cell.
	tokenCell
	// tokenOp is one of the binary operators.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
)

func (k tokenKind) String() string {
	switch k {
	case tokenInvalid:
		return "Invalid"
	case tokenNum:
		return "Num"
	case tokenCell:
		return "Cell"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/"

// Parenthesis tokens.
const (
	OpenParen  = "("
	CloseParen = ")"
)

// token is a formula token along with its classification.
type token struct {
	text string
	kind tokenKind
	pos  int
}

func (t token) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

// classify determines the kind of a token. Numbers are checked before cell
// references.
func classify(s string, r Resolver) tokenKind {
	switch {
	case IsNumber(s):
		return tokenNum
	case IsOperator(s):
		return tokenOp
	case s == OpenParen:
		return tokenOpen
	case s == CloseParen:
		return tokenClose
	case r != nil && r.IsValidCellLabel(s):
		return tokenCell
	default:
		return tokenInvalid
	}
}

// IsNumber returns whether a token is a numeric literal. Spellings of
// infinity and NaN are not numbers.
func IsNumber(s string) bool {
	_, ok := parseNum(s)
	return ok
}

func parseNum(s string) (float64, bool) {
	d := strings.TrimLeft(s, "+-")
	if len(s)-len(d) > 1 || d == "" {
		return 0, false
	}
	if c := d[0]; c != '.' && (c < '0' || c > '9') {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Overflow still parses to ±Inf, which is what the literal means.
		var ne *strconv.NumError
		if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
			return 0, false
		}
	}
	return f, true
}

// IsOperator returns whether a token is one of the four binary operators.
func IsOperator(s string) bool {
	return len(s) == 1 && strings.Contains(Operators, s)
}

// Precedence returns the binding strength of an operator. Tokens which are
// not operators have precedence 0.
func Precedence(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	default:
		return 0
	}
}
