package formula

import "strconv"

// Messages reported by an Evaluator. These identifiers are a fixed contract
// with callers; use Display to render them in a cell.
const (
	EmptyFormula       = "emptyFormula"
	MissingParentheses = "missingParentheses"
	InvalidFormula     = "invalidFormula"
	DivideByZero       = "divideByZero"
	InvalidOperator    = "invalidOperator"
	InvalidCell        = "invalidCell"
	// CircularReference is never produced by an Evaluator. Sheets store it on
	// cells that refer to themselves, and evaluation propagates it to the
	// cells that refer to those.
	CircularReference = "circularReference"
)

var displays = map[string]string{
	EmptyFormula:       "#EMPTY!",
	MissingParentheses: "#ERR",
	InvalidFormula:     "#ERR",
	DivideByZero:       "#DIV/0!",
	InvalidOperator:    "#ERR",
	InvalidCell:        "#REF!",
	CircularReference:  "#CIRC!",
}

// Display returns the text a spreadsheet shows in place of a value for a
// message. Unknown messages are returned unchanged.
func Display(message string) string {
	if d, ok := displays[message]; ok {
		return d
	}
	return message
}

// EvalError is an error that stopped the evaluation of a formula.
type EvalError struct {
	// Message is the message identifier, e.g. InvalidFormula.
	Message string
	// Pos is the 1-based position of the token that caused the error, or 0
	// if the error belongs to the formula as a whole.
	Pos int
	// Token is the text of the token at Pos.
	Token string
}

func (err *EvalError) Error() string {
	if err.Pos <= 0 {
		return err.Message
	}
	return errpos(err.Pos, err.Message+" at "+strconv.Quote(err.Token))
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// fail creates an EvalError for the token at 0-based index i.
func fail(msg string, f []string, i int) *EvalError {
	if i < 0 || i >= len(f) {
		return &EvalError{Message: msg}
	}
	return &EvalError{Message: msg, Pos: i + 1, Token: f[i]}
}
