package formula

import (
	"errors"
	"log/slog"
	"math"
)

// Evaluator evaluates formulas against the cells of a Resolver. It keeps the
// outcome of the most recent evaluation for retrieval through Result,
// Message, and Err. It is not safe to use an Evaluator concurrently; create
// one per goroutine instead.
type Evaluator struct {
	res Resolver
	log *slog.Logger

	values []float64
	ops    []token

	result float64
	err    *EvalError
}

// EvaluatorOption is an option used when creating an evaluator.
type EvaluatorOption interface {
	evalOption()
}

type logopt struct {
	h slog.Handler
}

func (logopt) evalOption() {}

// LogHandler sets the handler that receives the evaluator's debug logs. By
// default, logs are discarded.
func LogHandler(h slog.Handler) EvaluatorOption {
	return logopt{h}
}

// NewEvaluator creates an evaluator that resolves cell references through r.
// If r is nil, no token is a cell reference.
func NewEvaluator(r Resolver, opts ...EvaluatorOption) *Evaluator {
	e := Evaluator{res: r}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case logopt:
			if opt.h != nil {
				e.log = slog.New(opt.h).WithGroup("formula")
			}
		default:
			panic("formula: unknown option type")
		}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return &e
}

// Evaluate evaluates a formula, replacing the outcome of any previous
// evaluation. Evaluate never modifies the resolver's cells.
func (e *Evaluator) Evaluate(f []string) {
	e.result = 0
	e.err = nil
	e.values = e.values[:0]
	e.ops = e.ops[:0]
	err := e.eval(f)
	if err != nil {
		var ee *EvalError
		if !errors.As(err, &ee) {
			ee = &EvalError{Message: InvalidFormula}
		}
		e.err = ee
		e.log.Debug("evaluation failed", "tokens", len(f), "message", ee.Message, "pos", ee.Pos, "token", ee.Token)
		return
	}
	e.log.Debug("evaluated", "tokens", len(f), "result", e.result)
}

// Result returns the result of the last evaluation. It is meaningful only if
// Message returns the empty string, except that division by zero always
// results in +Inf.
func (e *Evaluator) Result() float64 {
	return e.result
}

// Message returns the message identifier describing why the last evaluation
// failed, or the empty string if it succeeded.
func (e *Evaluator) Message() string {
	if e.err == nil {
		return ""
	}
	return e.err.Message
}

// Err returns the error that stopped the last evaluation, if any. The error
// is always an *EvalError.
func (e *Evaluator) Err() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// IsCellReference returns whether a token names a cell of the evaluator's
// resolver.
func (e *Evaluator) IsCellReference(s string) bool {
	return classify(s, e.res) == tokenCell
}

func (e *Evaluator) eval(f []string) error {
	switch {
	case len(f) == 0:
		return &EvalError{Message: EmptyFormula}
	case len(f) == 2 && f[0] == OpenParen && f[1] == CloseParen:
		return fail(MissingParentheses, f, 0)
	}
	last := len(f) - 1
	// A trailing operator is an invalid formula, but scan anyway so that
	// failures earlier in the formula, e.g. a division by zero, win.
	trailing := IsOperator(f[last])
	for i, s := range f {
		tok := token{text: s, kind: classify(s, e.res), pos: i + 1}
		switch tok.kind {
		case tokenNum:
			v, _ := parseNum(s)
			e.values = append(e.values, v)
			if i < last && f[i+1] == OpenParen {
				e.result = v
				return fail(InvalidFormula, f, i+1)
			}
		case tokenCell:
			c := e.res.CellByLabel(s)
			if m := c.Message(); m != "" && m != EmptyFormula {
				return fail(m, f, i)
			}
			if len(c.Formula()) == 0 {
				return fail(InvalidCell, f, i)
			}
			e.values = append(e.values, c.Value())
		case tokenOpen:
			e.ops = append(e.ops, tok)
		case tokenClose:
			for len(e.ops) > 0 && e.topOp().kind != tokenOpen {
				if err := e.apply(e.popOp()); err != nil {
					return err
				}
			}
			// Unmatched close parens are tolerated.
			if len(e.ops) > 0 {
				e.popOp()
			}
		case tokenOp:
			if i < last && IsOperator(f[i+1]) {
				if len(e.values) > 0 {
					e.result = e.values[len(e.values)-1]
				}
				return fail(InvalidFormula, f, i+1)
			}
			p := Precedence(s)
			for len(e.ops) > 0 && e.topOp().kind == tokenOp && Precedence(e.topOp().text) >= p {
				if err := e.apply(e.popOp()); err != nil {
					return err
				}
			}
			e.ops = append(e.ops, tok)
		default:
			return fail(InvalidFormula, f, i)
		}
	}
	if trailing {
		return fail(InvalidFormula, f, last)
	}
	if len(e.ops) > 0 {
		top := e.topOp()
		if top.kind != tokenOp || len(e.values) < 2 {
			return fail(InvalidFormula, f, top.pos-1)
		}
	}
	for len(e.ops) > 0 {
		if err := e.apply(e.popOp()); err != nil {
			return err
		}
	}
	if len(e.values) > 0 {
		e.result = e.values[len(e.values)-1]
	}
	return nil
}

// apply pops two operands, applies op to them, and pushes the result.
func (e *Evaluator) apply(op token) error {
	if op.kind != tokenOp {
		return &EvalError{Message: InvalidOperator, Pos: op.pos, Token: op.text}
	}
	if len(e.values) < 2 {
		return &EvalError{Message: InvalidFormula, Pos: op.pos, Token: op.text}
	}
	r := e.popValue()
	l := e.popValue()
	var v float64
	switch op.text {
	case "+":
		v = l + r
	case "-":
		v = l - r
	case "*":
		v = l * r
	case "/":
		if r == 0 {
			e.result = math.Inf(1)
			return &EvalError{Message: DivideByZero, Pos: op.pos, Token: op.text}
		}
		v = l / r
	default:
		return &EvalError{Message: InvalidOperator, Pos: op.pos, Token: op.text}
	}
	e.values = append(e.values, v)
	return nil
}

func (e *Evaluator) popValue() float64 {
	v := e.values[len(e.values)-1]
	e.values = e.values[:len(e.values)-1]
	return v
}

func (e *Evaluator) topOp() token {
	return e.ops[len(e.ops)-1]
}

func (e *Evaluator) popOp() token {
	t := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]
	return t
}
