package formula_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/mocks"
	"github.com/zephyrtronium/formula/sheet"
)

// testSheet creates a sheet with computed cells from "LABEL=tokens" pairs,
// computed in order.
func testSheet(t *testing.T, defs ...string) *sheet.Sheet {
	t.Helper()
	s := sheet.New(26, 100)
	e := formula.NewEvaluator(s)
	for _, d := range defs {
		label, src, ok := strings.Cut(d, "=")
		require.True(t, ok, "bad cell definition %q", d)
		require.NoError(t, s.Set(label, strings.Fields(src)))
		require.NoError(t, s.Compute(label, e))
	}
	return s
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"num", "1", 1},
		{"neg-num", "-1", -1},
		{"add", "3 + 4", 7},
		{"add3", "4 + 5 + 6", 15},
		{"sub", "8 - 3 - 2", 3},
		{"mul", "4 * 5 * 6", 120},
		{"div", "8 / 4 / 2", 1},
		{"desc", "2 * 3 + 4", 10},
		{"asc", "4 + 2 * 3", 10},
		{"div-sub", "9 - 6 / 3", 7},
		{"paren", "( 2 + 3 ) * 4", 20},
		{"paren-right", "4 * ( 2 + 3 )", 20},
		{"nested", "( ( 1 + 2 ) * ( 3 + 4 ) ) / 7", 3},
		{"paren-sub", "10 - ( 4 - 1 )", 7},
		{"frac", "1 / 4", 0.25},
		{"sci", "1e2 + 1", 101},
		{"cell", "A1", 3},
		{"cells", "A1 * B2 + C3", 3*4 + 10},
		{"cell-paren", "( A1 + B2 ) * 2", 14},
		{"unmatched-close", "3 + 4 )", 7},
		{"close-only", ")", 0},
	}
	s := testSheet(t, "A1=1 + 2", "B2=4", "C3=B2 * 2 + 2")
	e := formula.NewEvaluator(s)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e.Evaluate(strings.Fields(c.src))
			require.NoError(t, e.Err())
			assert.Empty(t, e.Message())
			assert.Equal(t, c.r, e.Result())
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  []string
		msg  string
		pos  int
	}{
		{"empty", nil, formula.EmptyFormula, 0},
		{"empty-slice", []string{}, formula.EmptyFormula, 0},
		{"parens", []string{"(", ")"}, formula.MissingParentheses, 1},
		{"double-op", strings.Fields("3 + * 4"), formula.InvalidFormula, 3},
		{"trailing-op", strings.Fields("3 +"), formula.InvalidFormula, 2},
		{"only-op", strings.Fields("*"), formula.InvalidFormula, 1},
		{"leading-op", strings.Fields("- 3"), formula.InvalidFormula, 1},
		{"num-paren", strings.Fields("3 ( 4 )"), formula.InvalidFormula, 2},
		{"open", strings.Fields("3 + ("), formula.InvalidFormula, 3},
		{"unclosed", strings.Fields("( 3 + 4"), formula.InvalidOperator, 1},
		{"stray-open", strings.Fields("( 3"), formula.InvalidFormula, 1},
		{"unknown", strings.Fields("3 ^ 4"), formula.InvalidFormula, 2},
		{"unknown-cell", strings.Fields("Z101 + 1"), formula.InvalidFormula, 1},
		{"paren-op", strings.Fields("( + )"), formula.InvalidFormula, 2},
		{"div-zero", strings.Fields("3 / 0"), formula.DivideByZero, 2},
		{"div-zero-expr", strings.Fields("1 / ( 2 - 2 )"), formula.DivideByZero, 2},
		{"div-zero-trailing", strings.Fields("3 / 0 +"), formula.DivideByZero, 2},
		{"empty-cell", strings.Fields("D4 + 1"), formula.InvalidCell, 1},
		{"error-cell", strings.Fields("1 + E5"), formula.DivideByZero, 3},
		{"circular-cell", strings.Fields("F6"), formula.CircularReference, 1},
	}
	s := testSheet(t, "E5=1 / 0", "F6=F6 + 1")
	e := formula.NewEvaluator(s)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e.Evaluate(c.src)
			assert.Equal(t, c.msg, e.Message())
			err := e.Err()
			require.Error(t, err)
			var ee *formula.EvalError
			require.True(t, errors.As(err, &ee), "%#v is not *formula.EvalError", err)
			assert.Equal(t, c.msg, ee.Message)
			assert.Equal(t, c.pos, ee.Pos)
		})
	}
}

func TestEvaluateResultOnError(t *testing.T) {
	e := formula.NewEvaluator(nil)

	e.Evaluate(strings.Fields("3 / 0"))
	assert.True(t, math.IsInf(e.Result(), 1), "divide by zero gave %g", e.Result())

	e.Evaluate(strings.Fields("3 ( 4 )"))
	assert.Equal(t, formula.InvalidFormula, e.Message())
	assert.Equal(t, 3.0, e.Result())

	e.Evaluate(strings.Fields("2 * 5 + * 4"))
	assert.Equal(t, formula.InvalidFormula, e.Message())
	assert.Equal(t, 5.0, e.Result())

	e.Evaluate(nil)
	assert.Equal(t, formula.EmptyFormula, e.Message())
	assert.Zero(t, e.Result())
}

func TestEvaluateResets(t *testing.T) {
	e := formula.NewEvaluator(nil)
	e.Evaluate(strings.Fields("3 / 0"))
	require.Equal(t, formula.DivideByZero, e.Message())
	e.Evaluate(strings.Fields("3 + 4"))
	assert.Empty(t, e.Message())
	assert.NoError(t, e.Err())
	assert.Equal(t, 7.0, e.Result())
}

func TestEvaluateIdempotent(t *testing.T) {
	srcs := []string{
		"A1 * 2 - 1",
		"( 1 + 2",
		"3 / 0",
		"A1 +",
		"B2",
	}
	s := testSheet(t, "A1=5")
	e := formula.NewEvaluator(s)
	for _, src := range srcs {
		f := strings.Fields(src)
		e.Evaluate(f)
		r, msg := e.Result(), e.Message()
		e.Evaluate(f)
		assert.Equal(t, msg, e.Message(), "message for %q", src)
		assert.Equal(t, r, e.Result(), "result for %q", src)
	}
}

func TestEvaluateReadsOnly(t *testing.T) {
	a1 := new(mocks.Cell)
	a1.On("Message").Return("")
	a1.On("Formula").Return([]string{"2"})
	a1.On("Value").Return(2.0)

	r := new(mocks.Resolver)
	r.On("IsValidCellLabel", "A1").Return(true)
	r.On("CellByLabel", "A1").Return(a1)

	e := formula.NewEvaluator(r)
	e.Evaluate(strings.Fields("A1 * ( A1 + 1 )"))
	require.NoError(t, e.Err())
	assert.Equal(t, 6.0, e.Result())

	r.AssertExpectations(t)
	a1.AssertExpectations(t)
	r.AssertNumberOfCalls(t, "CellByLabel", 2)
}

func TestEvaluatePropagatesCellMessage(t *testing.T) {
	cases := []struct {
		name    string
		msg     string
		formula []string
		want    string
	}{
		{"propagated", "somethingWrong", []string{"1"}, "somethingWrong"},
		{"circular", formula.CircularReference, []string{"A1"}, formula.CircularReference},
		{"empty-ignored", formula.EmptyFormula, nil, formula.InvalidCell},
		{"empty-formula", "", nil, formula.InvalidCell},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cell := new(mocks.Cell)
			cell.On("Message").Return(c.msg)
			cell.On("Formula").Return(c.formula).Maybe()
			cell.On("Value").Return(0.0).Maybe()

			r := new(mocks.Resolver)
			r.On("IsValidCellLabel", "A1").Return(true)
			r.On("CellByLabel", "A1").Return(cell)

			e := formula.NewEvaluator(r)
			e.Evaluate([]string{"A1", "+", "1"})
			assert.Equal(t, c.want, e.Message())
		})
	}
}

func TestEvaluateIsCellReference(t *testing.T) {
	s := sheet.New(2, 2)
	e := formula.NewEvaluator(s)
	assert.True(t, e.IsCellReference("B2"))
	assert.False(t, e.IsCellReference("C1"))
	assert.False(t, e.IsCellReference("1"))
	assert.False(t, formula.NewEvaluator(nil).IsCellReference("A1"))
}

func TestEvaluateLogs(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	e := formula.NewEvaluator(nil, formula.LogHandler(h))
	e.Evaluate(strings.Fields("1 / 0"))
	assert.Contains(t, buf.String(), "evaluation failed")
	assert.Contains(t, buf.String(), "formula.message="+formula.DivideByZero)
}

func TestEvalErrorString(t *testing.T) {
	cases := []struct {
		err  *formula.EvalError
		want string
	}{
		{&formula.EvalError{Message: formula.EmptyFormula}, "emptyFormula"},
		{&formula.EvalError{Message: formula.DivideByZero, Pos: 2, Token: "/"}, `2: divideByZero at "/"`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Error())
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "#DIV/0!", formula.Display(formula.DivideByZero))
	assert.Equal(t, "#REF!", formula.Display(formula.InvalidCell))
	assert.Equal(t, "#ERR", formula.Display(formula.InvalidFormula))
	assert.Equal(t, "#EMPTY!", formula.Display(formula.EmptyFormula))
	assert.Equal(t, "custom", formula.Display("custom"))
	assert.Equal(t, "", formula.Display(""))
}

func BenchmarkEvaluate(b *testing.B) {
	s := sheet.New(26, 100)
	if err := s.Set("A1", []string{"2"}); err != nil {
		b.Fatal(err)
	}
	e := formula.NewEvaluator(s)
	if err := s.Compute("A1", e); err != nil {
		b.Fatal(err)
	}
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		f := strings.Fields("( 2 + 3 ) * 4 - 6 / 3")
		for i := 0; i < b.N; i++ {
			e.Evaluate(f)
		}
	})
	b.Run("cells", func(b *testing.B) {
		b.ReportAllocs()
		f := strings.Fields("A1 * A1 + A1")
		for i := 0; i < b.N; i++ {
			e.Evaluate(f)
		}
	})
}

func Example() {
	s := sheet.New(26, 100)
	e := formula.NewEvaluator(s)
	s.Set("A1", []string{"2", "*", "3"})
	s.Compute("A1", e)

	for _, src := range []string{"A1 + 4", "( 2 + 3 ) * A1", "A1 / 0", "A1 + * 4"} {
		e.Evaluate(strings.Fields(src))
		if e.Message() != "" {
			fmt.Printf("%s: %s\n", src, formula.Display(e.Message()))
			continue
		}
		fmt.Printf("%s: %g\n", src, e.Result())
	}

	// Output:
	// A1 + 4: 10
	// ( 2 + 3 ) * A1: 30
	// A1 / 0: #DIV/0!
	// A1 + * 4: #ERR
}
