package formula

import (
	"math"
	"testing"
)

// labels is a Resolver accepting a fixed set of labels.
type labels map[string]float64

func (l labels) IsValidCellLabel(s string) bool {
	_, ok := l[s]
	return ok
}

func (l labels) CellByLabel(s string) Cell {
	return nil
}

func TestClassify(t *testing.T) {
	cases := []struct {
		src  string
		kind tokenKind
	}{
		// numbers
		{"0", tokenNum},
		{"9876543210", tokenNum},
		{"1.5", tokenNum},
		{".5", tokenNum},
		{"5.", tokenNum},
		{"-1", tokenNum},
		{"+1", tokenNum},
		{"1e3", tokenNum},
		{"1e-3", tokenNum},
		{"1e400", tokenNum},
		{"--1", tokenInvalid},
		{".", tokenInvalid},
		{"1.1.1", tokenInvalid},
		{"1e", tokenInvalid},
		{"inf", tokenInvalid},
		{"-Inf", tokenInvalid},
		{"NaN", tokenInvalid},
		{"", tokenInvalid},
		// operators
		{"+", tokenOp},
		{"-", tokenOp},
		{"*", tokenOp},
		{"/", tokenOp},
		{"^", tokenInvalid},
		{"++", tokenInvalid},
		{"×", tokenInvalid},
		// parens
		{"(", tokenOpen},
		{")", tokenClose},
		{"[", tokenInvalid},
		// cells
		{"A1", tokenCell},
		{"B22", tokenCell},
		{"a1", tokenInvalid},
		{"C3", tokenInvalid},
	}
	r := labels{"A1": 1, "B22": 2}
	for _, c := range cases {
		if got := classify(c.src, r); got != c.kind {
			t.Errorf("classifying %q: want %v, got %v", c.src, c.kind, got)
		}
	}
}

func TestClassifyNilResolver(t *testing.T) {
	if got := classify("A1", nil); got != tokenInvalid {
		t.Errorf("A1 with no resolver classified as %v", got)
	}
	if got := classify("1", nil); got != tokenNum {
		t.Errorf("1 with no resolver classified as %v", got)
	}
}

func TestParseNum(t *testing.T) {
	cases := []struct {
		src string
		v   float64
	}{
		{"0", 0},
		{"12", 12},
		{"-2.5", -2.5},
		{"1e2", 100},
		{"1e400", math.Inf(1)},
		{"-1e400", math.Inf(-1)},
	}
	for _, c := range cases {
		v, ok := parseNum(c.src)
		if !ok {
			t.Errorf("%q didn't parse", c.src)
			continue
		}
		if v != c.v {
			t.Errorf("%q parsed to %g, want %g", c.src, v, c.v)
		}
	}
}

func TestPrecedence(t *testing.T) {
	for _, r := range Operators {
		if p := Precedence(string(r)); p == 0 {
			t.Errorf("no precedence for %c", r)
		}
	}
	if Precedence("*") <= Precedence("+") {
		t.Errorf("* should bind tighter than +")
	}
	if Precedence("/") != Precedence("*") || Precedence("-") != Precedence("+") {
		t.Errorf("mismatched precedence levels")
	}
	for _, s := range []string{"(", ")", "^", "A1", "1", ""} {
		if p := Precedence(s); p != 0 {
			t.Errorf("%q has precedence %d", s, p)
		}
	}
}

func TestTokenString(t *testing.T) {
	tok := token{text: "+", kind: tokenOp, pos: 2}
	if got, want := tok.String(), "Op:+@2"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	if got, want := tokenKind(99).String(), "tokenKind(99)"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
