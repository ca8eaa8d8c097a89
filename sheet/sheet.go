// Package sheet provides an in-memory grid of cells that formulas can refer
// to by A1-style labels.
package sheet

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/zephyrtronium/formula"
)

// ErrLabel is returned for labels that are malformed or outside the sheet.
var ErrLabel = errors.New("invalid cell label")

// Sheet is a grid of cells. It is safe for concurrent use.
type Sheet struct {
	mu    sync.RWMutex
	cells map[string]*Cell
	cols  int
	rows  int
}

// New creates an empty sheet with the given dimensions.
func New(cols, rows int) *Sheet {
	if cols <= 0 || rows <= 0 {
		panic("sheet: dimensions must be positive, not " + strconv.Itoa(cols) + "x" + strconv.Itoa(rows))
	}
	return &Sheet{
		cells: make(map[string]*Cell),
		cols:  cols,
		rows:  rows,
	}
}

// Cell is a snapshot of one cell of a sheet. It implements formula.Cell.
type Cell struct {
	label   string
	formula []string
	value   float64
	message string
}

// Label returns the cell's label.
func (c *Cell) Label() string {
	return c.label
}

// Formula returns the cell's formula tokens.
func (c *Cell) Formula() []string {
	return c.formula
}

// Value returns the cell's last computed value.
func (c *Cell) Value() float64 {
	return c.value
}

// Message returns the message from the cell's last evaluation.
func (c *Cell) Message() string {
	return c.message
}

var _ formula.Cell = (*Cell)(nil)
var _ formula.Resolver = (*Sheet)(nil)

// Dims returns the number of columns and rows in the sheet.
func (s *Sheet) Dims() (cols, rows int) {
	return s.cols, s.rows
}

// IsValidCellLabel returns whether label is a well-formed label naming a cell
// within the sheet's bounds.
func (s *Sheet) IsValidCellLabel(label string) bool {
	col, row, ok := ParseLabel(label)
	return ok && col < s.cols && row < s.rows
}

// CellByLabel returns a copy of the cell named by label. Cells which have
// never been set are empty and carry formula.EmptyFormula.
func (s *Sheet) CellByLabel(label string) formula.Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(label)
}

func (s *Sheet) snapshot(label string) *Cell {
	c := s.cells[label]
	if c == nil {
		return &Cell{label: label, message: formula.EmptyFormula}
	}
	r := *c
	r.formula = slices.Clone(c.formula)
	return &r
}

// Set stores a formula in a cell and clears its previous outcome. A formula
// that refers to its own cell is stored with formula.CircularReference.
func (s *Sheet) Set(label string, tokens []string) error {
	if !s.IsValidCellLabel(label) {
		return fmt.Errorf("%w: %q", ErrLabel, label)
	}
	c := Cell{label: label, formula: slices.Clone(tokens)}
	switch {
	case len(tokens) == 0:
		c.message = formula.EmptyFormula
	case slices.Contains(tokens, label):
		c.message = formula.CircularReference
	}
	s.mu.Lock()
	s.cells[label] = &c
	s.mu.Unlock()
	return nil
}

// Compute evaluates the formula stored in a cell with e and caches the
// outcome in the cell. Cells carrying formula.CircularReference keep it.
func (s *Sheet) Compute(label string, e *formula.Evaluator) error {
	if !s.IsValidCellLabel(label) {
		return fmt.Errorf("%w: %q", ErrLabel, label)
	}
	c := s.cell(label)
	if c.message == formula.CircularReference {
		return nil
	}
	// Evaluate without holding the lock, since e reads back through s.
	e.Evaluate(c.formula)
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.cells[label]; d == nil || !slices.Equal(d.formula, c.formula) {
		// The cell changed during evaluation. Its new formula has not been
		// computed, so the outcome belongs to nobody.
		return nil
	}
	s.cells[label] = &Cell{
		label:   label,
		formula: c.formula,
		value:   e.Result(),
		message: e.Message(),
	}
	return nil
}

func (s *Sheet) cell(label string) *Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(label)
}

// Labels returns the labels of all cells that have been set, in column-major
// order.
func (s *Sheet) Labels() []string {
	s.mu.RLock()
	r := make([]string, 0, len(s.cells))
	for k := range s.cells {
		r = append(r, k)
	}
	s.mu.RUnlock()
	slices.SortFunc(r, func(a, b string) int {
		ac, ar, _ := ParseLabel(a)
		bc, br, _ := ParseLabel(b)
		if ac != bc {
			return ac - bc
		}
		return ar - br
	})
	return r
}
