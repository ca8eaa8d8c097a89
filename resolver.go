package formula

// Resolver looks up the cells that a formula refers to. An Evaluator only
// reads from its Resolver.
type Resolver interface {
	// IsValidCellLabel returns whether a token names a cell.
	IsValidCellLabel(label string) bool
	// CellByLabel returns the cell named by a valid label.
	CellByLabel(label string) Cell
}

// Cell is the view of a spreadsheet cell needed to use its value in another
// formula.
type Cell interface {
	// Formula returns the tokens of the cell's formula. An empty cell has an
	// empty formula.
	Formula() []string
	// Message returns the message from the cell's last evaluation, or the
	// empty string if it succeeded.
	Message() string
	// Value returns the cell's last computed value.
	Value() float64
}
