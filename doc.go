// Package formula evaluates tokenized spreadsheet formulas.
//
// A formula is a sequence of tokens that have already been split apart by
// some tokenizer: numbers, cell references, the operators + - * /, and
// parentheses. "( 2 + 3 ) * A1" is the formula []string{"(", "2", "+", "3",
// ")", "*", "A1"}. Multiplication and division bind tighter than addition and
// subtraction, and operators of equal precedence associate to the left.
//
// Cell references are resolved through a Resolver, which reports each cell's
// formula, cached value, and any message left by a previous evaluation.
// Failures are reported as data through Evaluator.Message rather than as
// panics, so that a sheet can store them alongside the values of its cells.
//
package formula
