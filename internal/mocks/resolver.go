// Package mocks provides testify mocks of the formula collaborators.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/zephyrtronium/formula"
)

// Resolver is a mock implementation of formula.Resolver.
type Resolver struct {
	mock.Mock
}

// IsValidCellLabel is a mock implementation of the IsValidCellLabel method.
func (m *Resolver) IsValidCellLabel(label string) bool {
	args := m.Called(label)
	return args.Bool(0)
}

// CellByLabel is a mock implementation of the CellByLabel method.
func (m *Resolver) CellByLabel(label string) formula.Cell {
	args := m.Called(label)
	return args.Get(0).(formula.Cell)
}

// Cell is a mock implementation of formula.Cell.
type Cell struct {
	mock.Mock
}

// Formula is a mock implementation of the Formula method.
func (m *Cell) Formula() []string {
	args := m.Called()
	f, _ := args.Get(0).([]string)
	return f
}

// Message is a mock implementation of the Message method.
func (m *Cell) Message() string {
	args := m.Called()
	return args.String(0)
}

// Value is a mock implementation of the Value method.
func (m *Cell) Value() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}

var (
	_ formula.Resolver = (*Resolver)(nil)
	_ formula.Cell     = (*Cell)(nil)
)
