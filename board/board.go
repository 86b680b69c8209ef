// Package board describes the fixed geometry of a Morris board: its named
// positions, which positions neighbour one another, and which lines of three
// form a mill.
package board

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// A Position is a named point on the board, e.g. "a1".
type Position string

// Table is an adjacency table. The order in which positions were added is
// the canonical iteration order; neighbour lists keep their stored order.
type Table struct {
	positions []Position
	adjacent  map[Position][]Position
}

// NewTable creates an empty adjacency table.
func NewTable() *Table {
	return &Table{adjacent: make(map[Position][]Position)}
}

// Add appends a position with its neighbours. Adding a position twice
// replaces its neighbour list but keeps its original place in the order.
func (t *Table) Add(p Position, neighbors ...Position) {
	if _, ok := t.adjacent[p]; !ok {
		t.positions = append(t.positions, p)
	}
	t.adjacent[p] = slices.Clone(neighbors)
}

// Positions returns every position in canonical order.
func (t *Table) Positions() []Position {
	return slices.Clone(t.positions)
}

// Neighbors returns the neighbours of p in stored order.
func (t *Table) Neighbors(p Position) []Position {
	return slices.Clone(t.adjacent[p])
}

func (t *Table) Contains(p Position) bool {
	_, ok := t.adjacent[p]
	return ok
}

func (t *Table) Len() int {
	return len(t.positions)
}

// Adjacent reports whether b is listed as a neighbour of a.
func (t *Table) Adjacent(a, b Position) bool {
	return lo.Contains(t.adjacent[a], b)
}

// CheckSymmetric returns an error naming the first pair a, b where b is
// listed as adjacent to a but not the other way around, or where a neighbour
// is not a position of the table at all. Tables are not required to pass
// this; it exists so callers can verify a hand-written layout.
func (t *Table) CheckSymmetric() error {
	for _, a := range t.positions {
		for _, b := range t.adjacent[a] {
			if !t.Contains(b) {
				return fmt.Errorf("%s lists unknown neighbour %s", a, b)
			}
			if !t.Adjacent(b, a) {
				return fmt.Errorf("%s is adjacent to %s, but %s is not adjacent to %s", a, b, b, a)
			}
		}
	}
	return nil
}

// A Mill is a line of three positions.
type Mill [3]Position
