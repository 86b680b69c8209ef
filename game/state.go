// Package game holds a snapshot of a Lasker Morris game: how many pieces each
// side still has in hand and who occupies each point. It does not know the
// rules; the bookkeeping methods only keep the snapshot self-consistent.
package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/lmorris/morrisbot/board"
)

// StartingHand is the number of pieces each side begins with.
const StartingHand = 10

var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrOccupied        = errors.New("position is occupied")
	ErrNotOwned        = errors.New("position is not held by player")
	ErrEmptyHand       = errors.New("no pieces left in hand")
)

// State is a game snapshot. An empty point is stored as NoPlayer; a point
// missing from Board is treated the same way.
type State struct {
	Hand  map[Player]int            `json:"hand" yaml:"hand"`
	Board map[board.Position]Player `json:"board" yaml:"board"`
}

// NewState returns the opening position for the given table: every point
// empty and StartingHand pieces for each side.
func NewState(t *board.Table) *State {
	s := &State{
		Hand:  map[Player]int{Blue: StartingHand, Orange: StartingHand},
		Board: make(map[board.Position]Player, t.Len()),
	}
	for _, p := range t.Positions() {
		s.Board[p] = NoPlayer
	}
	return s
}

// Copy returns a deep copy of the state.
func (s *State) Copy() *State {
	return &State{
		Hand:  maps.Clone(s.Hand),
		Board: maps.Clone(s.Board),
	}
}

// CountOnBoard recounts the points occupied by p.
func (s *State) CountOnBoard(p Player) int {
	return lo.CountBy(lo.Values(s.Board), func(o Player) bool {
		return o == p
	})
}

// InHand returns the number of pieces p has not placed yet.
func (s *State) InHand(p Player) int {
	return s.Hand[p]
}

// Positions returns the board's positions sorted by name.
func (s *State) Positions() []board.Position {
	return slices.Sorted(maps.Keys(s.Board))
}

// Occupant returns who holds pos, and whether pos is on the board at all.
func (s *State) Occupant(pos board.Position) (Player, bool) {
	o, ok := s.Board[pos]
	return o, ok
}

func (s *State) emptyPoint(pos board.Position) error {
	o, ok := s.Board[pos]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, pos)
	}
	if o != NoPlayer {
		return fmt.Errorf("%w: %s (%s)", ErrOccupied, pos, o)
	}
	return nil
}

func (s *State) ownedPoint(pos board.Position, p Player) error {
	o, ok := s.Board[pos]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, pos)
	}
	if o != p {
		return fmt.Errorf("%w: %s holds %s, not %s", ErrNotOwned, pos, o, p)
	}
	return nil
}

// Place moves one of p's hand pieces onto an empty point.
func (s *State) Place(p Player, to board.Position) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, string(p))
	}
	if s.Hand[p] <= 0 {
		return fmt.Errorf("%w: %s", ErrEmptyHand, p)
	}
	if err := s.emptyPoint(to); err != nil {
		return err
	}
	s.Hand[p]--
	s.Board[to] = p
	return nil
}

// Relocate moves p's piece from one point to an empty point. Adjacency is
// not checked.
func (s *State) Relocate(p Player, from, to board.Position) error {
	if err := s.ownedPoint(from, p); err != nil {
		return err
	}
	if err := s.emptyPoint(to); err != nil {
		return err
	}
	s.Board[from] = NoPlayer
	s.Board[to] = p
	return nil
}

// Remove takes victim's piece off the board.
func (s *State) Remove(victim Player, at board.Position) error {
	if err := s.ownedPoint(at, victim); err != nil {
		return err
	}
	s.Board[at] = NoPlayer
	return nil
}

// ToDisplayText renders the state for logs and the CLI.
func (s *State) ToDisplayText() string {
	var sb strings.Builder
	for _, p := range Players {
		fmt.Fprintf(&sb, "%-6s hand: %2d  board: %2d\n", p, s.InHand(p), s.CountOnBoard(p))
	}
	for i, pos := range s.Positions() {
		if i > 0 {
			sb.WriteString(" ")
		}
		o := s.Board[pos]
		mark := "."
		switch o {
		case Blue:
			mark = "B"
		case Orange:
			mark = "O"
		}
		sb.WriteString(string(pos) + ":" + mark)
	}
	sb.WriteString("\n")
	return sb.String()
}
