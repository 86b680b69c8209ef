package move

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/game"
)

const (
	// NoRemoval is the removal field of a move that does not form a mill.
	NoRemoval = "r0"
	// bareHand is accepted from the model when it forgets which hand is ours.
	bareHand = "h"
)

var (
	ErrBadNotation = errors.New("bad move notation")
	ErrNoMove      = errors.New("no move found in text")
)

// handTokens maps each side to its referee hand token.
var handTokens = map[game.Player]string{
	game.Blue:   "h1",
	game.Orange: "h2",
}

var reParens *regexp.Regexp

func init() {
	reParens = regexp.MustCompile(`\(([^()]+)\)`)
}

// Move is a single Lasker Morris turn: a hand placement or a piece moved
// between points, plus an optional capture.
type Move struct {
	// FromHand is set for placements. Hand names the hand token's owner when
	// the notation said h1 or h2; it is NoPlayer for a bare "h".
	FromHand bool
	Hand     game.Player

	Source  board.Position
	Dest    board.Position
	Removal board.Position
}

// HandToken returns "h1" for blue and "h2" for orange.
func HandToken(p game.Player) (string, error) {
	tok, ok := handTokens[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidPlayer, string(p))
	}
	return tok, nil
}

func parseSource(tok string, t *board.Table) (fromHand bool, hand game.Player, src board.Position, err error) {
	if tok == bareHand {
		return true, game.NoPlayer, "", nil
	}
	for p, ht := range handTokens {
		if tok == ht {
			return true, p, "", nil
		}
	}
	if !t.Contains(board.Position(tok)) {
		return false, game.NoPlayer, "", fmt.Errorf("%w: unknown source %q", ErrBadNotation, tok)
	}
	return false, game.NoPlayer, board.Position(tok), nil
}

// Parse reads referee notation: "source destination removal", e.g.
// "h1 a1 r0" or "a4 a7 b2". Fields may be separated by spaces or commas.
// Positions are checked against t; nothing else about the move is.
func Parse(s string, t *board.Table) (*Move, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: want 3 fields, got %d in %q", ErrBadNotation, len(fields), s)
	}
	m := &Move{}
	var err error
	m.FromHand, m.Hand, m.Source, err = parseSource(fields[0], t)
	if err != nil {
		return nil, err
	}
	m.Dest = board.Position(fields[1])
	if !t.Contains(m.Dest) {
		return nil, fmt.Errorf("%w: unknown destination %q", ErrBadNotation, fields[1])
	}
	if fields[2] != NoRemoval {
		m.Removal = board.Position(fields[2])
		if !t.Contains(m.Removal) {
			return nil, fmt.Errorf("%w: unknown removal %q", ErrBadNotation, fields[2])
		}
	}
	if !m.FromHand && m.Source == m.Dest {
		return nil, fmt.Errorf("%w: source and destination are both %s", ErrBadNotation, m.Dest)
	}
	return m, nil
}

// Extract finds the first parenthesised move in free text, such as a model
// reply ("I'll place centrally: (h1 d2 r0)"). If no parenthesised group
// parses, each line of text is tried as bare notation.
func Extract(text string, t *board.Table) (*Move, error) {
	var lastErr error
	for _, grp := range reParens.FindAllStringSubmatch(text, -1) {
		m, err := Parse(grp[1], t)
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`.")
		if line == "" {
			continue
		}
		if m, err := Parse(line, t); err == nil {
			return m, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMove, lastErr)
	}
	return nil, ErrNoMove
}

// Notation renders the move as the referee expects it from mover.
func (m *Move) Notation(mover game.Player) (string, error) {
	src := string(m.Source)
	if m.FromHand {
		tok, err := HandToken(mover)
		if err != nil {
			return "", err
		}
		src = tok
	}
	rem := NoRemoval
	if m.Removal != "" {
		rem = string(m.Removal)
	}
	return fmt.Sprintf("%s %s %s", src, m.Dest, rem), nil
}

// String provides a string just for debugging purposes.
func (m *Move) String() string {
	src := string(m.Source)
	if m.FromHand {
		src = bareHand
		if tok, ok := handTokens[m.Hand]; ok {
			src = tok
		}
	}
	rem := NoRemoval
	if m.Removal != "" {
		rem = string(m.Removal)
	}
	return fmt.Sprintf("<move %s %s %s>", src, m.Dest, rem)
}

// CheckHand rejects a placement whose hand token names the other side.
func (m *Move) CheckHand(mover game.Player) error {
	if m.FromHand && m.Hand != game.NoPlayer && m.Hand != mover {
		return fmt.Errorf("%w: %s cannot place from %s's hand", ErrBadNotation, mover, m.Hand)
	}
	return nil
}

// ApplyTo records the move in s as played by mover. A hand token naming
// the other side is rejected. The state is left untouched on error.
func (m *Move) ApplyTo(s *game.State, mover game.Player) error {
	opp, err := mover.Opponent()
	if err != nil {
		return err
	}
	if err := m.CheckHand(mover); err != nil {
		return err
	}
	next := s.Copy()
	if m.FromHand {
		err = next.Place(mover, m.Dest)
	} else {
		err = next.Relocate(mover, m.Source, m.Dest)
	}
	if err != nil {
		return err
	}
	if m.Removal != "" {
		if err := next.Remove(opp, m.Removal); err != nil {
			return err
		}
	}
	s.Hand, s.Board = next.Hand, next.Board
	return nil
}
