package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlayer is returned for any player token other than blue or orange.
var ErrInvalidPlayer = errors.New("invalid player")

// Player identifies a side. The zero value, NoPlayer, marks an empty point
// when used as a board occupant.
type Player string

const (
	NoPlayer Player = ""
	Blue     Player = "blue"
	Orange   Player = "orange"
)

// Players lists both sides in turn order; blue moves first.
var Players = [2]Player{Blue, Orange}

var opponents = map[Player]Player{
	Blue:   Orange,
	Orange: Blue,
}

// ParsePlayer accepts "blue" or "orange" in any case, with surrounding
// whitespace ignored.
func ParsePlayer(s string) (Player, error) {
	p := Player(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return NoPlayer, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
	return p, nil
}

func (p Player) Valid() bool {
	_, ok := opponents[p]
	return ok
}

// Opponent returns the other side.
func (p Player) Opponent() (Player, error) {
	o, ok := opponents[p]
	if !ok {
		return NoPlayer, fmt.Errorf("%w: %q", ErrInvalidPlayer, string(p))
	}
	return o, nil
}

func (p Player) String() string {
	if p == NoPlayer {
		return "empty"
	}
	return string(p)
}
