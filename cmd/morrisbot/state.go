package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lmorris/morrisbot/game"
)

// loadState reads a game state from a YAML (or JSON) file; "-" is stdin.
//
//	hand: {blue: 9, orange: 9}
//	board: {a1: blue, d1: orange, g1: ""}
func loadState(path string) (*game.State, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return decodeState(r)
}

func decodeState(r io.Reader) (*game.State, error) {
	st := &game.State{}
	if err := yaml.NewDecoder(r).Decode(st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if st.Board == nil {
		return nil, fmt.Errorf("decode state: no board")
	}
	if st.Hand == nil {
		st.Hand = map[game.Player]int{}
	}
	for pos, occ := range st.Board {
		if occ != game.NoPlayer && !occ.Valid() {
			return nil, fmt.Errorf("decode state: %s: %w: %q", pos, game.ErrInvalidPlayer, string(occ))
		}
	}
	return st, nil
}
