package bot

import (
	"github.com/lmorris/morrisbot/game"
)

// Request asks the bot for a move. LastMove is the opponent's previous
// move in referee notation, empty on the first move.
type Request struct {
	State    *game.State `json:"state"`
	Player   game.Player `json:"player"`
	LastMove string      `json:"last_move,omitempty"`
}

// Response carries either a move or an error message.
type Response struct {
	Move  string `json:"move,omitempty"`
	Raw   string `json:"raw,omitempty"`
	Error string `json:"error,omitempty"`
}
