package explainer

import (
	"fmt"
	"strings"

	"github.com/lmorris/morrisbot/game"
)

// DescribeState tells the model whose turn it is, how many pieces each side
// has in hand and on the board, and who occupies every point. An invalid
// player is rejected before anything is built.
func DescribeState(s *game.State, player game.Player) (string, error) {
	opp, err := player.Opponent()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "The current player is %s. ", player)
	fmt.Fprintf(&sb, "The player has %d pieces in hand and %d pieces on the board. ",
		s.InHand(player), s.CountOnBoard(player))
	fmt.Fprintf(&sb, "The opponent (%s) has %d pieces in hand and %d pieces on the board. ",
		opp, s.InHand(opp), s.CountOnBoard(opp))
	sb.WriteString("The board is as follows: ")
	for i, pos := range s.Positions() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(pos) + " " + s.Board[pos].String())
	}
	sb.WriteString(".")
	return sb.String(), nil
}

// DescribeTurn is DescribeState followed by the opponent's last move, in
// referee notation. An empty lastMove means we are making the first move.
func DescribeTurn(s *game.State, player game.Player, lastMove string) (string, error) {
	desc, err := DescribeState(s, player)
	if err != nil {
		return "", err
	}
	if lastMove == "" {
		return desc + " There is no previous opponent move; this is the first move of the game.", nil
	}
	return desc + " The opponent's last move was " + lastMove + ".", nil
}
