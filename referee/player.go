// Package referee plays a game against a referee process over a line
// protocol. The first line names our colour; after that every line is the
// opponent's move ("a1 a4 r0") until a line starting with END. Our moves are
// written one per line in the same notation. Blue moves first.
package referee

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/explainer"
	"github.com/lmorris/morrisbot/game"
	"github.com/lmorris/morrisbot/move"
)

const endMarker = "END"

var ErrNoColor = errors.New("referee closed the stream before naming our colour")

type Player struct {
	requester explainer.MoveRequester
	table     *board.Table
	// attempts is how many suggestions we ask for before giving up on a
	// turn whose suggestions cannot be applied to the tracked state.
	attempts int

	in  *bufio.Reader
	out io.Writer

	color game.Player
	state *game.State
}

func NewPlayer(requester explainer.MoveRequester, table *board.Table, attempts int, in io.Reader, out io.Writer) *Player {
	return &Player{
		requester: requester,
		table:     table,
		attempts:  max(attempts, 1),
		in:        bufio.NewReader(in),
		out:       out,
	}
}

// State returns the tracked game state.
func (p *Player) State() *game.State {
	return p.state
}

func (p *Player) readLine() (string, error) {
	for {
		line, err := p.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Run plays until the referee sends END or closes the stream.
func (p *Player) Run(ctx context.Context) error {
	line, err := p.readLine()
	if err == io.EOF {
		return ErrNoColor
	}
	if err != nil {
		return err
	}
	p.color, err = game.ParsePlayer(line)
	if err != nil {
		return err
	}
	p.state = game.NewState(p.table)
	logger := log.With().Str("color", string(p.color)).Logger()
	logger.Info().Msg("game-start")

	opp, _ := p.color.Opponent()
	lastMove := ""
	if p.color == game.Blue {
		if err := p.play(ctx, lastMove); err != nil {
			return err
		}
	}
	for {
		line, err := p.readLine()
		if err == io.EOF {
			logger.Info().Msg("referee-closed-stream")
			return nil
		}
		if err != nil {
			return err
		}
		if strings.HasPrefix(line, endMarker) {
			logger.Info().Str("result", line).Msg("game-over")
			return nil
		}
		m, err := move.Parse(line, p.table)
		if err != nil {
			return fmt.Errorf("opponent move %q: %w", line, err)
		}
		if err := m.ApplyTo(p.state, opp); err != nil {
			return fmt.Errorf("opponent move %q: %w", line, err)
		}
		lastMove = line
		logger.Debug().Str("move", line).Msg("opponent-moved")
		if err := p.play(ctx, lastMove); err != nil {
			return err
		}
	}
}

// play asks for a move, records it and sends it to the referee.
func (p *Player) play(ctx context.Context, lastMove string) error {
	var lastErr error
	var opts []explainer.SuggestOption
	for attempt := 0; attempt < p.attempts; attempt++ {
		sug, err := p.requester.SuggestMove(ctx, p.state, p.color, lastMove, opts...)
		if err != nil {
			return err
		}
		if err := sug.Move.ApplyTo(p.state, p.color); err != nil {
			log.Warn().Err(err).Str("raw", sug.Raw).Msg("suggested-move-does-not-fit-board")
			lastErr = err
			rejected, nerr := sug.Move.Notation(p.color)
			if nerr != nil {
				rejected = sug.Move.String()
			}
			opts = []explainer.SuggestOption{explainer.Rejected(rejected, err)}
			continue
		}
		notation, err := sug.Move.Notation(p.color)
		if err != nil {
			return err
		}
		log.Debug().Str("move", notation).Msg("playing")
		_, err = fmt.Fprintln(p.out, notation)
		return err
	}
	return fmt.Errorf("no applicable move after %d suggestions: %w", p.attempts, lastErr)
}
