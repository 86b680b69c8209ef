package explainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/game"
	"github.com/lmorris/morrisbot/move"
)

const correctionPrompt = "Your last answer did not contain a move I could read (%v). " +
	"Answer again for the same board state, starting with the move in the format (source destination removal)."

const rejectedPrompt = "The last move you generated, (%s), was marked as invalid: %v. " +
	"Generate a different move for the same board state."

// Exchange is one request/response pair with the model.
type Exchange struct {
	Player   game.Player
	Model    string
	System   string
	Prompt   string
	Response string
	Err      error
	Latency  time.Duration
}

// Recorder receives every exchange. A recorder error is logged, never
// returned to the caller of GetMove.
type Recorder interface {
	Record(ctx context.Context, ex *Exchange) error
}

// Service asks a text model for Lasker Morris moves. It holds no state that
// changes between calls.
type Service struct {
	gen          Generator
	table        *board.Table
	rules        string
	timeout      time.Duration
	maxReprompts int
	recorder     Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each model request. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithReprompts sets how many correction prompts SuggestMove sends when a
// reply holds no readable move.
func WithReprompts(n int) Option {
	return func(s *Service) { s.maxReprompts = max(n, 0) }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithBoard replaces the standard board and its rules text.
func WithBoard(t *board.Table, mills []board.Mill) Option {
	return func(s *Service) {
		s.table = t
		s.rules = DescribeRules(t, mills)
	}
}

// NewService creates a service for the standard board.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{
		gen:   gen,
		table: board.Standard(),
		rules: StandardRules(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rules returns the system instruction sent with every request.
func (s *Service) Rules() string {
	return s.rules
}

// Table returns the board the service describes.
func (s *Service) Table() *board.Table {
	return s.table
}

// GetMove describes state from player's point of view, sends it with the
// rules to the model and returns the reply unmodified.
func (s *Service) GetMove(ctx context.Context, state *game.State, player game.Player) (string, error) {
	prompt, err := DescribeState(state, player)
	if err != nil {
		return "", err
	}
	return s.ask(ctx, player, prompt)
}

func (s *Service) ask(ctx context.Context, player game.Player, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	log.Debug().Str("player", string(player)).Msg("Prompt:\n" + prompt)

	start := time.Now()
	text, err := s.gen.Generate(ctx, s.rules, prompt)
	latency := time.Since(start)
	if err != nil {
		err = classify(err)
	} else if strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	s.record(ctx, &Exchange{
		Player:   player,
		Model:    s.gen.Model(),
		System:   s.rules,
		Prompt:   prompt,
		Response: text,
		Err:      err,
		Latency:  latency,
	})
	if err != nil {
		log.Err(err).Str("player", string(player)).Dur("latency", latency).Msg("model-request-failed")
		return "", err
	}
	log.Info().Str("player", string(player)).Dur("latency", latency).Msg("model-replied")
	return text, nil
}

func (s *Service) record(ctx context.Context, ex *Exchange) {
	if s.recorder == nil {
		return
	}
	// The request context may already be past its deadline.
	if err := s.recorder.Record(context.WithoutCancel(ctx), ex); err != nil {
		log.Err(err).Msg("record-exchange-failed")
	}
}

// Suggestion is a parsed move plus the text it was read from.
type Suggestion struct {
	Move *move.Move
	Raw  string
}

// SuggestOption adjusts a single SuggestMove request.
type SuggestOption func(*suggestRequest)

type suggestRequest struct {
	rejected string
	reason   error
}

// Rejected tells the model that its previous suggestion, in referee
// notation, could not be played and why.
func Rejected(notation string, reason error) SuggestOption {
	return func(r *suggestRequest) {
		r.rejected = notation
		r.reason = reason
	}
}

// SuggestMove asks for a move and parses it. lastMove is the opponent's
// previous move in referee notation, or empty on the first move. If the
// reply holds no well-formed move, or places from the other side's hand,
// the model is told so and asked again, up to the configured number of
// reprompts. The move is not checked against the rules.
func (s *Service) SuggestMove(ctx context.Context, state *game.State, player game.Player, lastMove string, opts ...SuggestOption) (*Suggestion, error) {
	turn, err := DescribeTurn(state, player, lastMove)
	if err != nil {
		return nil, err
	}
	req := &suggestRequest{}
	for _, o := range opts {
		o(req)
	}
	if req.rejected != "" {
		turn = fmt.Sprintf(rejectedPrompt, req.rejected, req.reason) + " " + turn
	}
	var parseErr error
	for attempt := 0; attempt <= s.maxReprompts; attempt++ {
		prompt := turn
		if attempt > 0 {
			log.Info().Int("attempt", attempt).AnErr("parse-error", parseErr).Msg("reprompting")
			prompt = fmt.Sprintf(correctionPrompt, parseErr) + " " + turn
		}
		text, err := s.ask(ctx, player, prompt)
		if err != nil {
			return nil, err
		}
		m, err := move.Extract(text, s.table)
		if err == nil {
			err = m.CheckHand(player)
		}
		if err == nil {
			return &Suggestion{Move: m, Raw: text}, nil
		}
		parseErr = err
	}
	return nil, fmt.Errorf("no usable move after %d reprompts: %w", s.maxReprompts, parseErr)
}

// IsInputError reports whether err was caused by the caller's arguments
// rather than the model service.
func IsInputError(err error) bool {
	return errors.Is(err, game.ErrInvalidPlayer)
}
