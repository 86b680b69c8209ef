package explainer

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/lmorris/morrisbot/game"
)

// MoveRequester is what players and responders need from a Service.
type MoveRequester interface {
	GetMove(ctx context.Context, state *game.State, player game.Player) (string, error)
	SuggestMove(ctx context.Context, state *game.State, player game.Player, lastMove string, opts ...SuggestOption) (*Suggestion, error)
}

// Retrying repeats requests that failed with a Retryable error, backing off
// between attempts. Everything else is returned at once.
type Retrying struct {
	next     MoveRequester
	attempts uint
	delay    time.Duration
}

// NewRetrying wraps next. attempts counts the first try; values below one
// are treated as one.
func NewRetrying(next MoveRequester, attempts int, delay time.Duration) *Retrying {
	return &Retrying{
		next:     next,
		attempts: uint(max(attempts, 1)),
		delay:    delay,
	}
}

func (r *Retrying) options(ctx context.Context, player game.Player) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(Retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Err(err).Uint("n", n).Str("player", string(player)).
				Msg("model-request-failed-try-again")
		}),
	}
}

func (r *Retrying) GetMove(ctx context.Context, state *game.State, player game.Player) (string, error) {
	return retry.DoWithData(func() (string, error) {
		return r.next.GetMove(ctx, state, player)
	}, r.options(ctx, player)...)
}

func (r *Retrying) SuggestMove(ctx context.Context, state *game.State, player game.Player, lastMove string, opts ...SuggestOption) (*Suggestion, error) {
	return retry.DoWithData(func() (*Suggestion, error) {
		return r.next.SuggestMove(ctx, state, player, lastMove, opts...)
	}, r.options(ctx, player)...)
}
