package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/lmorris/morrisbot/explainer"
	"github.com/lmorris/morrisbot/game"
)

// Responder answers move requests arriving on a NATS subject.
type Responder struct {
	requester explainer.MoveRequester
	// timeout bounds the whole handling of one message, retries included.
	timeout time.Duration

	sub *nats.Subscription
}

func NewResponder(requester explainer.MoveRequester, timeout time.Duration) *Responder {
	return &Responder{requester: requester, timeout: timeout}
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

func (r *Responder) handle(ctx context.Context, data []byte) *Response {
	req := Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("Could not parse request", err)
	}
	if req.State == nil {
		return errorResponse("Could not parse request", errors.New("missing state"))
	}
	player, err := game.ParsePlayer(string(req.Player))
	if err != nil {
		return errorResponse("Bad request", err)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	sug, err := r.requester.SuggestMove(ctx, req.State, player, req.LastMove)
	if err != nil {
		if explainer.IsInputError(err) {
			return errorResponse("Bad request", err)
		}
		return errorResponse("Could not get a move", err)
	}
	notation, err := sug.Move.Notation(player)
	if err != nil {
		return errorResponse("Could not format move", err)
	}
	log.Info().Str("player", string(player)).Str("move", notation).Msg("generated-move")
	return &Response{Move: notation, Raw: sug.Raw}
}

// Subscribe starts answering on subject. Messages are handled on the
// connection's delivery goroutine, one at a time.
func (r *Responder) Subscribe(ctx context.Context, nc *nats.Conn, subject string) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		resp := r.handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// Should never happen, ideally, but we need to do something sensible here.
			m.Respond([]byte(err.Error()))
			return
		}
		if err := m.Respond(data); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		sub.Unsubscribe()
		return err
	}
	if err := nc.LastError(); err != nil {
		sub.Unsubscribe()
		return err
	}
	r.sub = sub
	log.Info().Msgf("Listening on [%s]", subject)
	return nil
}

// Drain stops taking new messages and waits for in-flight ones.
func (r *Responder) Drain() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Drain()
}
