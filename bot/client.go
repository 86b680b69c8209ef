package bot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/move"
)

// Client asks a remote Responder for moves.
type Client struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

func NewClient(nc *nats.Conn, subject string, timeout time.Duration) *Client {
	return &Client{nc: nc, subject: subject, timeout: timeout}
}

// RequestMove sends req and parses the move that comes back.
func (c *Client) RequestMove(req *Request, t *board.Table) (*move.Move, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	res, err := c.nc.Request(c.subject, data, c.timeout)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))
	return decodeResponse(res.Data, t)
}

func decodeResponse(data []byte, t *board.Table) (*move.Move, error) {
	resp := Response{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("Bot returned: " + resp.Error)
	}
	return move.Parse(resp.Move, t)
}
