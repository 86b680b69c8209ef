package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/lmorris/morrisbot/explainer"
	"github.com/lmorris/morrisbot/game"
)

func TestRecordAndRecent(t *testing.T) {
	is := is.New(t)
	repo, err := Open(":memory:")
	is.NoErr(err)
	defer repo.Close()
	ctx := context.Background()

	is.NoErr(repo.Record(ctx, &explainer.Exchange{
		Player: game.Blue, Model: "fake", System: "rules v1",
		Prompt: "p1", Response: "(h1 a1 r0)", Latency: 1500 * time.Millisecond,
	}))
	is.NoErr(repo.Record(ctx, &explainer.Exchange{
		Player: game.Orange, Model: "fake", System: "rules v1",
		Prompt: "p2", Err: errors.New("boom"),
	}))

	rows, err := repo.Recent(ctx, 10)
	is.NoErr(err)
	is.Equal(len(rows), 2)
	is.Equal(rows[0].Player, "orange")
	is.Equal(rows[0].Error, "boom")
	is.Equal(rows[1].Response, "(h1 a1 r0)")
	is.Equal(rows[1].Latency, 1500*time.Millisecond)
	is.Equal(rows[0].RulesHash, RulesHash("rules v1"))

	text, err := repo.Rules(ctx, rows[0].RulesHash)
	is.NoErr(err)
	is.Equal(text, "rules v1")
}

func TestRulesHashStable(t *testing.T) {
	is := is.New(t)
	is.Equal(RulesHash("abc"), RulesHash("abc"))
	is.True(RulesHash("abc") != RulesHash("abd"))
}

var _ explainer.Recorder = (*Repository)(nil)
