package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/bot"
	"github.com/lmorris/morrisbot/config"
	"github.com/lmorris/morrisbot/explainer"
	"github.com/lmorris/morrisbot/game"
	"github.com/lmorris/morrisbot/history"
	"github.com/lmorris/morrisbot/referee"
)

// HandleTimeout bounds one NATS move request, retries and reprompts included.
const HandleTimeout = 3 * time.Minute

func usage(w io.Writer) {
	io.WriteString(w, "usage: morrisbot <command> [flags]\n")
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "suggest <state.yaml|-> <blue|orange> [last-move] - print a suggested move for a position\n")
	io.WriteString(w, "play - play against a referee on stdin/stdout\n")
	io.WriteString(w, "serve - answer move requests over NATS\n")
	io.WriteString(w, "ask <state.yaml|-> <blue|orange> [last-move] - ask a running server for a move over NATS\n")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := os.Args[1]

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// stdout belongs to the referee protocol; logs go to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, cfg, cfg.Args()); err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("exiting")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, cfg *config.Config, args []string) error {
	switch cmd {
	case "ask":
		return ask(cfg, args)
	case "suggest", "play", "serve":
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}

	requester, cleanup, err := newRequester(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	switch cmd {
	case "suggest":
		return suggest(ctx, requester, args)
	case "play":
		p := referee.NewPlayer(requester, requester.Table(), cfg.GetInt(config.ConfigMaxReprompts)+1,
			os.Stdin, os.Stdout)
		return p.Run(ctx)
	default:
		return serve(ctx, cfg, requester)
	}
}

// requester is a retrying service that still knows its board.
type requester struct {
	*explainer.Retrying
	svc *explainer.Service
}

func (r *requester) Table() *board.Table { return r.svc.Table() }

func newRequester(ctx context.Context, cfg *config.Config) (*requester, func(), error) {
	gen, err := explainer.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []explainer.Option{
		explainer.WithTimeout(cfg.GetDuration(config.ConfigGenaiTimeout)),
		explainer.WithReprompts(cfg.GetInt(config.ConfigMaxReprompts)),
	}
	cleanup := func() {}
	if path := cfg.GetString(config.ConfigHistoryPath); path != "" {
		repo, err := history.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		opts = append(opts, explainer.WithRecorder(repo))
		cleanup = repo.Close
		log.Info().Str("path", path).Msg("recording exchanges")
	}
	svc := explainer.NewService(gen, opts...)
	retrying := explainer.NewRetrying(svc,
		cfg.GetInt(config.ConfigGenaiRetries),
		cfg.GetDuration(config.ConfigGenaiRetryDelay))
	return &requester{Retrying: retrying, svc: svc}, cleanup, nil
}

// turnArgs reads the <state> <player> [last-move] arguments shared by
// suggest and ask.
func turnArgs(cmd string, args []string) (*game.State, game.Player, string, error) {
	if len(args) < 2 {
		return nil, game.NoPlayer, "", fmt.Errorf("%s needs a state file and a player", cmd)
	}
	st, err := loadState(args[0])
	if err != nil {
		return nil, game.NoPlayer, "", err
	}
	player, err := game.ParsePlayer(args[1])
	if err != nil {
		return nil, game.NoPlayer, "", err
	}
	lastMove := ""
	if len(args) > 2 {
		lastMove = args[2]
	}
	return st, player, lastMove, nil
}

func suggest(ctx context.Context, r *requester, args []string) error {
	st, player, lastMove, err := turnArgs("suggest", args)
	if err != nil {
		return err
	}
	log.Debug().Msg("state:\n" + st.ToDisplayText())
	sug, err := r.SuggestMove(ctx, st, player, lastMove)
	if err != nil {
		return err
	}
	notation, err := sug.Move.Notation(player)
	if err != nil {
		return err
	}
	fmt.Println(notation)
	fmt.Fprintln(os.Stderr, sug.Raw)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, r *requester) error {
	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	responder := bot.NewResponder(r, HandleTimeout)
	if err := responder.Subscribe(ctx, nc, cfg.GetString(config.ConfigNatsSubject)); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info().Msg("got quit signal...")
	return responder.Drain()
}

func ask(cfg *config.Config, args []string) error {
	st, player, lastMove, err := turnArgs("ask", args)
	if err != nil {
		return err
	}
	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	client := bot.NewClient(nc, cfg.GetString(config.ConfigNatsSubject), HandleTimeout)
	m, err := client.RequestMove(&bot.Request{State: st, Player: player, LastMove: lastMove}, board.Standard())
	if err != nil {
		return err
	}
	notation, err := m.Notation(player)
	if err != nil {
		return err
	}
	fmt.Println(notation)
	return nil
}
