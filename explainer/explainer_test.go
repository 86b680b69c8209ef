package explainer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	openaiapi "github.com/openai/openai-go/v2"
	"google.golang.org/genai"

	"github.com/lmorris/morrisbot/board"
	"github.com/lmorris/morrisbot/config"
	"github.com/lmorris/morrisbot/game"
)

type call struct {
	system, prompt string
}

// fakeGenerator replays canned replies in order.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   []call
	block   bool
}

func (f *fakeGenerator) Model() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, call{system, prompt})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	var err error
	if n < len(f.errs) {
		err = f.errs[n]
	}
	if err != nil {
		return "", err
	}
	if n < len(f.replies) {
		return f.replies[n], nil
	}
	return f.replies[len(f.replies)-1], nil
}

type memRecorder struct {
	exchanges []*Exchange
}

func (m *memRecorder) Record(ctx context.Context, ex *Exchange) error {
	m.exchanges = append(m.exchanges, ex)
	return nil
}

func TestDescribeRulesListsEveryPosition(t *testing.T) {
	is := is.New(t)
	tbl := board.Standard()
	rules := DescribeRules(tbl, board.LaskerMorrisMills)
	for _, p := range tbl.Positions() {
		clause := string(p) + " is adjacent to "
		is.Equal(strings.Count(rules, clause), 1)
		ns := tbl.Neighbors(p)
		want := make([]string, len(ns))
		for i, n := range ns {
			want[i] = string(n)
		}
		is.True(strings.Contains(rules, clause+strings.Join(want, ", ")+". "))
	}
	is.True(strings.Contains(rules, "d2 is adjacent to b2, f2, d1, d3. "))
	is.True(strings.Contains(rules, "a1-d1-g1"))
	is.True(!strings.Contains(rules, "{adjacency}"))
	is.True(!strings.Contains(rules, ", ."))
}

func TestDescribeRulesIdempotent(t *testing.T) {
	is := is.New(t)
	is.Equal(DescribeRules(board.Standard(), board.LaskerMorrisMills),
		DescribeRules(board.Standard(), board.LaskerMorrisMills))
	is.Equal(StandardRules(), StandardRules())
	is.Equal(StandardRules(), DescribeRules(board.Standard(), board.LaskerMorrisMills))
}

func TestDescribeRulesEmptyNeighbours(t *testing.T) {
	is := is.New(t)
	tbl := board.NewTable()
	tbl.Add("x1")
	tbl.Add("x2", "x3")
	tbl.Add("x3", "x2")
	rules := DescribeRules(tbl, nil)
	is.True(strings.Contains(rules, "x1 is adjacent to no other space. x2 is adjacent to x3. x3 is adjacent to x2. "))
	is.True(strings.Contains(rules, "form a mill are: none."))
}

func twoPointState() *game.State {
	return &game.State{
		Hand:  map[game.Player]int{game.Orange: 8, game.Blue: 9},
		Board: map[board.Position]game.Player{"a1": game.Orange, "d1": game.NoPlayer},
	}
}

func TestDescribeState(t *testing.T) {
	is := is.New(t)
	desc, err := DescribeState(twoPointState(), game.Orange)
	is.NoErr(err)
	is.True(strings.Contains(desc, "The current player is orange."))
	is.True(strings.Contains(desc, "8 pieces in hand and 1 pieces on the board"))
	is.True(strings.Contains(desc, "9 pieces in hand and 0 pieces on the board"))
	is.True(strings.HasSuffix(desc, "The board is as follows: a1 orange, d1 empty."))

	desc, err = DescribeState(twoPointState(), game.Blue)
	is.NoErr(err)
	is.True(strings.Contains(desc, "The player has 9 pieces in hand and 0 pieces on the board."))
	is.True(strings.Contains(desc, "The opponent (orange) has 8 pieces in hand and 1 pieces on the board."))
}

func TestDescribeStateInvalidPlayer(t *testing.T) {
	is := is.New(t)
	desc, err := DescribeState(twoPointState(), "green")
	is.True(errors.Is(err, game.ErrInvalidPlayer))
	is.Equal(desc, "")
	is.True(IsInputError(err))
}

func TestDescribeTurn(t *testing.T) {
	is := is.New(t)
	desc, err := DescribeTurn(twoPointState(), game.Blue, "")
	is.NoErr(err)
	is.True(strings.HasSuffix(desc, "this is the first move of the game."))
	desc, err = DescribeTurn(twoPointState(), game.Blue, "h2 a1 r0")
	is.NoErr(err)
	is.True(strings.HasSuffix(desc, "The opponent's last move was h2 a1 r0."))
}

func TestGetMoveReturnsRawText(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"(h2 d1 r0) because it blocks nothing"}}
	rec := &memRecorder{}
	svc := NewService(gen, WithRecorder(rec))

	text, err := svc.GetMove(context.Background(), twoPointState(), game.Orange)
	is.NoErr(err)
	is.Equal(text, "(h2 d1 r0) because it blocks nothing")
	is.Equal(len(gen.calls), 1)
	is.Equal(gen.calls[0].system, StandardRules())
	is.True(strings.HasPrefix(gen.calls[0].prompt, "The current player is orange."))

	is.Equal(len(rec.exchanges), 1)
	is.Equal(rec.exchanges[0].Model, "fake")
	is.NoErr(rec.exchanges[0].Err)
}

func TestGetMoveInvalidPlayerSendsNothing(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"(h1 a1 r0)"}}
	svc := NewService(gen)
	_, err := svc.GetMove(context.Background(), twoPointState(), "purple")
	is.True(errors.Is(err, game.ErrInvalidPlayer))
	is.Equal(len(gen.calls), 0)
}

func TestGetMoveTransportError(t *testing.T) {
	is := is.New(t)
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	gen := &fakeGenerator{errs: []error{netErr}}
	rec := &memRecorder{}
	svc := NewService(gen, WithRecorder(rec))

	text, err := svc.GetMove(context.Background(), twoPointState(), game.Blue)
	is.Equal(text, "")
	is.True(errors.Is(err, ErrTransport))
	is.True(!errors.Is(err, ErrTimeout))
	var opErr *net.OpError
	is.True(errors.As(err, &opErr))
	is.True(Retryable(err))
	is.True(errors.Is(rec.exchanges[0].Err, ErrTransport))
}

func TestGetMoveTimeout(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{block: true}
	svc := NewService(gen, WithTimeout(10*time.Millisecond))
	_, err := svc.GetMove(context.Background(), twoPointState(), game.Blue)
	is.True(errors.Is(err, ErrTimeout))
	is.True(errors.Is(err, ErrTransport))
	is.True(Retryable(err))
}

func TestGetMoveEmptyResponse(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"  \n"}}
	svc := NewService(gen)
	_, err := svc.GetMove(context.Background(), twoPointState(), game.Blue)
	is.True(errors.Is(err, ErrEmptyResponse))
	is.True(!errors.Is(err, ErrTransport))
	is.True(!Retryable(err))
}

func TestClassifyAPIErrors(t *testing.T) {
	is := is.New(t)
	rl := classify(fmt.Errorf("generate: %w", genai.APIError{Code: 429, Message: "quota"}))
	is.True(errors.Is(rl, ErrRateLimited))
	is.True(Retryable(rl))

	auth := classify(genai.APIError{Code: 403, Message: "bad key"})
	is.True(errors.Is(auth, ErrUnauthorized))
	is.True(errors.Is(auth, ErrTransport))
	is.True(!Retryable(auth))

	srv := classify(genai.APIError{Code: 503})
	is.True(errors.Is(srv, ErrTransport))
	is.True(!errors.Is(srv, ErrRateLimited))

	// Already classified errors are left alone.
	is.Equal(classify(rl), rl)
	is.True(Retryable(classify(context.DeadlineExceeded)))
	is.True(!Retryable(context.Canceled))
}

func TestClassifyAgentErrors(t *testing.T) {
	is := is.New(t)
	oaiAuth := classify(fmt.Errorf("failed to generate text: %w", &openaiapi.Error{StatusCode: 401}))
	is.True(errors.Is(oaiAuth, ErrUnauthorized))
	is.True(!Retryable(oaiAuth))

	oaiRate := classify(fmt.Errorf("failed to generate text: %w", &openaiapi.Error{StatusCode: 429}))
	is.True(errors.Is(oaiRate, ErrRateLimited))
	is.True(Retryable(oaiRate))

	dsAuth := classify(withStatus(errors.New("DeepSeek API error: status=401, body={}")))
	is.True(errors.Is(dsAuth, ErrUnauthorized))
	is.True(!Retryable(dsAuth))

	dsRate := classify(withStatus(errors.New("DeepSeek API error: status=429, body={}")))
	is.True(errors.Is(dsRate, ErrRateLimited))

	plain := errors.New("connection reset")
	is.Equal(withStatus(plain), plain)
	is.True(Retryable(classify(plain)))
}

func TestRetryingStopsOnAgentAuthError(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{
		errs: []error{
			withStatus(errors.New("DeepSeek API error: status=403, body={}")),
			errors.New("unused"),
		},
		replies: []string{"(h1 a1 r0)"},
	}
	r := NewRetrying(NewService(gen), 3, 0)
	_, err := r.GetMove(context.Background(), game.NewState(board.Standard()), game.Blue)
	is.True(errors.Is(err, ErrUnauthorized))
	is.Equal(len(gen.calls), 1)
}

func TestSuggestMoveParses(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"Place on the corner: (h1 a1 r0)"}}
	svc := NewService(gen)
	st := game.NewState(board.Standard())
	sug, err := svc.SuggestMove(context.Background(), st, game.Blue, "")
	is.NoErr(err)
	is.Equal(sug.Move.String(), "<move h1 a1 r0>")
	is.Equal(sug.Raw, "Place on the corner: (h1 a1 r0)")
}

func TestSuggestMoveReprompts(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"I like d4.", "(h2 g7 r0)"}}
	svc := NewService(gen, WithReprompts(2))
	st := game.NewState(board.Standard())
	sug, err := svc.SuggestMove(context.Background(), st, game.Orange, "h1 a1 r0")
	is.NoErr(err)
	is.Equal(sug.Move.Dest, board.Position("g7"))
	is.Equal(len(gen.calls), 2)
	is.True(strings.HasPrefix(gen.calls[1].prompt, "Your last answer did not contain a move"))
	is.Equal(strings.Count(gen.calls[1].prompt, "Your last answer"), 1)
}

func TestSuggestMoveRepromptsOnOtherHand(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"(h1 a1 r0)", "(h2 a4 r0)"}}
	svc := NewService(gen, WithReprompts(1))
	sug, err := svc.SuggestMove(context.Background(), game.NewState(board.Standard()), game.Orange, "")
	is.NoErr(err)
	is.Equal(sug.Move.Dest, board.Position("a4"))
	is.Equal(len(gen.calls), 2)
	is.True(strings.Contains(gen.calls[1].prompt, "cannot place from blue's hand"))
}

func TestSuggestMoveExplainsRejection(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"(h2 a4 r0)"}}
	svc := NewService(gen)
	_, err := svc.SuggestMove(context.Background(), game.NewState(board.Standard()), game.Orange, "h1 a1 r0",
		Rejected("h2 a1 r0", game.ErrOccupied))
	is.NoErr(err)
	is.Equal(len(gen.calls), 1)
	is.True(strings.HasPrefix(gen.calls[0].prompt,
		"The last move you generated, (h2 a1 r0), was marked as invalid: position is occupied."))
	is.True(strings.Contains(gen.calls[0].prompt, "The current player is orange."))
}

func TestSuggestMoveGivesUp(t *testing.T) {
	is := is.New(t)
	gen := &fakeGenerator{replies: []string{"no idea"}}
	svc := NewService(gen, WithReprompts(1))
	_, err := svc.SuggestMove(context.Background(), game.NewState(board.Standard()), game.Blue, "")
	is.True(err != nil)
	is.Equal(len(gen.calls), 2)
	is.True(!Retryable(err))
}

func TestWithBoard(t *testing.T) {
	is := is.New(t)
	tbl := board.NewTable()
	tbl.Add("p", "q")
	tbl.Add("q", "p")
	svc := NewService(&fakeGenerator{replies: []string{"x"}}, WithBoard(tbl, nil))
	is.True(strings.Contains(svc.Rules(), "p is adjacent to q. q is adjacent to p. "))
	is.Equal(svc.Table().Len(), 2)
}

func TestNewGeneratorNeedsKey(t *testing.T) {
	is := is.New(t)
	for _, env := range []string{"GEMINI_API_KEY", "MORRIS_GEMINI_API_KEY", "OPENAI_API_KEY", "MORRIS_OPENAI_API_KEY"} {
		t.Setenv(env, "")
	}
	cfg := config.DefaultConfig()

	_, err := NewGenerator(context.Background(), cfg)
	is.True(errors.Is(err, ErrMissingAPIKey))

	cfg.Set(config.ConfigGenaiProvider, "openai")
	_, err = NewGenerator(context.Background(), cfg)
	is.True(errors.Is(err, ErrMissingAPIKey))

	cfg.Set(config.ConfigGenaiProvider, "clippy")
	_, err = NewGenerator(context.Background(), cfg)
	is.True(err != nil)
	is.True(!errors.Is(err, ErrMissingAPIKey))
}
