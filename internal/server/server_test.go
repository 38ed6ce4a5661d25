package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/session"
	"github.com/lgbarn/chess-trainer-go/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var ids = config.DefaultConfig().Agent.Agents

type fixture struct {
	ts    *httptest.Server
	store *session.Store
	srv   *Server
}

func newFixture(t *testing.T, client agent.Client, opts ...Option) *fixture {
	t.Helper()
	svc := coach.NewService(client, ids, coach.WithIDFunc(func() string { return "puzzle-1" }))
	store := session.NewStore(time.Hour)
	srv := New(svc, store, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, store: store, srv: srv}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (f *fixture) newSession(t *testing.T) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, status)
	return body["id"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())
	f.newSession(t)

	status, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["sessions"])
}

func TestBoard(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())

	status, body := f.do(t, http.MethodPost, "/api/board", map[string]any{"fen": testutil.AfterE4FEN, "flip": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "black", body["side_to_move"])
	assert.Equal(t, true, body["flipped"])

	ranks := body["ranks"].([]any)
	require.Len(t, ranks, 8)
	corner := ranks[0].([]any)[0].(map[string]any)
	assert.Equal(t, "h1", corner["square"])
	assert.Equal(t, "R", corner["symbol"])
}

func TestBoard_BadBody(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())

	status, body := f.do(t, http.MethodPost, "/api/board", map[string]any{"fen": "8/8", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", errorCode(body))
}

func TestMarkdown(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())

	status, body := f.do(t, http.MethodPost, "/api/markdown", map[string]any{"text": "# Hi\n\n"})
	require.Equal(t, http.StatusOK, status)
	blocks := body["blocks"].([]any)
	require.Len(t, blocks, 2)
	assert.Equal(t, "heading", blocks[0].(map[string]any)["kind"])
	assert.Equal(t, "blank", blocks[1].(map[string]any)["kind"])
}

func TestOpenings(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())

	status, body := f.do(t, http.MethodGet, "/api/openings", nil)
	require.Equal(t, http.StatusOK, status)
	openings := body["openings"].([]any)
	assert.NotEmpty(t, openings)
	first := openings[0].(map[string]any)
	assert.NotEmpty(t, first["code"])
	assert.NotEmpty(t, first["line"])
}

func TestSessions(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())
	id := f.newSession(t)

	status, body := f.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "free_play", body["section"])
	assert.Equal(t, []any{}, body["hints"])
	assert.NotNil(t, body["board"])

	status, body = f.do(t, http.MethodPost, "/api/sessions/"+id+"/section", map[string]any{"section": "review"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "review", body["section"])

	status, body = f.do(t, http.MethodPost, "/api/sessions/"+id+"/section", map[string]any{"section": "endgames"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", errorCode(body))

	status, _ = f.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = f.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "session_not_found", errorCode(body))
}

func TestAnalyze(t *testing.T) {
	fake := testutil.NewFakeAgent().Reply(ids.Analyst, agent.Document{
		"summary":   "White threatens **Qxf7#**",
		"best_move": "Nh6",
	})
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/analyze", map[string]any{
		"session_id": id,
		"fen":        testutil.ScholarsFEN,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Nh6", body["best_move"])
	assert.NotNil(t, body["board"])
	assert.Len(t, body["blocks"], 1)

	st, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, testutil.ScholarsFEN, st.FEN)

	// Without a FEN the session position is analyzed.
	status, _ = f.do(t, http.MethodPost, "/api/analyze", map[string]any{"session_id": id})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, fake.Calls()[1].Prompt, testutil.ScholarsFEN)
}

func TestAnalyze_AgentFailure(t *testing.T) {
	fake := testutil.NewFakeAgent().Fail(ids.Analyst, &errors.AgentError{
		Err:        errors.ErrAgentStatus,
		AgentID:    ids.Analyst,
		StatusCode: 503,
		Attempts:   3,
	})
	f := newFixture(t, fake)

	status, body := f.do(t, http.MethodPost, "/api/analyze", map[string]any{"fen": testutil.InitialFEN})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "agent_error", errorCode(body))

	status, _ = f.do(t, http.MethodPost, "/api/analyze", map[string]any{"fen": " "})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOpeningTurn(t *testing.T) {
	fake := testutil.NewFakeAgent().Reply(ids.Opening,
		agent.Document{"reply": "Good, the main line.", "move": "e5", "fen": testutil.AfterE4FEN},
		agent.Document{"reply": "Not the book move.", "hint": "Develop a knight"},
	)
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/openings/turn", map[string]any{
		"session_id": id,
		"opening":    "c50",
		"move":       "e4",
	})
	require.Equal(t, http.StatusOK, status)
	turn := body["turn"].(map[string]any)
	assert.Equal(t, true, turn["correct"])
	assert.Equal(t, "e5", turn["move"])
	sess := body["session"].(map[string]any)
	assert.Equal(t, "openings", sess["section"])
	assert.Equal(t, "Italian Game", sess["opening"])
	assert.Equal(t, []any{"e4", "e5"}, sess["history"])

	// A wrong move leaves the drill where it was.
	status, body = f.do(t, http.MethodPost, "/api/openings/turn", map[string]any{
		"session_id": id,
		"move":       "d4",
	})
	require.Equal(t, http.StatusOK, status)
	turn = body["turn"].(map[string]any)
	assert.Equal(t, false, turn["correct"])
	assert.Equal(t, "Nf3", turn["expected"])
	assert.Equal(t, []any{"e4", "e5"}, body["session"].(map[string]any)["history"])
}

func TestOpeningTurn_Errors(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())
	id := f.newSession(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"no session", map[string]any{"opening": "C50", "move": "e4"}, http.StatusBadRequest, "invalid_request"},
		{"unknown session", map[string]any{"session_id": "nope", "opening": "C50", "move": "e4"}, http.StatusNotFound, "session_not_found"},
		{"no opening", map[string]any{"session_id": id, "move": "e4"}, http.StatusBadRequest, "invalid_request"},
		{"unknown opening", map[string]any{"session_id": id, "opening": "Bongcloud", "move": "e4"}, http.StatusNotFound, "unknown_opening"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, http.MethodPost, "/api/openings/turn", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestPuzzleFlow(t *testing.T) {
	fake := testutil.NewFakeAgent().Reply(ids.Puzzle, agent.Document{
		"fen":      "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
		"theme":    "back rank",
		"solution": []any{"1. Rd8#"},
		"hints":    []any{"Look at the back rank", "Use the rook"},
	})
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/puzzles", map[string]any{"session_id": id, "rating": 1500})
	require.Equal(t, http.StatusOK, status)
	puzzle := body["puzzle"].(map[string]any)
	assert.Equal(t, "puzzle-1", puzzle["id"])
	assert.Equal(t, float64(1500), puzzle["rating"])
	assert.Equal(t, []any{}, puzzle["hints"])
	assert.NotContains(t, body, "solution")

	status, body = f.do(t, http.MethodPost, "/api/puzzles/hint", map[string]any{"session_id": id})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Look at the back rank"}, body["puzzle"].(map[string]any)["hints"])

	status, body = f.do(t, http.MethodPost, "/api/puzzles/solve", map[string]any{"session_id": id, "move": "Rd1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["correct"])
	assert.Equal(t, false, body["solved"])
	assert.NotContains(t, body, "solution")

	status, body = f.do(t, http.MethodPost, "/api/puzzles/solve", map[string]any{"session_id": id, "move": "Rd8"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["correct"])
	assert.Equal(t, true, body["solved"])
	assert.Equal(t, float64(2), body["attempts"])
	assert.Equal(t, []any{"1. Rd8#"}, body["solution"])
}

func TestPuzzle_Errors(t *testing.T) {
	f := newFixture(t, testutil.NewFakeAgent())
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/puzzles/hint", map[string]any{"session_id": id})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "no_puzzle", errorCode(body))

	status, body = f.do(t, http.MethodPost, "/api/puzzles/solve", map[string]any{"session_id": id, "move": "e4"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "no_puzzle", errorCode(body))

	status, _ = f.do(t, http.MethodPost, "/api/puzzles/solve", map[string]any{"session_id": id})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/api/puzzles", map[string]any{"session_id": id, "rating": 99})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/api/puzzles", map[string]any{"theme": "fork"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReview(t *testing.T) {
	fake := testutil.NewFakeAgent().
		Reply(ids.Review, agent.Document{
			"summary": "A sharp **Evans Gambit**.",
			"key_moments": []any{
				map[string]any{"move_number": 4, "move": "b4", "classification": "brilliant", "fen": testutil.ScholarsFEN},
			},
		}).
		Reply(ids.Analyst, agent.Document{"summary": "Open lines."})
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/review", map[string]any{
		"session_id": id,
		"pgn":        testutil.SamplePGN,
		"deep":       true,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Adolf Anderssen", body["white"])
	assert.Equal(t, "C50", body["eco"])
	moments := body["key_moments"].([]any)
	require.Len(t, moments, 1)
	m := moments[0].(map[string]any)
	assert.NotNil(t, m["board"])
	assert.Equal(t, "Open lines.", m["analysis"].(map[string]any)["summary"])

	st, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, session.Review, st.Section)

	status, _ = f.do(t, http.MethodPost, "/api/review", map[string]any{"pgn": "[Event \"x\"]"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChatHTTP(t *testing.T) {
	fake := testutil.NewFakeAgent().Reply(ids.Chat,
		agent.Document{"reply": "A pin restricts a piece."},
		agent.Document{"reply": "A skewer is a reversed pin."},
	)
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/chat", map[string]any{"session_id": id, "text": "What is a pin?"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "A pin restricts a piece.", body["reply"])

	status, _ = f.do(t, http.MethodPost, "/api/chat", map[string]any{"session_id": id, "text": "And a skewer?"})
	require.Equal(t, http.StatusOK, status)

	st, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Len(t, st.Transcript, 4)
	assert.False(t, st.Busy)
	assert.Contains(t, fake.Calls()[1].Prompt, "user: What is a pin?")
}

func TestChatHTTP_FailureClearsBusy(t *testing.T) {
	fake := testutil.NewFakeAgent().Fail(ids.Chat, &errors.AgentError{Err: errors.ErrAgentUnavailable})
	f := newFixture(t, fake)
	id := f.newSession(t)

	status, body := f.do(t, http.MethodPost, "/api/chat", map[string]any{"session_id": id, "text": "hi"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "agent_error", errorCode(body))

	st, err := f.store.Get(id)
	require.NoError(t, err)
	assert.False(t, st.Busy)
	assert.Len(t, st.Transcript, 1)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Invalid("x", "bad"), http.StatusBadRequest},
		{errors.Wrap(errors.ErrSessionNotFound, "get"), http.StatusNotFound},
		{errors.ErrUnknownOpening, http.StatusNotFound},
		{errors.ErrChatInProgress, http.StatusConflict},
		{errors.ErrNoPuzzle, http.StatusConflict},
		{&errors.AgentError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&errors.AgentError{Err: errors.ErrAgentStatus}, http.StatusBadGateway},
		{errors.ErrMalformedResponse, http.StatusBadGateway},
		{errors.Wrap(errors.ErrAgentUnavailable, "chat"), http.StatusBadGateway},
		{net.ErrClosed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, got, "%v", tt.err)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	svc := coach.NewService(testutil.NewFakeAgent(), ids)
	srv := New(svc, session.NewStore(time.Hour))
	cfg := config.NewBuilder().WithAddr("127.0.0.1:0").Build()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, cfg) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	http.DefaultClient.CloseIdleConnections()
}
