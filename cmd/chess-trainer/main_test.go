package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/output"
	"github.com/lgbarn/chess-trainer-go/internal/testutil"
)

// isolate clears the environment overrides so a developer's shell cannot
// change which agent the tests talk to.
func isolate(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		config.EnvAddr, config.EnvAgentURL, config.EnvAgentKey,
		config.EnvGeminiKey, config.EnvLogLevel,
	} {
		t.Setenv(env, "")
	}
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// missingConfig returns a config path that does not exist, so defaults apply.
func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

// fakeEndpoint serves agent replies keyed by agent ID and records requests.
type fakeEndpoint struct {
	mu       sync.Mutex
	replies  map[string]string
	status   int
	requests []agent.Request
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	status := f.status
	body := f.replies[req.AgentID]
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, "agent down", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body) //nolint:errcheck
}

func (f *fakeEndpoint) calls() []agent.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agent.Request(nil), f.requests...)
}

// withAgent starts a fake agent endpoint and writes a config file that
// points at it. It returns the config path.
func withAgent(t *testing.T, ep *fakeEndpoint) string {
	t.Helper()
	isolate(t)
	ts := httptest.NewServer(ep)
	t.Cleanup(func() {
		ts.Close()
		http.DefaultClient.CloseIdleConnections()
	})

	cfg := config.NewBuilder().
		WithHTTPAgent(ts.URL, "").
		WithMaxRetries(0).
		WithLogLevel("error").
		Build()
	path := filepath.Join(t.TempDir(), "chess-trainer.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version", "--config", missingConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "chess-trainer version "+programVersion+"\n", out)
}

func TestSetup_InvalidConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("review:\n  workers: 0\n"), 0o600))

	_, err := run(t, "", "board", "--config", path)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestSetup_Verbose(t *testing.T) {
	isolate(t)
	a := &app{configPath: missingConfig(t), verbose: true}
	require.NoError(t, a.setup(nil, nil))
	assert.Equal(t, "debug", a.cfg.Logging.Level)
	assert.NotNil(t, a.logger)
}

func TestBoard(t *testing.T) {
	isolate(t)
	cfgPath := missingConfig(t)

	tests := []struct {
		name  string
		args  []string
		first string
		last  string
	}{
		{"starting position", nil, "8 r n b q k b n r", "  a b c d e f g h"},
		{"given fen", []string{testutil.KingsOnlyFEN}, "8 . . . . k . . .", "  a b c d e f g h"},
		{"flipped", []string{"--flip"}, "1 R N B K Q B N R", "  h g f e d c b a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"board", "--config", cfgPath, "--format", "plain"}, tt.args...)
			out, err := run(t, "", args...)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			require.Len(t, lines, 9)
			assert.Equal(t, tt.first, lines[0])
			assert.Equal(t, tt.last, lines[8])
		})
	}
}

func TestBoard_JSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "board", testutil.AfterE4FEN, "--config", missingConfig(t), "-f", "json")
	require.NoError(t, err)

	var board output.BoardJSON
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	assert.Equal(t, testutil.AfterE4FEN, board.FEN)
	assert.Equal(t, "black", board.SideToMove)
	assert.Equal(t, "e4", board.Ranks[4][4].Square)
	assert.Equal(t, "P", board.Ranks[4][4].Symbol)
}

func TestBoard_TerminalASCII(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "board", testutil.KingsOnlyFEN, "--config", missingConfig(t), "--ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "K")
	assert.Contains(t, out, "k")
	assert.NotContains(t, out, "♔")
}

func TestBoard_UnknownFormat(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "board", "--config", missingConfig(t), "--format", "xml")
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

const sampleMarkdown = "# Plan\n- **Develop** pieces\n1. e4\n2. d4"

func TestRender_Stdin(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleMarkdown, "render", "--config", missingConfig(t), "--format", "plain")
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n- **Develop** pieces\n1. e4\n2. d4\n", out)
}

func TestRender_FileJSON(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "reply.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleMarkdown), 0o600))

	out, err := run(t, "", "render", path, "--config", missingConfig(t), "--format", "json")
	require.NoError(t, err)

	var blocks []output.BlockJSON
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 4)
	kinds := []string{blocks[0].Kind, blocks[1].Kind, blocks[2].Kind, blocks[3].Kind}
	assert.Equal(t, []string{"heading", "list_item", "list_item", "list_item"}, kinds)
	assert.True(t, blocks[1].Spans[0].Bold)
	assert.True(t, blocks[2].Ordered)
}

func TestRender_Rich(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleMarkdown, "render", "-", "--config", missingConfig(t), "--rich", "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "Develop")
}

func TestRender_MissingFile(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "render", filepath.Join(t.TempDir(), "nope.md"), "--config", missingConfig(t))
	assert.Error(t, err)
}

func TestServe_Shutdown(t *testing.T) {
	ep := &fakeEndpoint{}
	ts := httptest.NewServer(ep)
	defer ts.Close()

	a := &app{
		cfg:    config.NewBuilder().WithHTTPAgent(ts.URL, "").Build(),
		logger: zap.NewNop(),
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()
	assert.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	a := &app{
		cfg: config.NewBuilder().
			WithHTTPAgent("http://127.0.0.1:1/invoke", "").
			WithAddr(ln.Addr().String()).
			Build(),
		logger: zap.NewNop(),
	}
	err = a.serve(context.Background(), nil)
	assert.Error(t, err)
}
