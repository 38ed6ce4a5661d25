package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
)

// Positions used across tests.
const (
	InitialFEN   = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	AfterE4FEN   = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	ScholarsFEN  = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"
	KingsOnlyFEN = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
)

// SamplePGN is a short complete game with the seven-tag roster.
const SamplePGN = `[Event "Casual Game"]
[Site "Berlin GER"]
[Date "1852.??.??"]
[Round "?"]
[White "Adolf Anderssen"]
[Black "Jean Dufresne"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. b4 Bxb4 5. c3 Ba5 6. d4 exd4 1-0
`

// FakeAgent is a scripted agent.Client. Replies are looked up by agent ID;
// each call pops the next queued reply, and the last one repeats.
type FakeAgent struct {
	mu      sync.Mutex
	replies map[string][]agent.Document
	errs    map[string]error
	calls   []agent.Request
}

// NewFakeAgent returns an agent with no scripted replies.
func NewFakeAgent() *FakeAgent {
	return &FakeAgent{
		replies: make(map[string][]agent.Document),
		errs:    make(map[string]error),
	}
}

// Reply queues docs for agentID and returns f for chaining.
func (f *FakeAgent) Reply(agentID string, docs ...agent.Document) *FakeAgent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[agentID] = append(f.replies[agentID], docs...)
	return f
}

// Fail makes every call to agentID return err.
func (f *FakeAgent) Fail(agentID string, err error) *FakeAgent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[agentID] = err
	return f
}

// Invoke implements agent.Client.
func (f *FakeAgent) Invoke(ctx context.Context, req agent.Request) (agent.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[req.AgentID]; err != nil {
		return nil, err
	}
	queue := f.replies[req.AgentID]
	if len(queue) == 0 {
		return nil, fmt.Errorf("fake agent: no reply scripted for %q", req.AgentID)
	}
	doc := queue[0]
	if len(queue) > 1 {
		f.replies[req.AgentID] = queue[1:]
	}
	return doc, nil
}

// Calls returns a copy of the requests received so far.
func (f *FakeAgent) Calls() []agent.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]agent.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many requests agentID received.
func (f *FakeAgent) CallCount(agentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.AgentID == agentID {
			n++
		}
	}
	return n
}
