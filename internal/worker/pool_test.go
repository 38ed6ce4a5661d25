package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoProcessFunc echoes the prompt back as a document.
func echoProcessFunc() ProcessFunc {
	return func(ctx context.Context, item WorkItem) ProcessResult {
		return ProcessResult{Index: item.Index, Document: agent.Document{"prompt": item.Request.Prompt}}
	}
}

// countingProcessFunc increments counter per processed item.
func countingProcessFunc(counter *int32) ProcessFunc {
	return func(ctx context.Context, item WorkItem) ProcessResult {
		atomic.AddInt32(counter, 1)
		return ProcessResult{Index: item.Index}
	}
}

func collectResults(pool *Pool) int {
	count := 0
	for range pool.Results() {
		count++
	}
	return count
}

func TestPoolBasic(t *testing.T) {
	var processed int32
	pool := NewPool(context.Background(), countingProcessFunc(&processed), WithWorkers(4), WithBufferSize(10))
	pool.Start()

	const numItems = 10
	for i := 0; i < numItems; i++ {
		pool.Submit(WorkItem{Index: i, Request: agent.Request{AgentID: "chess-analyst"}})
	}

	go pool.Close()

	if got := collectResults(pool); got != numItems {
		t.Errorf("results = %d; want %d", got, numItems)
	}
	if got := atomic.LoadInt32(&processed); got != numItems {
		t.Errorf("processed = %d; want %d", got, numItems)
	}
}

func TestPoolEarlyStop(t *testing.T) {
	var processed int32
	slow := func(ctx context.Context, item WorkItem) ProcessResult {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&processed, 1)
		return ProcessResult{Index: item.Index}
	}

	pool := NewPool(context.Background(), slow, WithWorkers(2), WithBufferSize(100))
	pool.Start()

	const numItems = 50
	for i := 0; i < numItems; i++ {
		pool.Submit(WorkItem{Index: i})
	}

	time.Sleep(30 * time.Millisecond)
	pool.Stop()

	go pool.Close()
	collectResults(pool)

	if got := atomic.LoadInt32(&processed); got >= numItems {
		t.Errorf("processed = %d; want fewer than %d after Stop", got, numItems)
	}
}

func TestPoolIsStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, echoProcessFunc())

	if pool.IsStopped() {
		t.Error("pool should not be stopped initially")
	}
	cancel()
	if !pool.IsStopped() {
		t.Error("pool should be stopped once its context is cancelled")
	}

	other := NewPool(context.Background(), echoProcessFunc())
	other.Stop()
	if !other.IsStopped() {
		t.Error("pool should be stopped after Stop()")
	}
}

func TestPoolTrySubmit(t *testing.T) {
	pool := NewPool(context.Background(), echoProcessFunc(), WithBufferSize(1))

	// Not started: the single buffer slot fills and the next submit fails.
	if !pool.TrySubmit(WorkItem{Index: 0}) {
		t.Fatal("first TrySubmit should succeed")
	}
	if pool.TrySubmit(WorkItem{Index: 1}) {
		t.Error("TrySubmit on a full buffer should fail")
	}

	pool.Stop()
	if pool.TrySubmit(WorkItem{Index: 2}) {
		t.Error("TrySubmit on a stopped pool should fail")
	}

	pool.Start()
	pool.Close()
	if got := collectResults(pool); got != 0 {
		t.Errorf("results = %d; want 0 from a stopped pool", got)
	}
}

func TestPoolOptions(t *testing.T) {
	tests := []struct {
		name        string
		opts        []PoolOption
		wantWorkers int
	}{
		{"defaults", nil, 1},
		{"four workers", []PoolOption{WithWorkers(4)}, 4},
		{"zero ignored", []PoolOption{WithWorkers(0), WithBufferSize(0)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(context.Background(), echoProcessFunc(), tt.opts...)
			if got := pool.NumWorkers(); got != tt.wantWorkers {
				t.Errorf("NumWorkers() = %d; want %d", got, tt.wantWorkers)
			}
		})
	}
}

func TestCollect_KeepsOrder(t *testing.T) {
	// Earlier requests sleep longer so completion order is reversed.
	client := agent.ClientFunc(func(ctx context.Context, req agent.Request) (agent.Document, error) {
		n, _ := strconv.Atoi(req.Prompt)
		time.Sleep(time.Duration(8-n) * time.Millisecond)
		return agent.Document{"n": req.Prompt}, nil
	})

	reqs := make([]agent.Request, 8)
	for i := range reqs {
		reqs[i] = agent.Request{AgentID: "chess-analyst", Prompt: fmt.Sprint(i)}
	}

	results := Collect(context.Background(), client, reqs, 4)

	testutil.AssertEqual(t, len(results), len(reqs))
	for i, r := range results {
		testutil.AssertNoError(t, r.Error)
		testutil.AssertEqual(t, r.Index, i)
		testutil.AssertEqual(t, r.Document.String("n", ""), fmt.Sprint(i), "result %d", i)
	}
}

func TestCollect_Errors(t *testing.T) {
	boom := errors.New("agent down")
	fake := testutil.NewFakeAgent().
		Reply("ok", agent.Document{"v": "fine"}).
		Fail("bad", boom)

	results := Collect(context.Background(), fake, []agent.Request{
		{AgentID: "ok"}, {AgentID: "bad"}, {AgentID: "ok"},
	}, 2)

	testutil.AssertNoError(t, results[0].Error)
	testutil.AssertErrorIs(t, results[1].Error, boom)
	testutil.AssertEqual(t, results[2].Document.String("v", ""), "fine")
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := testutil.NewFakeAgent().Reply("ok", agent.Document{})
	results := Collect(ctx, fake, []agent.Request{{AgentID: "ok"}, {AgentID: "ok"}}, 2)

	for i, r := range results {
		testutil.AssertErrorIs(t, r.Error, context.Canceled, "result %d", i)
	}
	testutil.AssertEqual(t, len(fake.Calls()), 0)
}

func TestCollect_Empty(t *testing.T) {
	if got := Collect(context.Background(), testutil.NewFakeAgent(), nil, 2); len(got) != 0 {
		t.Errorf("Collect(nil) = %v; want empty", got)
	}
}
