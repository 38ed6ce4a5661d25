// Package worker provides a worker pool for parallel agent calls.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
)

// WorkItem is one agent request queued for processing.
type WorkItem struct {
	Index   int // Position in the caller's batch
	Request agent.Request
}

// ProcessResult is the outcome of one WorkItem.
type ProcessResult struct {
	Index    int
	Document agent.Document
	Error    error
}

// ProcessFunc handles a single work item.
type ProcessFunc func(ctx context.Context, item WorkItem) ProcessResult

// InvokeFunc returns a ProcessFunc that sends each item to client.
func InvokeFunc(client agent.Client) ProcessFunc {
	return func(ctx context.Context, item WorkItem) ProcessResult {
		doc, err := client.Invoke(ctx, item.Request)
		return ProcessResult{Index: item.Index, Document: doc, Error: err}
	}
}

// Pool runs a ProcessFunc on a fixed number of goroutines.
type Pool struct {
	ctx         context.Context
	numWorkers  int
	bufferSize  int
	workChan    chan WorkItem
	resultChan  chan ProcessResult
	processFunc ProcessFunc
	wg          sync.WaitGroup
	stopFlag    atomic.Bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a pool bound to ctx. Defaults: 1 worker, buffer of 10.
// Items submitted after ctx is done are drained without processing.
func NewPool(ctx context.Context, processFunc ProcessFunc, opts ...PoolOption) *Pool {
	p := &Pool{
		ctx:         ctx,
		numWorkers:  1,
		bufferSize:  10,
		processFunc: processFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.workChan = make(chan WorkItem, p.bufferSize)
	p.resultChan = make(chan ProcessResult, p.bufferSize)
	return p
}

// Start starts the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for item := range p.workChan {
		if p.IsStopped() {
			continue // drain
		}
		p.resultChan <- p.processFunc(p.ctx, item)
	}
}

// Submit queues an item, blocking while the buffer is full.
func (p *Pool) Submit(item WorkItem) {
	p.workChan <- item
}

// TrySubmit queues an item without blocking. It returns false when the
// buffer is full or the pool is stopped.
func (p *Pool) TrySubmit(item WorkItem) bool {
	if p.IsStopped() {
		return false
	}
	select {
	case p.workChan <- item:
		return true
	default:
		return false
	}
}

// Stop makes workers skip any items still queued.
func (p *Pool) Stop() {
	p.stopFlag.Store(true)
}

// IsStopped reports whether Stop was called or the pool's context is done.
func (p *Pool) IsStopped() bool {
	return p.stopFlag.Load() || p.ctx.Err() != nil
}

// Close closes the work channel, waits for the workers and then closes the
// result channel.
func (p *Pool) Close() {
	close(p.workChan)
	p.wg.Wait()
	close(p.resultChan)
}

// Results returns the result channel.
func (p *Pool) Results() <-chan ProcessResult {
	return p.resultChan
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Collect sends every request through a pool of workers and returns the
// results in request order. Requests skipped because ctx ended carry
// ctx.Err().
func Collect(ctx context.Context, client agent.Client, reqs []agent.Request, workers int) []ProcessResult {
	results := make([]ProcessResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	pool := NewPool(ctx, InvokeFunc(client), WithWorkers(workers), WithBufferSize(len(reqs)))
	pool.Start()
	go func() {
		for i, req := range reqs {
			pool.Submit(WorkItem{Index: i, Request: req})
		}
		pool.Close()
	}()

	seen := make([]bool, len(reqs))
	for r := range pool.Results() {
		results[r.Index] = r
		seen[r.Index] = true
	}
	for i := range results {
		if !seen[i] {
			results[i] = ProcessResult{Index: i, Error: ctx.Err()}
		}
	}
	return results
}
