// Package executor provides the bounded-concurrency dispatcher for compiled
// engine pipelines. One unit of work is one source image's pipeline,
// executed as one external invocation.
package executor

import (
	"context"
	"sync"

	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
)

// Runner executes one external invocation and returns its combined output.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// Invocation is one compiled pipeline ready for execution.
type Invocation struct {
	// Source is the source image the pipeline decodes.
	Source string
	// Group names the output group the invocation belongs to.
	Group string
	// Argv is the full engine argument vector, binary excluded.
	Argv []string
}

// Result is the outcome of one invocation.
type Result struct {
	Invocation *Invocation
	// Output is the combined stdout and stderr of the external process.
	Output []byte
	Err    error
}

// Pool executes invocations on a bounded set of workers.
//
// Failure semantics are deliberate: a failing invocation does not cancel
// its siblings. Everything submitted runs to completion, results are
// drained in completion order, and the first error raised by the collector
// is returned once the wave has fully drained. The caller treats that
// error as fatal for the run.
type Pool struct {
	// Size is the maximum number of concurrent invocations. Values below 1
	// are treated as 1.
	Size   int
	Runner Runner

	// DryRun switches Run to sequential echoing: nothing executes and Echo
	// is called once per invocation in submission order.
	DryRun bool
	Echo   func(*Invocation)
}

// NewPool returns a Pool of the given size backed by the given runner.
func NewPool(size int, runner Runner) *Pool {
	return &Pool{Size: size, Runner: runner}
}

// Run dispatches every invocation and feeds each Result to collect on the
// calling goroutine, in completion order. It returns the first error
// returned by collect, after all invocations have finished.
func (p *Pool) Run(ctx context.Context, invs []*Invocation, collect func(*Result) error) error {
	logger := ctxlog.FromContext(ctx)
	if len(invs) == 0 {
		return nil
	}

	if p.DryRun {
		for _, inv := range invs {
			p.Echo(inv)
		}
		return nil
	}

	size := p.Size
	if size < 1 {
		size = 1
	}
	if size > len(invs) {
		size = len(invs)
	}
	logger.Debug("Dispatching invocations.", "count", len(invs), "workers", size)

	tasks := make(chan *Invocation)
	results := make(chan *Result)

	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go p.worker(ctx, i, tasks, results, &wg)
	}

	go func() {
		for _, inv := range invs {
			tasks <- inv
		}
		close(tasks)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if err := collect(res); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// worker is the processing loop for a single concurrent worker.
func (p *Pool) worker(ctx context.Context, id int, tasks <-chan *Invocation, results chan<- *Result, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", id)

	for inv := range tasks {
		out, err := p.Runner.Run(ctx, inv.Argv)
		results <- &Result{Invocation: inv, Output: out, Err: err}
	}
	logger.Debug("Worker finished.", "workerID", id)
}
