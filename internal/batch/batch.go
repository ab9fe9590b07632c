// Package batch runs independent recognition/poset jobs — recognizing one
// grammar against one input, or folding one sequence of equality/variable
// operations into a poset — across a bounded pool of goroutines. It is an
// adaptation of internal/parallel's WorkerPool: the same fixed-size
// worker/buffered-channel shape, generalized from "submit a closure" to
// "submit a named job and collect its result", since batch callers care
// about which grammar or input a failure came from.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Job is one unit of independent work: Name identifies it in the
// corresponding Result (e.g. the input string or grammar file recognized),
// Run performs it.
type Job struct {
	Name string
	Run  func(ctx context.Context) (interface{}, error)
}

// Result is what came back from running a Job: Value holds whatever Run
// returned (a *earley.Chart, a *sppf.Forest, a poset.P — batch is agnostic
// to the payload), Err holds any error Run returned.
type Result struct {
	Name  string
	Value interface{}
	Err   error
}

// Pool runs jobs with bounded concurrency, same shape as
// internal/parallel.WorkerPool: a fixed worker count and a buffered task
// channel for backpressure, but sized to hold *submitted jobs* rather than
// bare closures so results can be reported back per job.
type Pool struct {
	workers int
}

// NewPool creates a pool of workers. If workers is 0 or negative it
// defaults to the number of CPU cores.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Run executes every job in jobs across the pool's workers and returns one
// Result per job, in the same order jobs was given — order is restored
// after the fan-in regardless of completion order, since callers match
// results back to grammar files or test cases by index.
//
// If ctx is cancelled, jobs not yet started are skipped and get a Result
// whose Err wraps ctx.Err(); Run still waits for jobs already running to
// finish before it returns.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	tasks := make(chan int, len(jobs))
	for i := range jobs {
		tasks <- i
	}
	close(tasks)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				select {
				case <-ctx.Done():
					results[i] = Result{Name: jobs[i].Name, Err: errors.Wrap(ctx.Err(), "batch: cancelled")}
					continue
				default:
				}
				v, err := jobs[i].Run(ctx)
				results[i] = Result{Name: jobs[i].Name, Value: v, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
