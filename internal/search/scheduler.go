package search

import (
	"context"
	"runtime"
	"sync"

	"github.com/AnyUserName/piq-cli/internal/codec"
	"github.com/AnyUserName/piq-cli/internal/metric"
	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Request identifies one trial encode: a codec and a native parameter.
type Request struct {
	Codec codec.Codec
	Param int
}

// Outcome pairs a request with its scored trial or its error. A request
// failure never aborts sibling requests in the same batch.
type Outcome struct {
	Request Request
	Trial   *Trial
	Err     error
}

// Scheduler fans trial work out over a bounded worker pool. The source
// picture and the evaluator are shared read-only by all workers; neither is
// written after construction, so no locking is involved.
type Scheduler struct {
	source *picture.Picture
	eval   metric.Evaluator
	sem    chan struct{}
}

// NewScheduler creates a scheduler with the given parallelism.
// workers <= 0 uses the available hardware parallelism.
func NewScheduler(source *picture.Picture, eval metric.Evaluator, workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scheduler{
		source: source,
		eval:   eval,
		sem:    make(chan struct{}, workers),
	}
}

// Run executes every request in the batch and returns outcomes in request
// order once all have finished. The worker bound is global across concurrent
// Run calls, so independent format searches share one pool.
func (s *Scheduler) Run(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			s.sem <- struct{}{}        // acquire
			defer func() { <-s.sem }() // release

			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Request: req, Err: err}
				return
			}
			outcomes[i] = s.runOne(req)
		}(i, req)
	}
	wg.Wait()
	return outcomes
}

// runOne encodes, decodes and evaluates a single trial. Trials are
// short-lived CPU-bound units; there is no cancellation mid-trial.
func (s *Scheduler) runOne(req Request) Outcome {
	out := Outcome{Request: req}

	data, err := req.Codec.Encode(s.source, req.Param)
	if err != nil {
		out.Err = err
		return out
	}

	decoded, err := req.Codec.Decode(data)
	if err != nil {
		out.Err = err
		return out
	}

	score, err := s.eval.Compare(decoded)
	if err != nil {
		out.Err = err
		return out
	}

	out.Trial = &Trial{
		Format: req.Codec.Name(),
		Param:  req.Param,
		Data:   data,
		Score:  score,
	}
	return out
}
