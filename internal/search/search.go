// Package search finds, for each candidate output format, the encoder
// parameter whose perceptual dissimilarity lands on a target score, then
// picks the smallest acceptable output across formats.
//
// The per-format search is an integer bisection over the parameter band.
// Encoders are not guaranteed monotonic in practice, so the comparison at
// each step is a heuristic direction hint, not a convergence proof; the
// total number of trials is bounded instead.
package search

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AnyUserName/piq-cli/internal/codec"
	"github.com/AnyUserName/piq-cli/internal/metric"
	"github.com/AnyUserName/piq-cli/internal/picture"
	"github.com/AnyUserName/piq-cli/internal/target"
)

// DefaultBudget bounds the number of trials per format-level search. With a
// 0-100 native range the bisection converges in at most 7 steps anyway; the
// budget is a hard stop for wider ranges like palette sizes.
const DefaultBudget = 8

// Config assembles one optimization run.
type Config struct {
	// Codecs are the candidate output formats, already resolved for alpha
	// support and availability.
	Codecs []codec.Codec

	// Bands holds the per-format search band, keyed by codec name.
	Bands map[string]target.Band

	// Evaluator scores trial output against the source. Must be safe for
	// concurrent use.
	Evaluator metric.Evaluator

	// Budget caps trials per format search. 0 means DefaultBudget.
	Budget int

	// Workers bounds trial parallelism. 0 means hardware parallelism.
	Workers int

	// Log receives per-trial progress at debug level.
	Log zerolog.Logger
}

// Searcher runs bounded quality searches against one immutable source image.
type Searcher struct {
	cfg   Config
	sched *Scheduler
}

// New validates the config and prepares the trial scheduler.
func New(source *picture.Picture, cfg Config) (*Searcher, error) {
	if len(cfg.Codecs) == 0 {
		return nil, errors.New("search: no candidate codecs")
	}
	if cfg.Evaluator == nil {
		return nil, errors.New("search: no evaluator")
	}
	for _, c := range cfg.Codecs {
		if _, ok := cfg.Bands[c.Name()]; !ok {
			return nil, errors.New("search: missing band for " + c.Name())
		}
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	return &Searcher{
		cfg:   cfg,
		sched: NewScheduler(source, cfg.Evaluator, cfg.Workers),
	}, nil
}

// Run searches all candidate formats concurrently and returns the global
// winner: the smallest output among tolerance-satisfying results, or the
// result whose score lands closest to its target if none satisfy. When the
// context is cancelled mid-run, the best result obtained so far is returned.
// ErrNoViableEncoding is returned only when every format search failed.
func (s *Searcher) Run(ctx context.Context) (*Result, error) {
	results := make([]*Result, len(s.cfg.Codecs))
	failures := make([]error, len(s.cfg.Codecs))

	// Independent searches, no shared mutable state: each owns its bounds
	// and best-trial tracker. The scheduler bounds actual CPU use.
	var wg sync.WaitGroup
	for i, c := range s.cfg.Codecs {
		wg.Add(1)
		go func(i int, c codec.Codec) {
			defer wg.Done()
			results[i], failures[i] = s.searchFormat(ctx, c, s.cfg.Bands[c.Name()])
		}(i, c)
	}
	wg.Wait()

	var winner *Result
	for _, r := range results {
		winner = betterResult(winner, r)
	}
	if winner == nil {
		for _, err := range failures {
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return nil, errors.Join(ErrNoViableEncoding, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoViableEncoding
	}
	return winner, nil
}

// searchFormat runs the bounded bisection for one codec.
func (s *Searcher) searchFormat(ctx context.Context, c codec.Codec, band target.Band) (*Result, error) {
	log := s.cfg.Log.With().Str("format", c.Name()).Logger()

	// Degenerate band: take the single trial directly.
	if band.Min == band.Max {
		out := s.sched.Run(ctx, []Request{{Codec: c, Param: band.Min}})[0]
		if out.Err != nil {
			return nil, out.Err
		}
		t := out.Trial
		log.Debug().Int("param", t.Param).Float64("score", t.Score).Int("bytes", len(t.Data)).
			Msg("single-point band")
		return &Result{Format: t.Format, Param: t.Param, Data: t.Data,
			Score: t.Score, Target: band.Target, Trials: 1}, nil
	}

	lo, hi := band.Min, band.Max
	var best *Trial
	var lastErr error
	trials := 0

	for lo <= hi && trials < s.cfg.Budget {
		if ctx.Err() != nil {
			break
		}
		mid := lo + (hi-lo)/2

		out := s.sched.Run(ctx, []Request{{Codec: c, Param: mid}})[0]
		trials++

		if out.Err != nil {
			var decodeErr *codec.DecodeError
			if errors.As(out.Err, &decodeErr) || errors.Is(out.Err, metric.ErrDimensionMismatch) {
				// Invariant violation: abort this format, siblings continue.
				return nil, out.Err
			}
			if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
				break
			}
			// Encode rejection: drop the trial and steer toward higher
			// fidelity, where encoders are more likely to accept.
			log.Debug().Int("param", mid).Err(out.Err).Msg("trial dropped")
			lastErr = out.Err
			lo = mid + 1
			continue
		}

		t := out.Trial
		log.Debug().
			Int("lo", lo).Int("hi", hi).Int("param", mid).
			Float64("score", t.Score).Float64("target", band.Target).
			Int("bytes", len(t.Data)).
			Msg("trial")

		if t.Score > band.Target {
			// Too dissimilar: less compression. Heuristic direction only.
			lo = mid + 1
		} else {
			hi = mid - 1
		}
		best = betterTrial(best, t, band.Target)
	}

	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ctx.Err()
	}
	return &Result{Format: best.Format, Param: best.Param, Data: best.Data,
		Score: best.Score, Target: band.Target, Trials: trials}, nil
}
