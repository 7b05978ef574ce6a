package search

import (
	"errors"
	"math"
)

// ErrNoViableEncoding is returned when every candidate format's search
// failed to produce a single usable trial.
var ErrNoViableEncoding = errors.New("search: no candidate format produced a viable encoding")

// Trial is one encode, decode and evaluate cycle at a specific (format, param).
// Immutable once scored.
type Trial struct {
	Format string
	Param  int
	Data   []byte
	Score  float64
}

// Result is the terminal value of one format-level search, or of the whole
// run once the cross-format winner is picked.
type Result struct {
	Format string
	Param  int
	Data   []byte
	Score  float64
	Target float64
	Trials int
}

// Satisfied reports whether the achieved score is within tolerance.
func (r *Result) Satisfied() bool { return r.Score <= r.Target }

// betterTrial picks the preferable of two trials against a target score:
// among tolerance-satisfying trials the smaller output wins; a satisfying
// trial beats a non-satisfying one; otherwise the score closest to target
// wins. a may be nil.
func betterTrial(a, b *Trial, targetScore float64) *Trial {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	aOK := a.Score <= targetScore
	bOK := b.Score <= targetScore
	switch {
	case aOK && bOK:
		if len(b.Data) < len(a.Data) {
			return b
		}
		return a
	case aOK:
		return a
	case bOK:
		return b
	default:
		if math.Abs(b.Score-targetScore) < math.Abs(a.Score-targetScore) {
			return b
		}
		return a
	}
}

// betterResult applies the same rule across formats. Each result carries its
// own target so the comparison stays valid if bands ever diverge.
func betterResult(a, b *Result) *Result {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	switch {
	case a.Satisfied() && b.Satisfied():
		if len(b.Data) < len(a.Data) {
			return b
		}
		return a
	case a.Satisfied():
		return a
	case b.Satisfied():
		return b
	default:
		if math.Abs(b.Score-b.Target) < math.Abs(a.Score-a.Target) {
			return b
		}
		return a
	}
}
