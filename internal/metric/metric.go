// Package metric computes perceptual dissimilarity between a source picture
// and candidate re-encodings of it. A score of 0 means identical under the
// metric's model; higher means more visibly different. All evaluators are
// deterministic and safe for concurrent Compare calls.
package metric

import (
	"errors"
	"fmt"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// ErrDimensionMismatch is returned when a candidate does not match the
// source dimensions. Re-encoded output always has the source's dimensions,
// so hitting this is a caller bug.
var ErrDimensionMismatch = errors.New("metric: candidate dimensions differ from source")

// Evaluator scores candidates against a fixed source image.
type Evaluator interface {
	// Compare returns the non-negative dissimilarity of candidate vs the
	// source the evaluator was built from.
	Compare(candidate *picture.Picture) (float64, error)
}

// Names lists the selectable metrics.
func Names() []string { return []string{"dssim", "butteraugli"} }

// New builds an evaluator by name, precomputing whatever the metric needs
// from the source so repeated Compare calls stay cheap.
func New(name string, source *picture.Picture) (Evaluator, error) {
	switch name {
	case "", "dssim":
		return NewDSSIM(source)
	case "butteraugli":
		return NewButteraugli(source)
	default:
		return nil, fmt.Errorf("metric: unknown metric %q", name)
	}
}
