package metric

import (
	"image"

	"github.com/jasonmoo/go-butteraugli"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Butteraugli wraps the butteraugli psychovisual distance. Scores live on a
// different scale than DSSIM (roughly 0.2 at JPEG quality 100, 2.8 at 70);
// targets come from the butteraugli quality table.
type Butteraugli struct {
	w, h int
	src  *image.NRGBA
}

// NewButteraugli keeps a decoded copy of the source for repeated comparisons.
func NewButteraugli(source *picture.Picture) (*Butteraugli, error) {
	return &Butteraugli{w: source.W, h: source.H, src: source.ToNRGBA()}, nil
}

func (m *Butteraugli) Compare(candidate *picture.Picture) (float64, error) {
	if candidate.W != m.w || candidate.H != m.h {
		return 0, ErrDimensionMismatch
	}
	score, err := butteraugli.CompareImages(m.src, candidate.ToNRGBA())
	if err != nil {
		return 0, err
	}
	return float64(score), nil
}
