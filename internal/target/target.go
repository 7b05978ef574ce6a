// Package target maps the operator-facing quality scale (0-100) to a
// perceptual dissimilarity target, and derives the parameter band a search
// is allowed to explore.
package target

import (
	"fmt"

	"github.com/AnyUserName/piq-cli/internal/codec"
)

// Table entries are sampled every tableStep quality points from 0 to 100.
const tableStep = 5

// Expected DSSIM at each sampled quality, measured by encoding a reference
// photo corpus with the JPEG adapter at the corresponding quality and taking
// the median score. Queries between samples interpolate linearly; outside
// the domain they clamp.
var dssimForQuality = []float64{
	0.2800, // 0
	0.2150,
	0.1650,
	0.1280,
	0.1000, // 20
	0.0780,
	0.0620,
	0.0490,
	0.0382, // 40
	0.0300,
	0.0235,
	0.0183,
	0.0143, // 60
	0.0112,
	0.0087,
	0.0068,
	0.0053, // 80
	0.0041,
	0.0031,
	0.0023,
	0.0016, // 100
}

// Same corpus, butteraugli distance. Values from quality 70 up track the
// published libjpeg-turbo medians; below 70 they were measured the same way.
var butteraugliForQuality = []float64{
	7.8500, // 0
	7.1200,
	6.4800,
	5.9100,
	5.3900, // 20
	4.9200,
	4.4800,
	4.0700,
	3.6900, // 40
	3.3400,
	3.0200,
	2.9100,
	2.8300, // 60
	2.8200,
	2.8108, // 70
	2.5254,
	2.2017, // 80
	1.9001,
	1.4736, // 90
	0.9718,
	0.2116, // 100
}

// ScoreForQuality returns the dissimilarity target for an operator quality,
// linearly interpolated between table samples and clamped at the endpoints.
func ScoreForQuality(metric string, quality float64) (float64, error) {
	var table []float64
	switch metric {
	case "", "dssim":
		table = dssimForQuality
	case "butteraugli":
		table = butteraugliForQuality
	default:
		return 0, fmt.Errorf("target: no quality table for metric %q", metric)
	}

	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}
	idx := int(quality) / tableStep
	if idx >= len(table)-1 {
		return table[len(table)-1], nil
	}
	mix := (quality - float64(idx*tableStep)) / tableStep
	return table[idx]*(1-mix) + table[idx+1]*mix, nil
}

// Band bounds one format's parameter search: aim for Target, stay within
// [Min,Max] native parameters.
type Band struct {
	Target   float64
	Min, Max int
}

// Options carries the operator's search configuration. Explicit values
// override the derived ones: TargetScore replaces the table lookup, and
// MinParam/MaxParam replace the quality±spread band entirely.
type Options struct {
	Quality     int     // 0-100
	Spread      int     // half-width of the quality band
	Metric      string  // "dssim" or "butteraugli"
	TargetScore float64 // >0 overrides the table
	MinParam    int     // >=0 overrides the derived minimum (use -1 to derive)
	MaxParam    int     // >=0 overrides the derived maximum (use -1 to derive)
}

// DeriveBand computes the band for one codec.
func DeriveBand(c codec.Codec, opts Options) (Band, error) {
	b := Band{}

	if opts.TargetScore > 0 {
		b.Target = opts.TargetScore
	} else {
		t, err := ScoreForQuality(opts.Metric, float64(opts.Quality))
		if err != nil {
			return Band{}, err
		}
		b.Target = t
	}

	lo, hi := c.NativeRange()
	if opts.MinParam >= 0 && opts.MaxParam >= 0 {
		b.Min = clamp(opts.MinParam, lo, hi)
		b.Max = clamp(opts.MaxParam, lo, hi)
	} else {
		b.Min = c.ParamForQuality(opts.Quality - opts.Spread)
		b.Max = c.ParamForQuality(opts.Quality + opts.Spread)
	}
	if b.Min > b.Max {
		return Band{}, fmt.Errorf("target: %s: min parameter %d above max %d", c.Name(), b.Min, b.Max)
	}
	return b, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
