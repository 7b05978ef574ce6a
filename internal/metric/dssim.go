package metric

import (
	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Multi-scale weights. Each scale halves the resolution; the weights follow
// the standard MS-SSIM five-scale pooling.
var scaleWeights = [5]float64{0.0448, 0.2856, 0.3001, 0.2363, 0.1333}

// Windowed SSIM stabilization constants for 8-bit dynamic range:
// c1 = (0.01*255)^2, c2 = (0.03*255)^2.
const (
	ssimC1     = 6.5025
	ssimC2     = 58.5225
	ssimWindow = 8
	minScaleWH = 8
)

// DSSIM scores structural dissimilarity: 1/mssim - 1, where mssim is the
// weighted multi-scale mean SSIM over the luma plane. 0 means identical;
// typical visible-but-acceptable JPEG artifacts land around 0.003-0.03.
type DSSIM struct {
	w, h    int
	pyramid [][]float64 // luma planes of the source, one per scale
}

// NewDSSIM precomputes the source luma pyramid.
func NewDSSIM(source *picture.Picture) (*DSSIM, error) {
	d := &DSSIM{w: source.W, h: source.H}
	plane := lumaPlane(source)
	w, h := source.W, source.H
	for s := 0; s < len(scaleWeights); s++ {
		d.pyramid = append(d.pyramid, plane)
		if w/2 < minScaleWH || h/2 < minScaleWH {
			break
		}
		plane, w, h = halve(plane, w, h)
	}
	return d, nil
}

// Compare is deterministic and safe to call from multiple goroutines.
func (d *DSSIM) Compare(candidate *picture.Picture) (float64, error) {
	if candidate.W != d.w || candidate.H != d.h {
		return 0, ErrDimensionMismatch
	}

	plane := lumaPlane(candidate)
	w, h := candidate.W, candidate.H

	var num, den float64
	for s := 0; s < len(d.pyramid); s++ {
		num += scaleWeights[s] * meanSSIM(d.pyramid[s], plane, w, h)
		den += scaleWeights[s]
		if s+1 < len(d.pyramid) {
			plane, w, h = halve(plane, w, h)
		}
	}
	mssim := num / den
	if mssim < 1e-9 {
		mssim = 1e-9
	}
	score := 1/mssim - 1
	if score < 0 {
		score = 0
	}
	return score, nil
}

// lumaPlane converts RGBA samples to Rec.601 luma.
func lumaPlane(p *picture.Picture) []float64 {
	out := make([]float64, p.W*p.H)
	for i, j := 0, 0; i < len(p.Pix); i, j = i+4, j+1 {
		out[j] = 0.299*float64(p.Pix[i]) + 0.587*float64(p.Pix[i+1]) + 0.114*float64(p.Pix[i+2])
	}
	return out
}

// halve box-downsamples a plane by 2 in each dimension.
func halve(plane []float64, w, h int) ([]float64, int, int) {
	nw, nh := w/2, h/2
	out := make([]float64, nw*nh)
	for y := 0; y < nh; y++ {
		for x := 0; x < nw; x++ {
			i := 2*y*w + 2*x
			out[y*nw+x] = (plane[i] + plane[i+1] + plane[i+w] + plane[i+w+1]) / 4
		}
	}
	return out, nw, nh
}

// meanSSIM computes the average SSIM over non-overlapping 8x8 windows,
// with partial windows at the right/bottom edges.
func meanSSIM(a, b []float64, w, h int) float64 {
	var total, count float64
	for y := 0; y < h; y += ssimWindow {
		for x := 0; x < w; x += ssimWindow {
			total += windowSSIM(a, b, w, h, x, y)
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return total / count
}

func windowSSIM(a, b []float64, w, h, x0, y0 int) float64 {
	var m1, m2, n float64
	for y := y0; y < y0+ssimWindow && y < h; y++ {
		for x := x0; x < x0+ssimWindow && x < w; x++ {
			m1 += a[y*w+x]
			m2 += b[y*w+x]
			n++
		}
	}
	m1 /= n
	m2 /= n

	var s1, s2, s12 float64
	for y := y0; y < y0+ssimWindow && y < h; y++ {
		for x := x0; x < x0+ssimWindow && x < w; x++ {
			d1 := a[y*w+x] - m1
			d2 := b[y*w+x] - m2
			s1 += d1 * d1
			s2 += d2 * d2
			s12 += d1 * d2
		}
	}
	if n > 1 {
		s1 /= n - 1
		s2 /= n - 1
		s12 /= n - 1
	} else {
		s1, s2, s12 = 0, 0, 0
	}

	return ((2*m1*m2 + ssimC1) * (2*s12 + ssimC2)) /
		((m1*m1 + m2*m2 + ssimC1) * (s1 + s2 + ssimC2))
}
