package picture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ColorSpace classifies the pixel content of a Picture. The buffer is always
// stored as RGBA; the classification records what the data actually uses so
// codecs can pick a cheaper encoding path (grayscale JPEG, opaque WebP).
type ColorSpace int

const (
	Gray ColorSpace = iota
	GrayAlpha
	RGB
	RGBA
)

func (c ColorSpace) String() string {
	switch c {
	case Gray:
		return "gray"
	case GrayAlpha:
		return "gray+alpha"
	case RGB:
		return "rgb"
	default:
		return "rgba"
	}
}

// Picture is an owned rectangular buffer of 8-bit RGBA samples.
// Invariant: len(Pix) == W*H*4. A Picture is never mutated after creation;
// every transform allocates a new one.
type Picture struct {
	W, H  int
	Pix   []uint8
	Space ColorSpace
}

// New wraps a raw RGBA buffer. The buffer is owned by the returned Picture.
func New(pix []uint8, w, h int) (*Picture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("picture: invalid dimensions %dx%d", w, h)
	}
	if len(pix) != w*h*4 {
		return nil, fmt.Errorf("picture: buffer length %d, want %d for %dx%d rgba", len(pix), w*h*4, w, h)
	}
	return &Picture{W: w, H: h, Pix: pix, Space: classify(pix)}, nil
}

// FromImage converts any image.Image into a Picture.
func FromImage(img image.Image) (*Picture, error) {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	// NRGBA stride can exceed 4*W; compact if needed.
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	if nrgba.Stride == w*4 {
		return New(nrgba.Pix[:w*h*4], w, h)
	}
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return New(pix, w, h)
}

// classify inspects pixel data. A channel pair within distance 1 still
// counts as gray, so slightly tinted grayscale scans stay on the gray path.
func classify(pix []uint8) ColorSpace {
	hasColor := false
	hasAlpha := false
	for i := 0; i < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if !hasColor && (dist(r, g) > 1 || dist(g, b) > 1) {
			hasColor = true
		}
		if !hasAlpha && a < 255 {
			hasAlpha = true
		}
		if hasColor && hasAlpha {
			break
		}
	}
	switch {
	case hasColor && hasAlpha:
		return RGBA
	case hasColor:
		return RGB
	case hasAlpha:
		return GrayAlpha
	default:
		return Gray
	}
}

func dist(a, b uint8) uint8 {
	if a < b {
		return b - a
	}
	return a - b
}

// HasAlpha reports whether any pixel is not fully opaque.
func (p *Picture) HasAlpha() bool {
	return p.Space == GrayAlpha || p.Space == RGBA
}

// IsGray reports whether the picture carries no chroma.
func (p *Picture) IsGray() bool {
	return p.Space == Gray || p.Space == GrayAlpha
}

// ToNRGBA copies the picture into a standard library image for encoders.
func (p *Picture) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.W, p.H))
	copy(img.Pix, p.Pix)
	return img
}

// ToGray extracts the luma-as-gray view of a gray-classified picture.
func (p *Picture) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.W, p.H))
	for i, j := 0, 0; i < len(p.Pix); i, j = i+4, j+1 {
		img.Pix[j] = p.Pix[i+1] // green channel; identical to r/b within tolerance
	}
	return img
}

// Clone returns an independent copy.
func (p *Picture) Clone() *Picture {
	pix := make([]uint8, len(p.Pix))
	copy(pix, p.Pix)
	return &Picture{W: p.W, H: p.H, Pix: pix, Space: p.Space}
}

// SRGBToLinear converts one 8-bit sRGB sample to linear light.
func SRGBToLinear(u uint8) float64 {
	v := float64(u) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB converts linear light back to an 8-bit sRGB sample.
func LinearToSRGB(v float64) uint8 {
	var s float64
	if v <= 0.0031308 {
		s = 12.92 * v
	} else {
		s = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	r := math.Round(255 * s)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// Flatten composites the picture onto an opaque background color, blending
// in linear light, and returns a new fully opaque picture. If the picture is
// already opaque it is returned unchanged.
func (p *Picture) Flatten(bg color.NRGBA) *Picture {
	if !p.HasAlpha() {
		return p
	}
	bgLin := [3]float64{SRGBToLinear(bg.R), SRGBToLinear(bg.G), SRGBToLinear(bg.B)}
	pix := make([]uint8, len(p.Pix))
	for i := 0; i < len(p.Pix); i += 4 {
		a := float64(p.Pix[i+3]) / 255.0
		for c := 0; c < 3; c++ {
			fg := SRGBToLinear(p.Pix[i+c])
			pix[i+c] = LinearToSRGB(fg*a + bgLin[c]*(1-a))
		}
		pix[i+3] = 255
	}
	out, _ := New(pix, p.W, p.H)
	return out
}
