// Package preprocess turns input bytes into the immutable picture the
// search operates on: decode, EXIF orientation correction, and optional
// background flattening. Color management is not performed; inputs are
// assumed to be sRGB.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Source is the fully pre-processed input image plus what was learned about
// it on the way in.
type Source struct {
	Picture     *picture.Picture
	Format      string // decoded input format name
	Orientation int    // EXIF orientation that was applied (1 = none)
}

// Load decodes input bytes and applies EXIF orientation. WebP is attempted
// when the registered decoders fail, so all three output formats round-trip
// as inputs too.
func Load(data []byte) (*Source, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			img, format = wimg, "webp"
		} else {
			return nil, fmt.Errorf("decode input: %w", err)
		}
	}

	orientation := readOrientation(data)
	img = applyOrientation(img, orientation)

	p, err := picture.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("convert input: %w", err)
	}
	return &Source{Picture: p, Format: format, Orientation: orientation}, nil
}

// readOrientation extracts the EXIF orientation tag, defaulting to 1.
// Only values 1-8 are meaningful.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// applyOrientation rotates and flips pixels so the result displays upright
// without metadata.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Flatten composites a transparent source onto an opaque background so that
// alpha-incapable formats become candidates. No-op for opaque sources.
func Flatten(p *picture.Picture, bg color.NRGBA) *picture.Picture {
	return p.Flatten(bg)
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("background color must be rrggbb, got %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("background color must be rrggbb, got %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
