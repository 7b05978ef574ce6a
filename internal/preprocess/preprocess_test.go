package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 60, A: 255,
			})
		}
	}
	return img
}

func TestLoad_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(20, 10)); err != nil {
		t.Fatal(err)
	}

	src, err := Load(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if src.Format != "png" {
		t.Errorf("format: got %q, want png", src.Format)
	}
	if src.Picture.W != 20 || src.Picture.H != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", src.Picture.W, src.Picture.H)
	}
	if src.Orientation != 1 {
		t.Errorf("orientation: got %d, want 1", src.Orientation)
	}
}

func TestLoad_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(16, 16), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}

	src, err := Load(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if src.Format != "jpeg" {
		t.Errorf("format: got %q, want jpeg", src.Format)
	}
}

func TestLoad_WebPFallback(t *testing.T) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, testImage(24, 12), &webp.Options{Quality: 80}); err != nil {
		t.Fatal(err)
	}

	src, err := Load(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if src.Format != "webp" {
		t.Errorf("format: got %q, want webp", src.Format)
	}
	if src.Picture.W != 24 || src.Picture.H != 12 {
		t.Errorf("dimensions: got %dx%d, want 24x12", src.Picture.W, src.Picture.H)
	}
}

func TestLoad_Garbage(t *testing.T) {
	if _, err := Load([]byte("definitely not an image")); err == nil {
		t.Error("garbage input decoded")
	}
}

func TestApplyOrientation_Dimensions(t *testing.T) {
	img := testImage(30, 20)
	tests := []struct {
		orientation  int
		wantW, wantH int
	}{
		{1, 30, 20},
		{2, 30, 20},
		{3, 30, 20},
		{4, 30, 20},
		{5, 20, 30},
		{6, 20, 30},
		{7, 20, 30},
		{8, 20, 30},
	}
	for _, tt := range tests {
		out := applyOrientation(img, tt.orientation)
		b := out.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("orientation %d: got %dx%d, want %dx%d",
				tt.orientation, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestApplyOrientation_Rotate90(t *testing.T) {
	// Orientation 8 is a 90° counter-clockwise display rotation; the
	// top-right source pixel has to land at the top-left.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})

	out := applyOrientation(img, 8).(*image.NRGBA)
	got := out.NRGBAAt(0, 0)
	if got.R != 255 {
		t.Errorf("rotated pixel: got %+v at (0,0)", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#1a2B3c", color.NRGBA{0x1a, 0x2b, 0x3c, 255}, false},
		{"#fff", color.NRGBA{}, true},
		{"zzzzzz", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
