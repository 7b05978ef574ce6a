package target

import (
	"math"
	"testing"

	"github.com/AnyUserName/piq-cli/internal/codec"
)

func TestScoreForQuality_Samples(t *testing.T) {
	tests := []struct {
		metric  string
		quality float64
		want    float64
	}{
		{"dssim", 0, 0.2800},
		{"dssim", 40, 0.0382},
		{"dssim", 80, 0.0053},
		{"dssim", 100, 0.0016},
		{"butteraugli", 70, 2.8108},
		{"butteraugli", 80, 2.2017},
		{"butteraugli", 90, 1.4736},
		{"butteraugli", 95, 0.9718},
	}
	for _, tt := range tests {
		got, err := ScoreForQuality(tt.metric, tt.quality)
		if err != nil {
			t.Fatalf("%s q=%v: %v", tt.metric, tt.quality, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s q=%v: got %v, want %v", tt.metric, tt.quality, got, tt.want)
		}
	}
}

func TestScoreForQuality_Interpolates(t *testing.T) {
	// Quality 82 sits 2/5 between the 80 and 85 samples.
	got, err := ScoreForQuality("dssim", 82)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.0053 + (0.0041-0.0053)*2.0/5.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}

	lo, _ := ScoreForQuality("dssim", 80)
	hi, _ := ScoreForQuality("dssim", 85)
	if !(got < lo && got > hi) {
		t.Errorf("interpolated %v not between samples %v and %v", got, lo, hi)
	}
}

func TestScoreForQuality_Clamps(t *testing.T) {
	below, err := ScoreForQuality("dssim", -20)
	if err != nil {
		t.Fatal(err)
	}
	atZero, _ := ScoreForQuality("dssim", 0)
	if below != atZero {
		t.Errorf("below domain: got %v, want %v", below, atZero)
	}

	above, _ := ScoreForQuality("dssim", 140)
	atMax, _ := ScoreForQuality("dssim", 100)
	if above != atMax {
		t.Errorf("above domain: got %v, want %v", above, atMax)
	}
}

func TestScoreForQuality_UnknownMetric(t *testing.T) {
	if _, err := ScoreForQuality("psnr", 80); err == nil {
		t.Error("unknown metric accepted")
	}
}

func TestScoreForQuality_DefaultsToDSSIM(t *testing.T) {
	a, _ := ScoreForQuality("", 50)
	b, _ := ScoreForQuality("dssim", 50)
	if a != b {
		t.Errorf("empty metric: got %v, want %v", a, b)
	}
}

func TestDeriveBand_QualitySpread(t *testing.T) {
	c := &codec.JPEGCodec{}
	b, err := DeriveBand(c, Options{Quality: 80, Spread: 10, MinParam: -1, MaxParam: -1})
	if err != nil {
		t.Fatal(err)
	}
	if b.Min != 70 || b.Max != 90 {
		t.Errorf("band: got [%d, %d], want [70, 90]", b.Min, b.Max)
	}
	want, _ := ScoreForQuality("dssim", 80)
	if b.Target != want {
		t.Errorf("target: got %v, want %v", b.Target, want)
	}
}

func TestDeriveBand_SpreadClampsToNativeRange(t *testing.T) {
	c := &codec.JPEGCodec{}
	b, err := DeriveBand(c, Options{Quality: 95, Spread: 10, MinParam: -1, MaxParam: -1})
	if err != nil {
		t.Fatal(err)
	}
	if b.Min != 85 || b.Max != 100 {
		t.Errorf("band: got [%d, %d], want [85, 100]", b.Min, b.Max)
	}
}

func TestDeriveBand_ExplicitOverrides(t *testing.T) {
	c := &codec.JPEGCodec{}
	b, err := DeriveBand(c, Options{
		Quality: 80, Spread: 10,
		TargetScore: 0.02,
		MinParam:    55, MaxParam: 65,
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Target != 0.02 {
		t.Errorf("override target: got %v", b.Target)
	}
	if b.Min != 55 || b.Max != 65 {
		t.Errorf("override band: got [%d, %d]", b.Min, b.Max)
	}

	// Explicit params are clamped to the native range.
	b, err = DeriveBand(c, Options{Quality: 80, MinParam: 0, MaxParam: 500})
	if err != nil {
		t.Fatal(err)
	}
	if b.Max != 100 {
		t.Errorf("clamped max: got %d, want 100", b.Max)
	}
}

func TestDeriveBand_InvertedBand(t *testing.T) {
	c := &codec.JPEGCodec{}
	if _, err := DeriveBand(c, Options{Quality: 80, MinParam: 90, MaxParam: 10}); err == nil {
		t.Error("inverted band accepted")
	}
}

func TestDeriveBand_PNGPaletteMapping(t *testing.T) {
	c := &codec.PNGCodec{}
	b, err := DeriveBand(c, Options{Quality: 80, Spread: 10, MinParam: -1, MaxParam: -1})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := c.NativeRange()
	if b.Min < lo || b.Max > hi || b.Min >= b.Max {
		t.Errorf("band [%d, %d] outside palette range [%d, %d]", b.Min, b.Max, lo, hi)
	}
}
