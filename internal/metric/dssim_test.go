package metric

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

func noisePicture(t *testing.T, w, h int, seed int64) *picture.Picture {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(rng.Intn(256))
		pix[i+1] = uint8(rng.Intn(256))
		pix[i+2] = uint8(rng.Intn(256))
		pix[i+3] = 255
	}
	p, err := picture.New(pix, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// degrade adds bounded noise to every sample, simulating encoder artifacts.
func degrade(t *testing.T, p *picture.Picture, amplitude int, seed int64) *picture.Picture {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	c := p.Clone()
	for i := 0; i < len(c.Pix); i += 4 {
		for j := 0; j < 3; j++ {
			v := int(c.Pix[i+j]) + rng.Intn(2*amplitude+1) - amplitude
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			c.Pix[i+j] = uint8(v)
		}
	}
	return c
}

func TestDSSIM_IdenticalIsZero(t *testing.T) {
	src := noisePicture(t, 64, 48, 1)
	d, err := NewDSSIM(src)
	if err != nil {
		t.Fatal(err)
	}
	score, err := d.Compare(src)
	if err != nil {
		t.Fatal(err)
	}
	if score > 1e-12 {
		t.Errorf("identical input: got %v, want 0", score)
	}
}

func TestDSSIM_Deterministic(t *testing.T) {
	src := noisePicture(t, 64, 48, 2)
	cand := degrade(t, src, 12, 3)
	d, err := NewDSSIM(src)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := d.Compare(cand)
	b, _ := d.Compare(cand)
	if a != b {
		t.Errorf("repeat comparison differs: %v vs %v", a, b)
	}
	if a <= 0 {
		t.Errorf("degraded input: got %v, want > 0", a)
	}
}

func TestDSSIM_MoreDamageScoresHigher(t *testing.T) {
	src := noisePicture(t, 96, 96, 4)
	d, err := NewDSSIM(src)
	if err != nil {
		t.Fatal(err)
	}
	light, _ := d.Compare(degrade(t, src, 4, 5))
	heavy, _ := d.Compare(degrade(t, src, 60, 5))
	if heavy <= light {
		t.Errorf("heavy damage %v not above light damage %v", heavy, light)
	}
}

func TestDSSIM_DimensionMismatch(t *testing.T) {
	src := noisePicture(t, 32, 32, 6)
	other := noisePicture(t, 16, 32, 7)
	d, err := NewDSSIM(src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Compare(other)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error: got %v, want ErrDimensionMismatch", err)
	}
}

func TestDSSIM_TinyImage(t *testing.T) {
	// Below the minimum scale size the pyramid must stop at one level.
	src := noisePicture(t, 9, 9, 8)
	d, err := NewDSSIM(src)
	if err != nil {
		t.Fatal(err)
	}
	score, err := d.Compare(src.Clone())
	if err != nil {
		t.Fatal(err)
	}
	if score > 1e-12 {
		t.Errorf("identical tiny input: got %v", score)
	}
}

func TestNew_Dispatch(t *testing.T) {
	src := noisePicture(t, 16, 16, 9)
	for _, name := range []string{"", "dssim", "butteraugli"} {
		if _, err := New(name, src); err != nil {
			t.Errorf("metric %q: %v", name, err)
		}
	}
	if _, err := New("psnr", src); err == nil {
		t.Error("unknown metric accepted")
	}
}

func TestButteraugli_DimensionMismatch(t *testing.T) {
	src := noisePicture(t, 32, 32, 10)
	other := noisePicture(t, 32, 16, 11)
	m, err := NewButteraugli(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Compare(other); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error: got %v, want ErrDimensionMismatch", err)
	}
}
