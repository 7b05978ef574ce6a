package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/soniakeys/quant/median"
	"github.com/teerapap/riemersma"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Riemersma dithering parameters: queue of recent quantization errors and
// weight ratio between newest and oldest entry.
const (
	ditherQueueSize = 16
	ditherRatio     = 16.0
)

// PNGCodec produces palette-quantized PNG. Its parameter is the palette size
// (2-256) rather than a quality knob; more colors trade size for fidelity the
// same way a higher JPEG quality does.
type PNGCodec struct{}

func (c *PNGCodec) Name() string        { return "png" }
func (c *PNGCodec) Extension() string   { return "png" }
func (c *PNGCodec) Available() bool     { return true }
func (c *PNGCodec) SupportsAlpha() bool { return true }

func (c *PNGCodec) NativeRange() (int, int) { return 2, 256 }

func (c *PNGCodec) ParamForQuality(quality int) int {
	quality = clampQuality(quality)
	min, max := c.NativeRange()
	return min + (max-min)*quality/100
}

func (c *PNGCodec) Encode(p *picture.Picture, param int) ([]byte, error) {
	min, max := c.NativeRange()
	if err := checkInput(c.Name(), p, param, min, max); err != nil {
		return nil, err
	}

	src := p.ToNRGBA()
	bounds := src.Bounds()

	// Median-cut palette, then error-diffusion dithering over the indexed
	// image. The quantizer can return fewer colors than requested for
	// low-entropy sources; that is fine, the palette just shrinks.
	pal := median.Quantizer(param).Quantize(make(color.Palette, 0, param), src)
	if len(pal) == 0 {
		pal = color.Palette{color.NRGBA{A: 255}}
	}
	indexed := image.NewPaletted(bounds, pal)
	riemersma.NewOperation(ditherQueueSize, ditherRatio).Draw(indexed, bounds, src, bounds.Min)

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, indexed); err != nil {
		return nil, &EncodeError{Codec: c.Name(), Param: param, Err: err}
	}
	return buf.Bytes(), nil
}

func (c *PNGCodec) Decode(data []byte) (*picture.Picture, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	p, err := picture.FromImage(img)
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	return p, nil
}
