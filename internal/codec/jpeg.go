package codec

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/gen2brain/jpegli"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// JPEGCodec encodes with the jpegli encoder (better rate/distortion than the
// standard library at equal quality) and decodes with the standard library.
type JPEGCodec struct{}

func (c *JPEGCodec) Name() string        { return "jpeg" }
func (c *JPEGCodec) Extension() string   { return "jpg" }
func (c *JPEGCodec) Available() bool     { return true }
func (c *JPEGCodec) SupportsAlpha() bool { return false }

func (c *JPEGCodec) NativeRange() (int, int) { return 0, 100 }

func (c *JPEGCodec) ParamForQuality(quality int) int { return clampQuality(quality) }

func (c *JPEGCodec) Encode(p *picture.Picture, param int) ([]byte, error) {
	min, max := c.NativeRange()
	if err := checkInput(c.Name(), p, param, min, max); err != nil {
		return nil, err
	}

	var src image.Image
	if p.IsGray() {
		src = p.ToGray()
	} else {
		src = p.ToNRGBA()
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	err := jpegli.Encode(&buf, src, &jpegli.EncodingOptions{
		Quality:           param,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	})
	if err != nil {
		return nil, &EncodeError{Codec: c.Name(), Param: param, Err: err}
	}
	return buf.Bytes(), nil
}

func (c *JPEGCodec) Decode(data []byte) (*picture.Picture, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	p, err := picture.FromImage(img)
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	return p, nil
}
