package codec

import (
	"bytes"

	"github.com/chai2010/webp"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// WebPCodec encodes lossy WebP through libwebp bindings.
type WebPCodec struct{}

func (c *WebPCodec) Name() string        { return "webp" }
func (c *WebPCodec) Extension() string   { return "webp" }
func (c *WebPCodec) Available() bool     { return true }
func (c *WebPCodec) SupportsAlpha() bool { return true }

func (c *WebPCodec) NativeRange() (int, int) { return 0, 100 }

func (c *WebPCodec) ParamForQuality(quality int) int { return clampQuality(quality) }

func (c *WebPCodec) Encode(p *picture.Picture, param int) ([]byte, error) {
	min, max := c.NativeRange()
	if err := checkInput(c.Name(), p, param, min, max); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	opts := &webp.Options{Quality: float32(param), Exact: p.HasAlpha()}
	if err := webp.Encode(&buf, p.ToNRGBA(), opts); err != nil {
		return nil, &EncodeError{Codec: c.Name(), Param: param, Err: err}
	}
	return buf.Bytes(), nil
}

func (c *WebPCodec) Decode(data []byte) (*picture.Picture, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	p, err := picture.FromImage(img)
	if err != nil {
		return nil, &DecodeError{Codec: c.Name(), Err: err}
	}
	return p, nil
}
