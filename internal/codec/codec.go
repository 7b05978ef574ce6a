package codec

import (
	"fmt"

	"github.com/AnyUserName/piq-cli/internal/picture"
)

// Codec encodes a picture to a specific format and can re-decode its own
// output for perceptual comparison. The integer parameter is format-native:
// quality 0-100 for JPEG and WebP, palette size 2-256 for quantized PNG.
// Higher parameter always means higher fidelity and (usually) larger output;
// the relation is approximate, not guaranteed monotonic.
type Codec interface {
	// Name returns the format name ("jpeg", "webp", "png").
	Name() string

	// Extension returns the file extension without dot.
	Extension() string

	// Available returns true if the codec is ready to use.
	Available() bool

	// SupportsAlpha reports whether the format can carry transparency.
	SupportsAlpha() bool

	// NativeRange returns the inclusive bounds of the valid parameter space.
	NativeRange() (min, max int)

	// ParamForQuality maps an operator-facing quality (0-100) to the nearest
	// native parameter, clamped to the native range.
	ParamForQuality(quality int) int

	// Encode converts the picture to bytes at the given native parameter.
	// Returns *EncodeError for out-of-range parameters or unencodable input.
	Encode(p *picture.Picture, param int) ([]byte, error)

	// Decode converts encoded bytes back into comparable pixel data. It is
	// only ever called on the codec's own Encode output; a failure here is
	// an internal invariant violation, reported as *DecodeError.
	Decode(data []byte) (*picture.Picture, error)
}

// EncodeError reports that an adapter rejected a parameter or image.
// Recoverable: the caller drops the trial and continues.
type EncodeError struct {
	Codec string
	Param int
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode at %d: %v", e.Codec, e.Param, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports that an adapter failed to re-decode its own output.
// Fatal for the affected search: not retried.
type DecodeError struct {
	Codec string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode own output: %v", e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// checkInput validates common encode preconditions.
func checkInput(name string, p *picture.Picture, param, min, max int) error {
	if param < min || param > max {
		return &EncodeError{Codec: name, Param: param,
			Err: fmt.Errorf("parameter outside native range [%d,%d]", min, max)}
	}
	if p == nil || p.W <= 0 || p.H <= 0 {
		return &EncodeError{Codec: name, Param: param, Err: fmt.Errorf("empty image")}
	}
	return nil
}

// clampQuality clips an operator quality to 0-100.
func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}
