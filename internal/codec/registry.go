package codec

import (
	"fmt"
	"strings"
)

// Registry holds all available codecs and resolves candidate format lists.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates a registry, probing all codecs for availability.
func NewRegistry() *Registry {
	r := &Registry{
		codecs: make(map[string]Codec),
	}

	all := []Codec{
		&JPEGCodec{},
		&WebPCodec{},
		&PNGCodec{},
	}

	for _, c := range all {
		if c.Available() {
			r.codecs[c.Name()] = c
		}
	}

	return r
}

// Get returns a codec for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Codec {
	name := strings.ToLower(format)
	if name == "jpg" {
		name = "jpeg"
	}
	return r.codecs[name]
}

// Available returns all available format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range []string{"webp", "jpeg", "png"} {
		if _, ok := r.codecs[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// Resolve filters requested formats to available ones and drops formats that
// cannot represent transparency when the source has alpha (unless the caller
// flattened the source first). Guarantees at least one candidate when any
// codec is available.
func (r *Registry) Resolve(requested []string, hasAlpha bool) []Codec {
	var resolved []Codec
	seen := map[string]bool{}

	for _, f := range requested {
		c := r.Get(f)
		if c == nil || seen[c.Name()] {
			continue
		}
		if hasAlpha && !c.SupportsAlpha() {
			continue
		}
		resolved = append(resolved, c)
		seen[c.Name()] = true
	}

	if len(resolved) == 0 {
		for _, f := range r.Available() {
			c := r.codecs[f]
			if hasAlpha && !c.SupportsAlpha() {
				continue
			}
			resolved = append(resolved, c)
			break
		}
	}

	return resolved
}

// String returns a summary of available codecs.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no codecs available"
	}
	return fmt.Sprintf("codecs: %s", strings.Join(avail, ", "))
}
