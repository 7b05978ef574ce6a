package profile

// Profile bundles search parameters for a common use case. Flags override
// individual fields after lookup.
type Profile struct {
	Name    string
	Quality int      // operator quality 0-100
	Spread  int      // half-width of the quality band
	Metric  string   // "dssim" or "butteraugli"
	Formats []string // candidate output formats in priority order
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:    "default",
		Quality: 85,
		Spread:  10,
		Metric:  "dssim",
		Formats: []string{"webp", "jpeg", "png"},
	},
	"quality": {
		Name:    "quality",
		Quality: 95,
		Spread:  5,
		Metric:  "dssim",
		Formats: []string{"webp", "jpeg", "png"},
	},
	"aggressive": {
		Name:    "aggressive",
		Quality: 70,
		Spread:  15,
		Metric:  "dssim",
		Formats: []string{"webp", "jpeg", "png"},
	},
	"thumbnail": {
		Name:    "thumbnail",
		Quality: 75,
		Spread:  10,
		Metric:  "dssim",
		Formats: []string{"webp", "jpeg"},
	},
}

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profile names.
func Names() []string {
	return []string{"default", "quality", "aggressive", "thumbnail"}
}
