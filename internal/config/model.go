// Package config loads and validates the HCL grid describing the run: the
// static file copies and the output groups with their versions and
// geometry policies. Groups are plain configuration values; the policy a
// group names is looked up and parameterized at runtime, so adding a group
// never means adding a type.
package config

// Model is the validated, format-agnostic description of a full run.
type Model struct {
	// Options overrides the engine's shared encode options when non-nil.
	Options []string
	Copies  []Copy
	Groups  []*Group
}

// Copy declares one static file sync into the destination tree.
type Copy struct {
	// Source is the file to copy, resolved at load time.
	Source string
	// To is the destination path, relative to the destination root.
	To string
}

// Group configures one output group: where its sources live, where its
// outputs go, its cache version, and the geometry policy deriving its
// variants.
type Group struct {
	Name string
	// Source is the absolute source root directory.
	Source string
	// Dest is the destination subdirectory, relative to the destination root.
	Dest string
	// Version is the cache generation. Bumping it invalidates every output
	// of the group.
	Version int
	// Nested selects the two-level "<source>/*/*" listing.
	Nested bool
	// FocalData names the per-image focal point file inside the source
	// root, empty when the group has none.
	FocalData string
	// Extension is the output file extension, "webp" by default.
	Extension string
	Policy    Policy
}

// Rung is one resize step of a fit ladder: either a fit-within box
// (MaxWidth x MaxHeight, never enlarging) or an exact proportional Width.
type Rung struct {
	// Suffix is appended to the output stem, e.g. "-1x".
	Suffix    string
	MaxWidth  int
	MaxHeight int
	Width     int
}

// Preview is the fixed-size focal crop of an illustration policy.
type Preview struct {
	Width  int
	Height int
}

// Policy is the parameterized geometry policy of a group. Kind selects the
// planning strategy; the remaining fields apply to the kinds that use them.
type Policy struct {
	Kind string

	// fit, aspect, illustration
	Rungs []Rung

	// aspect: rungs used when height > width and height >= TallMinHeight.
	TallRungs     []Rung
	TallMinHeight int

	// illustration
	Preview *Preview

	// banner
	Breakpoints     []int
	Density         float64
	MinDensityRatio float64
	// Heights maps source subfolder names to target display heights.
	Heights map[string]int
}

// Policy kinds.
const (
	KindFit          = "fit"
	KindAspect       = "aspect"
	KindIllustration = "illustration"
	KindBanner       = "banner"
)
