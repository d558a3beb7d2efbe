// Package magick speaks the invocation contract of an ImageMagick-compatible
// engine: probing image dimensions, and compiling a list of per-variant
// processing steps into a single decode-once pipeline expressed as an
// argument vector. Commands are never composed as shell strings.
package magick

import "strings"

// origBuffer is the named in-memory register holding the pristine decoded
// image, for variants that must not inherit a previous variant's crop.
const origBuffer = "mpr:orig"

// Variant is one processing step plus the output it writes: a fragment of
// engine operations, a destination-relative output path, and whether the
// pipeline must restore the pristine decode before applying the fragment.
type Variant struct {
	Ops     []string
	OutPath string
	Reset   bool
}

// Compile merges the variants of one source image into a single pipeline
// argument vector: one decode of source, the shared options, then each
// variant's operations terminating in a write of its output path. Output
// paths must already be resolved by the caller.
//
// Engine convention: every output but the last is an explicit intermediate
// "-write"; the last output is the pipeline's terminal argument. When any
// variant asks for a reset, the pristine decode is snapshotted to a named
// buffer up front and restored with "+delete <buffer>" where needed.
//
// Compile returns nil when there are no variants to produce.
func Compile(source string, options []string, variants []Variant) []string {
	if len(variants) == 0 {
		return nil
	}

	argv := []string{source}
	argv = append(argv, options...)

	needsOrig := false
	for _, v := range variants {
		if v.Reset {
			needsOrig = true
			break
		}
	}
	if needsOrig {
		argv = append(argv, "-write", origBuffer)
	}

	for i, v := range variants {
		if v.Reset && i > 0 {
			argv = append(argv, "+delete", origBuffer)
		}
		argv = append(argv, v.Ops...)
		if i < len(variants)-1 {
			argv = append(argv, "-write", v.OutPath)
		} else {
			argv = append(argv, v.OutPath)
		}
	}

	return argv
}

// CommandString renders an invocation for operator display (dry-run echo,
// failure reports). It is never executed.
func CommandString(bin string, argv []string) string {
	return bin + " " + strings.Join(argv, " ")
}
