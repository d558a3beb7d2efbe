// Package derive plans the variant set of each source image and runs one
// output group end to end: probe, cache filtering, dispatch, metadata
// persistence. The geometry policy of a group is an injected planning
// function built from configuration, never a subtype.
package derive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buddhist-uni/big-imgs/internal/config"
	"github.com/buddhist-uni/big-imgs/internal/geometry"
	"github.com/buddhist-uni/big-imgs/internal/magick"
)

// Planner maps one probed source image (path relative to the group source
// root, pixel dimensions) to its ordered variant list. Planners are pure:
// same inputs, same variants, no filesystem access.
type Planner func(rel string, width, height int) ([]magick.Variant, error)

// NewPlanner builds the planning function for a group from its policy
// configuration. Policies needing per-image focal data receive it here.
func NewPlanner(g *config.Group, focal map[string]ImageEntry) (Planner, error) {
	switch g.Policy.Kind {
	case config.KindFit:
		return fitPlanner(g), nil
	case config.KindAspect:
		return aspectPlanner(g), nil
	case config.KindIllustration:
		return illustrationPlanner(g, focal), nil
	case config.KindBanner:
		return bannerPlanner(g, focal), nil
	default:
		return nil, fmt.Errorf("no planner for policy kind %q", g.Policy.Kind)
	}
}

// outBase returns the output path of an image minus suffix and extension.
// Flat groups keep the source-relative path; nested groups flatten to the
// bare stem, since their subfolders classify rather than namespace.
func outBase(g *config.Group, rel string) string {
	if g.Nested {
		base := filepath.Base(rel)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func outName(base, suffix, ext string) string {
	return base + suffix + "." + ext
}

// rungOps renders one fit-ladder rung.
func rungOps(r config.Rung) []string {
	if r.Width > 0 {
		return magick.ResizeWidthOp(r.Width)
	}
	return magick.ResizeFitOp(geometry.Size{Width: r.MaxWidth, Height: r.MaxHeight})
}

// rungVariants renders a whole ladder. Rungs shrink monotonically, so each
// one safely resizes the previous rung's buffer; no resets are needed.
func rungVariants(rungs []config.Rung, base, ext string) []magick.Variant {
	variants := make([]magick.Variant, 0, len(rungs))
	for _, r := range rungs {
		variants = append(variants, magick.Variant{
			Ops:     rungOps(r),
			OutPath: outName(base, r.Suffix, ext),
		})
	}
	return variants
}

func fitPlanner(g *config.Group) Planner {
	return func(rel string, width, height int) ([]magick.Variant, error) {
		return rungVariants(g.Policy.Rungs, outBase(g, rel), g.Extension), nil
	}
}

func aspectPlanner(g *config.Group) Planner {
	return func(rel string, width, height int) ([]magick.Variant, error) {
		rungs := g.Policy.Rungs
		if height > width && height >= g.Policy.TallMinHeight {
			rungs = g.Policy.TallRungs
		}
		return rungVariants(rungs, outBase(g, rel), g.Extension), nil
	}
}

func illustrationPlanner(g *config.Group, focal map[string]ImageEntry) Planner {
	preview := g.Policy.Preview
	return func(rel string, width, height int) ([]magick.Variant, error) {
		f, err := focalFor(focal, rel)
		if err != nil {
			return nil, err
		}

		base := outBase(g, rel)
		variants := rungVariants(g.Policy.Rungs, base, g.Extension)
		win := geometry.Window(width, height, preview.Width, preview.Height, f)
		variants = append(variants, magick.Variant{
			Ops:     magick.CropOp(win),
			OutPath: outName(base, "-preview", g.Extension),
			Reset:   true,
		})
		return variants, nil
	}
}

func bannerPlanner(g *config.Group, focal map[string]ImageEntry) Planner {
	p := g.Policy
	return func(rel string, width, height int) ([]magick.Variant, error) {
		subfolder := subfolderOf(rel)
		targetHeight, ok := p.Heights[subfolder]
		if !ok {
			return nil, fmt.Errorf("no banner height configured for subfolder %q (image %s)", subfolder, rel)
		}
		f, err := focalFor(focal, rel)
		if err != nil {
			return nil, err
		}

		base := outBase(g, rel)
		var variants []magick.Variant
		for _, bp := range p.Breakpoints {
			oneX := geometry.Size{
				Width:  geometry.Scale(bp, p.Density),
				Height: geometry.Scale(targetHeight, p.Density),
			}

			if float64(bp)*p.MinDensityRatio > float64(width) {
				// The source lacks resolution for a 2x at this breakpoint,
				// so every larger breakpoint lacks it too: emit a single 1x
				// and stop.
				crop, resize := geometry.Crop(width, height, oneX.Width, oneX.Height, f)
				variants = append(variants, magick.Variant{
					Ops:     magick.GeometryOps(crop, resize),
					OutPath: fmt.Sprintf("%s-%d-1x.%s", base, bp, g.Extension),
					Reset:   true,
				})
				break
			}

			twoX := geometry.Size{
				Width:  geometry.Scale(bp, 2*p.Density),
				Height: geometry.Scale(targetHeight, 2*p.Density),
			}
			crop, resize := geometry.Crop(width, height, twoX.Width, twoX.Height, f)
			variants = append(variants, magick.Variant{
				Ops:     magick.GeometryOps(crop, resize),
				OutPath: fmt.Sprintf("%s-%d-2x.%s", base, bp, g.Extension),
				Reset:   len(variants) > 0,
			})
			// The 1x is the 2x buffer scaled down, no fresh crop needed.
			variants = append(variants, magick.Variant{
				Ops:     magick.ResizeFitOp(oneX),
				OutPath: fmt.Sprintf("%s-%d-1x.%s", base, bp, g.Extension),
			})
		}
		return variants, nil
	}
}

// focalFor looks up an image's focal point by file name, the key format of
// the focal data file.
func focalFor(focal map[string]ImageEntry, rel string) (geometry.Focal, error) {
	name := filepath.Base(rel)
	entry, ok := focal[name]
	if !ok {
		return geometry.Focal{}, fmt.Errorf("no focal point recorded for %s", name)
	}
	return geometry.Focal{X: entry.Center[0], Y: entry.Center[1]}, nil
}

// subfolderOf returns the first path element of a nested-relative path.
func subfolderOf(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}
