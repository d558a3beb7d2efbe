package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/buddhist-uni/big-imgs/internal/ctxlog"
)

// fileRoot decodes the top-level blocks of a grid file.
type fileRoot struct {
	Options []string      `hcl:"options,optional"`
	Copies  []*copyBlock  `hcl:"copy,block"`
	Groups  []*groupBlock `hcl:"group,block"`
}

type copyBlock struct {
	Source string `hcl:"source"`
	To     string `hcl:"to"`
}

type groupBlock struct {
	Name      string       `hcl:"name,label"`
	Source    string       `hcl:"source"`
	Dest      string       `hcl:"dest"`
	Version   int          `hcl:"version"`
	Nested    bool         `hcl:"nested,optional"`
	FocalData string       `hcl:"focal_data,optional"`
	Extension string       `hcl:"extension,optional"`
	Policy    *policyBlock `hcl:"policy,block"`
}

type policyBlock struct {
	Kind            string          `hcl:"kind,label"`
	Rungs           []*rungBlock    `hcl:"rung,block"`
	TallRungs       []*rungBlock    `hcl:"tall_rung,block"`
	TallMinHeight   int             `hcl:"tall_min_height,optional"`
	Preview         *previewBlock   `hcl:"preview,block"`
	Breakpoints     []int           `hcl:"breakpoints,optional"`
	Density         float64         `hcl:"density,optional"`
	MinDensityRatio float64         `hcl:"min_density_ratio,optional"`
	Heights         map[string]int  `hcl:"heights,optional"`
}

type rungBlock struct {
	Suffix    string `hcl:"suffix,optional"`
	MaxWidth  int    `hcl:"max_width,optional"`
	MaxHeight int    `hcl:"max_height,optional"`
	Width     int    `hcl:"width,optional"`
}

type previewBlock struct {
	Width  int `hcl:"width"`
	Height int `hcl:"height"`
}

// Load parses and validates the grid file at path. Paths inside the file
// may interpolate the "root" variable, which is bound to the directory
// containing the grid file; relative source paths are resolved against it.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rootDir := filepath.Dir(absPath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(absPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse grid file %s: %w", path, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root": cty.StringVal(rootDir),
		},
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode grid file %s: %w", path, diags)
	}

	model, err := translate(&root, rootDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Grid loaded.", "groups", len(model.Groups), "copies", len(model.Copies))
	return model, nil
}

// translate converts the raw HCL blocks into the validated model.
func translate(root *fileRoot, rootDir string) (*Model, error) {
	model := &Model{Options: root.Options}

	for _, c := range root.Copies {
		if c.Source == "" || c.To == "" {
			return nil, fmt.Errorf("copy block needs both source and to")
		}
		src := c.Source
		if !filepath.IsAbs(src) {
			src = filepath.Join(rootDir, src)
		}
		if !filepath.IsLocal(c.To) {
			return nil, fmt.Errorf("copy target %q must stay inside the destination", c.To)
		}
		model.Copies = append(model.Copies, Copy{Source: src, To: c.To})
	}

	seenNames := map[string]bool{}
	seenDests := map[string]bool{}
	for _, g := range root.Groups {
		group, err := translateGroup(g, rootDir)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		if seenNames[group.Name] {
			return nil, fmt.Errorf("group %q: duplicate group name", group.Name)
		}
		if seenDests[group.Dest] {
			return nil, fmt.Errorf("group %q: destination %q already used by another group", group.Name, group.Dest)
		}
		seenNames[group.Name] = true
		seenDests[group.Dest] = true
		model.Groups = append(model.Groups, group)
	}

	if len(model.Groups) == 0 {
		return nil, fmt.Errorf("grid declares no groups")
	}
	return model, nil
}

func translateGroup(g *groupBlock, rootDir string) (*Group, error) {
	if g.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if g.Dest == "" || !filepath.IsLocal(g.Dest) {
		return nil, fmt.Errorf("dest must be a relative path inside the destination")
	}
	if g.Version < 1 {
		return nil, fmt.Errorf("version must be at least 1")
	}
	if g.Policy == nil {
		return nil, fmt.Errorf("policy block is required")
	}

	source := g.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(rootDir, source)
	}

	ext := g.Extension
	if ext == "" {
		ext = "webp"
	}

	policy, err := translatePolicy(g.Policy)
	if err != nil {
		return nil, err
	}
	if (policy.Kind == KindIllustration || policy.Kind == KindBanner) && g.FocalData == "" {
		return nil, fmt.Errorf("%s policy requires focal_data", policy.Kind)
	}
	if policy.Kind == KindBanner && !g.Nested {
		return nil, fmt.Errorf("banner policy requires nested sources")
	}

	return &Group{
		Name:      g.Name,
		Source:    source,
		Dest:      filepath.Clean(g.Dest),
		Version:   g.Version,
		Nested:    g.Nested,
		FocalData: g.FocalData,
		Extension: ext,
		Policy:    policy,
	}, nil
}

func translatePolicy(p *policyBlock) (Policy, error) {
	policy := Policy{
		Kind:            p.Kind,
		TallMinHeight:   p.TallMinHeight,
		Breakpoints:     p.Breakpoints,
		Density:         p.Density,
		MinDensityRatio: p.MinDensityRatio,
		Heights:         p.Heights,
	}

	var err error
	if policy.Rungs, err = translateRungs(p.Rungs); err != nil {
		return policy, err
	}
	if policy.TallRungs, err = translateRungs(p.TallRungs); err != nil {
		return policy, err
	}
	if p.Preview != nil {
		if p.Preview.Width < 1 || p.Preview.Height < 1 {
			return policy, fmt.Errorf("preview dimensions must be positive")
		}
		policy.Preview = &Preview{Width: p.Preview.Width, Height: p.Preview.Height}
	}

	switch p.Kind {
	case KindFit:
		if len(policy.Rungs) == 0 {
			return policy, fmt.Errorf("fit policy needs at least one rung")
		}
	case KindAspect:
		if len(policy.Rungs) == 0 || len(policy.TallRungs) == 0 {
			return policy, fmt.Errorf("aspect policy needs rung and tall_rung blocks")
		}
		if policy.TallMinHeight < 1 {
			return policy, fmt.Errorf("aspect policy needs tall_min_height")
		}
	case KindIllustration:
		if len(policy.Rungs) == 0 || policy.Preview == nil {
			return policy, fmt.Errorf("illustration policy needs rungs and a preview block")
		}
	case KindBanner:
		if len(policy.Breakpoints) == 0 {
			return policy, fmt.Errorf("banner policy needs breakpoints")
		}
		if !sort.IntsAreSorted(policy.Breakpoints) {
			return policy, fmt.Errorf("banner breakpoints must be ascending")
		}
		if policy.Density <= 0 || policy.MinDensityRatio <= 0 {
			return policy, fmt.Errorf("banner policy needs density and min_density_ratio")
		}
		if len(policy.Heights) == 0 {
			return policy, fmt.Errorf("banner policy needs a heights map")
		}
	default:
		return policy, fmt.Errorf("unknown policy kind %q", p.Kind)
	}
	return policy, nil
}

func translateRungs(blocks []*rungBlock) ([]Rung, error) {
	var rungs []Rung
	for _, b := range blocks {
		boxed := b.MaxWidth > 0 && b.MaxHeight > 0
		widthOnly := b.Width > 0
		if boxed == widthOnly {
			return nil, fmt.Errorf("rung needs either max_width+max_height or width")
		}
		rungs = append(rungs, Rung{
			Suffix:    b.Suffix,
			MaxWidth:  b.MaxWidth,
			MaxHeight: b.MaxHeight,
			Width:     b.Width,
		})
	}
	return rungs, nil
}
