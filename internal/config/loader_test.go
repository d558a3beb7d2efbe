package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadGrid(t *testing.T, hclSrc string) (*Model, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hclSrc), 0o644))
	return Load(context.Background(), path)
}

const validGrid = `
copy {
  source = "${root}/index.html"
  to     = "index.html"
}

group "buddhism" {
  source  = "${root}/imgs/buddhism"
  dest    = "buddhism"
  version = 1

  policy "aspect" {
    tall_min_height = 1536

    rung {
      max_width  = 1280
      max_height = 1280
    }
    rung {
      suffix     = "-1x"
      max_width  = 640
      max_height = 640
    }

    tall_rung {
      max_width  = 1920
      max_height = 1920
    }
    tall_rung {
      suffix     = "-2x"
      max_width  = 1280
      max_height = 1280
    }
    tall_rung {
      suffix     = "-1x"
      max_width  = 640
      max_height = 640
    }
  }
}

group "banners" {
  source     = "banners"
  dest       = "banners"
  version    = 2
  nested     = true
  focal_data = "image_metadata.json"

  policy "banner" {
    breakpoints       = [400, 594, 881, 1308]
    density           = 1.5
    min_density_ratio = 1.75

    heights = {
      courses = 680
      headers = 240
    }
  }
}
`

func TestLoad_ValidGrid(t *testing.T) {
	t.Parallel()

	model, err := loadGrid(t, validGrid)
	require.NoError(t, err)

	require.Len(t, model.Copies, 1)
	assert.Equal(t, "index.html", model.Copies[0].To)
	assert.True(t, filepath.IsAbs(model.Copies[0].Source), "root interpolation must yield an absolute path")

	require.Len(t, model.Groups, 2)

	buddhism := model.Groups[0]
	assert.Equal(t, "buddhism", buddhism.Name)
	assert.Equal(t, 1, buddhism.Version)
	assert.Equal(t, "webp", buddhism.Extension)
	assert.Equal(t, KindAspect, buddhism.Policy.Kind)
	assert.Len(t, buddhism.Policy.Rungs, 2)
	assert.Len(t, buddhism.Policy.TallRungs, 3)
	assert.Equal(t, 1536, buddhism.Policy.TallMinHeight)
	assert.Equal(t, "-1x", buddhism.Policy.Rungs[1].Suffix)

	banners := model.Groups[1]
	assert.True(t, banners.Nested)
	assert.True(t, filepath.IsAbs(banners.Source), "relative source must be resolved against the grid directory")
	assert.Equal(t, []int{400, 594, 881, 1308}, banners.Policy.Breakpoints)
	assert.InDelta(t, 1.5, banners.Policy.Density, 0.0001)
	assert.Equal(t, map[string]int{"courses": 680, "headers": 240}, banners.Policy.Heights)
}

func TestLoad_RejectsUnknownPolicyKind(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `
group "g" {
  source  = "imgs"
  dest    = "g"
  version = 1
  policy "mystery" {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy kind")
}

func TestLoad_RejectsVersionZero(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `
group "g" {
  source  = "imgs"
  dest    = "g"
  version = 0
  policy "fit" {
    rung {
      max_width  = 100
      max_height = 100
    }
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestLoad_RejectsDuplicateDest(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `
group "a" {
  source  = "imgs/a"
  dest    = "shared"
  version = 1
  policy "fit" {
    rung {
      max_width  = 100
      max_height = 100
    }
  }
}
group "b" {
  source  = "imgs/b"
  dest    = "shared"
  version = 1
  policy "fit" {
    rung {
      max_width  = 100
      max_height = 100
    }
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used")
}

func TestLoad_RejectsRungWithBothForms(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `
group "g" {
  source  = "imgs"
  dest    = "g"
  version = 1
  policy "fit" {
    rung {
      width      = 533
      max_width  = 100
      max_height = 100
    }
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rung needs either")
}

func TestLoad_BannerRequiresFocalData(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `
group "banners" {
  source  = "banners"
  dest    = "banners"
  version = 1
  nested  = true
  policy "banner" {
    breakpoints       = [400]
    density           = 1.5
    min_density_ratio = 1.75
    heights = {
      headers = 240
    }
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "focal_data")
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}

func TestLoad_SyntaxErrorFails(t *testing.T) {
	t.Parallel()

	_, err := loadGrid(t, `group "g" { source =`)
	assert.Error(t, err)
}
