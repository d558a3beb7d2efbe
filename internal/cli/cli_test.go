package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "big-imgs.hcl", cfg.GridPath)
	assert.Equal(t, "../site", cfg.DestPath)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.False(t, cfg.RemoveOld)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	args := []string{
		"-grid", "grids/site.hcl",
		"-dest", "/srv/site",
		"-cores", "4",
		"-remove-old",
		"-dry-run",
		"-verbose",
		"-magick", "convert",
		"-log-format", "json",
		"-log-level", "debug",
	}
	cfg, shouldExit, err := Parse(args, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "grids/site.hcl", cfg.GridPath)
	assert.Equal(t, "/srv/site", cfg.DestPath)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.RemoveOld)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "convert", cfg.MagickBin)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_Shorthands(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-d", "out", "-c", "2", "-r", "-g", "my.hcl"}, out)
	require.NoError(t, err)

	assert.Equal(t, "my.hcl", cfg.GridPath)
	assert.Equal(t, "out", cfg.DestPath)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.RemoveOld)
}

func TestParse_PositionalGridPath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"custom.hcl"}, out)
	require.NoError(t, err)
	assert.Equal(t, "custom.hcl", cfg.GridPath)
}

func TestParse_HelpFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-log-format", "xml"}, out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-log-level", "loud"}, out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_UnknownFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"--bogus"}, out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
