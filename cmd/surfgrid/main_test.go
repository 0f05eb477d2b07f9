package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridware/surfgrid/surface"
)

func TestParseRegion(t *testing.T) {
	w, e, s, n, err := parseRegion("0/10/-5/5")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, -5, 5}, []float64{w, e, s, n})

	_, _, _, _, err = parseRegion("")
	assert.Error(t, err)
	_, _, _, _, err = parseRegion("0/10/5")
	assert.Error(t, err)
	_, _, _, _, err = parseRegion("10/0/-5/5")
	assert.Error(t, err, "east before west")
}

func TestParseInc(t *testing.T) {
	dx, dy, err := parseInc("0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, dx)
	assert.Equal(t, 0.5, dy)

	dx, dy, err = parseInc("1/2")
	require.NoError(t, err)
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, 2.0, dy)

	_, _, err = parseInc("-1")
	assert.Error(t, err)
	_, _, err = parseInc("")
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	lim, err := parseLimit("d")
	require.NoError(t, err)
	assert.Equal(t, surface.LimitData, lim.Mode)

	lim, err = parseLimit("-3.5")
	require.NoError(t, err)
	assert.Equal(t, surface.LimitValue, lim.Mode)
	assert.Equal(t, -3.5, lim.Value)

	_, err = parseLimit("no-such-file.nc")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surfgrid.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"region = \"0/10/0/10\"\ninc = \"1\"\ntension = 0.35\nverbose = true\n"), 0o644))

	var o options
	o.MaxIterations = surface.DefaultMaxIterations
	o.Relax = surface.DefaultOverRelaxation
	cmd := rootCmd
	require.NoError(t, loadConfig(path, cmd.Flags(), &o))
	assert.Equal(t, "0/10/0/10", o.Region)
	assert.Equal(t, "1", o.Inc)
	assert.Equal(t, 0.35, o.Tension)
	assert.True(t, o.Verbose)
	assert.Equal(t, surface.DefaultMaxIterations, o.MaxIterations)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("no_such_key = 1\n"), 0o644))
	assert.Error(t, loadConfig(bad, cmd.Flags(), &o))
}
