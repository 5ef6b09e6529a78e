package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "full_cramers_v_plot.png", c.OutputPath)
	assert.Equal(t, "full", c.AnalysisType)
	assert.Equal(t, "Subcluster_Tumor_", c.PopulationPrefix)
	assert.Equal(t, []float64{0.05, 0.15}, c.ReferenceLines)
	assert.Equal(t, 300, c.DPI)
	assert.Equal(t, 16.0, c.WidthIn)
	assert.Equal(t, 9.0, c.HeightIn)
	assert.Empty(t, c.ResidualInputPath)
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CRAMERPLOT_DPI", "150")
	p := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(p, []byte("input_path: data/scores.csv\nanalysis_type: residual\ndpi: 72\n"), 0o644))

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "data/scores.csv", c.InputPath)
	assert.Equal(t, "residual", c.AnalysisType)
	assert.Equal(t, 150, c.DPI, "env overrides file")
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	_, err := Load(filepath.Join(home, "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "broken.yaml")
	require.NoError(t, os.WriteFile(p, []byte("dpi: [unclosed\n"), 0o644))
	_, err := Load(p)
	assert.ErrorContains(t, err, "read config")
}

func TestSaveThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	c.InputPath = "elsewhere.csv"
	c.ReferenceLines = []float64{0.1}
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".cramerplot", "config.yaml"))
	require.NoError(t, err)

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.csv", got.InputPath)
	assert.Equal(t, []float64{0.1}, got.ReferenceLines)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	bad := *c
	bad.ResidualInputPath = "/work/residual/merged_subclusters_results.csv"
	err = bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnusedInput)

	bad = *c
	bad.OutputPath = "plot.gif"
	bad.Jitter = 0.7
	err = bad.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.NotErrorIs(t, err, ErrUnusedInput)

	bad = *c
	bad.OutputPath = filepath.Join(t.TempDir(), "missing", "plot.png")
	assert.ErrorContains(t, bad.Validate(), "does not exist")
}
