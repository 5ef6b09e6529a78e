package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/cramerplot/internal/manifest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores defaults so Changed state does not leak between invocations.
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().VisitAll(func(fl *pflag.Flag) {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		})
	}
	cfgFile = ""
	debug = false
	cfg = nil
	plManifest = false
	plDelimiter = ""
	smOutputPath = ""
}

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd, plotCmd, summaryCmd, configShowCmd, configSetCmd, manifestShowCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeInput(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	p := filepath.Join(dir, "all_samples_results.csv")
	body := "sample,population,analysis_type,cramers_v\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCLI_PlotWritesImage(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home,
		"S1_a,Subcluster_Tumor_s1,full,0.05",
		"S1_a,Subcluster_Tumor_s2,full,0.10",
		"S2_b,Subcluster_Tumor_s1,full,0.20",
		"S2_b,Subcluster_Tumor_s2,residual,0.90",
	)
	out := filepath.Join(home, "full_cramers_v_plot.png")

	stdout, err := runCmd(t, "plot", "-i", in, "-o", out, "--dpi", "40", "--manifest")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Creating Cramér's V boxplot for subclusters...")
	assert.Contains(t, stdout, "✓ Saved to "+out)
	assert.Contains(t, stdout, "Completed.")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	m, err := manifest.Load(manifest.PathFor(out))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Kept)
	require.Len(t, m.Samples, 2)
	assert.Equal(t, "S2", m.Samples[0].Sample)
}

func TestCLI_RootRunsPlot(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "S1_a,Subcluster_Tumor_s1,full,0.3")
	out := filepath.Join(home, "fig.svg")

	stdout, err := runCmd(t, "-i", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Saved to "+out)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestCLI_PlotNothingToDraw(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "S1_a,Subcluster_Tumor_s1,residual,0.3")
	out := filepath.Join(home, "empty.png")

	stdout, err := runCmd(t, "plot", "-i", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No valid data to plot.")
	assert.Contains(t, stdout, "Completed.")
	assert.NoFileExists(t, out)
}

func TestCLI_PlotMissingInput(t *testing.T) {
	home := isolateHome(t)
	out := filepath.Join(home, "x.png")

	stdout, err := runCmd(t, "plot", "-i", filepath.Join(home, "nope.csv"), "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✗ Input file not found")
	assert.Contains(t, stdout, "No valid data to plot.")
	assert.NoFileExists(t, out)
}

func TestCLI_PlotRejectsResidualInput(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "S1_a,Subcluster_Tumor_s1,full,0.3")
	cfgPath := filepath.Join(home, "cramerplot.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("residual_input_path: merged_subclusters_results.csv\n"), 0o644))

	_, err := runCmd(t, "--config", cfgPath, "plot", "-i", in, "-o", filepath.Join(home, "x.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "residual_input_path")
}

func TestCLI_Summary(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home,
		"S1_a,Subcluster_Tumor_s1,full,0.05",
		"S2_b,Subcluster_Tumor_s1,full,0.20",
	)

	stdout, err := runCmd(t, "summary", "-i", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[SAMPLES BY MEDIAN]")
	assert.Less(t, strings.Index(stdout, "| S2 |"), strings.Index(stdout, "| S1 |"))

	md := filepath.Join(home, "summary.md")
	stdout, err = runCmd(t, "summary", "-i", in, "-o", md)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Wrote summary to")
	assert.FileExists(t, md)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)

	_, err := runCmd(t, "config", "set", "reference_lines", "0.1, 0.2")
	require.NoError(t, err)
	_, err = runCmd(t, "config", "set", "dpi", "120")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".cramerplot", "config.yaml"))

	stdout, err := runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reference_lines: 0.1,0.2")
	assert.Contains(t, stdout, "dpi: 120")

	_, err = runCmd(t, "config", "set", "colour", "red")
	assert.ErrorContains(t, err, "unknown key")
	_, err = runCmd(t, "config", "set", "dpi", "-3")
	assert.Error(t, err)
}

func TestCLI_ManifestShow(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home,
		"S1_a,Subcluster_Tumor_s1,full,0.05",
		"S2_b,Subcluster_Tumor_s2,full,0.20",
	)
	out := filepath.Join(home, "fig.svg")
	_, err := runCmd(t, "plot", "-i", in, "-o", out, "--manifest")
	require.NoError(t, err)

	stdout, err := runCmd(t, "manifest", "show", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Input: "+in)
	assert.Contains(t, stdout, "Rows: 2 (kept 2, dropped 0)")
	assert.Less(t, strings.Index(stdout, "1. S2"), strings.Index(stdout, "2. S1"))

	_, err = runCmd(t, "manifest", "show", manifest.PathFor(out))
	require.NoError(t, err)

	_, err = runCmd(t, "manifest", "show", filepath.Join(home, "other.png"))
	assert.ErrorContains(t, err, "read manifest")
}

func TestCLI_PlotWriteFailureReturnsError(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "S1_a,Subcluster_Tumor_s1,full,0.3")
	// a directory occupying the output path makes the final rename fail
	out := filepath.Join(home, "x.png")
	require.NoError(t, os.Mkdir(out, 0o755))

	stdout, err := runCmd(t, "plot", "-i", in, "-o", out, "--dpi", "20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render "+out)
	assert.NotContains(t, stdout, "✓ Saved")
	assert.NotContains(t, stdout, "Completed.")

	var buf bytes.Buffer
	printError(&buf, err)
	assert.True(t, strings.HasPrefix(buf.String(), "✗ Error: render "+out))
}

func TestCLI_PlotPopulationWithoutIndex(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home,
		"S1_a,Subcluster_Tumor_s1,full,0.3",
		"S1_a,Subcluster_Tumor_A,full,0.4",
	)
	out := filepath.Join(home, "fig.png")

	stdout, err := runCmd(t, "plot", "-i", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✗ Error loading or processing data")
	assert.Contains(t, stdout, "No valid data to plot.")
	assert.NoFileExists(t, out)
}

func TestCLI_MissingConfigFileFails(t *testing.T) {
	home := isolateHome(t)
	_, err := runCmd(t, "--config", filepath.Join(home, "absent.yaml"), "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
