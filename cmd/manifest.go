package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/cramerplot/internal/manifest"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect run manifests written by plot --manifest",
}

var manifestShowCmd = &cobra.Command{
	Use:   "show <image-or-manifest>",
	Short: "Print the run recorded for an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := args[0]
		if !isManifestPath(p) {
			p = manifest.PathFor(p)
		}
		m, err := manifest.Load(p)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s (%s)\n", m.RunID, m.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
		fmt.Fprintf(out, "Input: %s\n", m.Input)
		fmt.Fprintf(out, "Output: %s\n", m.Output)
		fmt.Fprintf(out, "Filter: analysis_type=%s population_prefix=%s\n", m.Filter.AnalysisType, m.Filter.PopulationPrefix)
		fmt.Fprintf(out, "Rows: %d (kept %d, dropped %d)\n", m.Rows, m.Kept, m.Dropped)
		fmt.Fprintln(out, "Samples by median:")
		for i, s := range m.Samples {
			fmt.Fprintf(out, "  %d. %s  n=%d  median=%.4g\n", i+1, s.Sample, s.N, s.Median)
		}
		fmt.Fprintf(out, "Subclusters: %d\n", len(m.Subclusters))
		for _, w := range m.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestShowCmd)
}

func isManifestPath(p string) bool {
	return strings.HasSuffix(p, ".manifest.yaml")
}
