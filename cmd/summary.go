package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/cramerplot/internal/dataset"
	"github.com/KaramelBytes/cramerplot/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var smOutputPath string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-sample Cramér's V statistics in plot order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		if strings.TrimSpace(c.InputPath) == "" {
			return fmt.Errorf("input_path is empty")
		}
		opt, err := datasetOptions(c)
		if err != nil {
			return err
		}
		tbl, err := dataset.Prepare(c.InputPath, opt)
		if err != nil {
			return err
		}
		logger.Debug("table prepared", zap.String("input", c.InputPath), zap.Int("kept", tbl.Kept))
		md := tbl.Markdown()
		if smOutputPath != "" {
			if err := utils.SafeWriteFile(smOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", smOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addInputFlags(summaryCmd)
	summaryCmd.Flags().StringVarP(&smOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
}
