package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/cramerplot/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cramerplot configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		if cfg.ResidualInputPath != "" {
			fmt.Fprintf(out, "residual_input_path: %s (unused, rejected by plot)\n", cfg.ResidualInputPath)
		}
		fmt.Fprintf(out, "output_path: %s\n", cfg.OutputPath)
		fmt.Fprintf(out, "analysis_type: %s\n", cfg.AnalysisType)
		fmt.Fprintf(out, "population_prefix: %s\n", cfg.PopulationPrefix)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		fmt.Fprintf(out, "reference_lines: %s\n", joinFloats(cfg.ReferenceLines))
		fmt.Fprintf(out, "jitter: %.3f\n", cfg.Jitter)
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "dpi: %d\n", cfg.DPI)
		fmt.Fprintf(out, "canvas: %gx%g in\n", cfg.WidthIn, cfg.HeightIn)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "⚠ %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "input_path":
			cfg.InputPath = val
		case "residual_input_path":
			cfg.ResidualInputPath = val
		case "output_path":
			cfg.OutputPath = val
		case "analysis_type":
			cfg.AnalysisType = val
		case "population_prefix":
			cfg.PopulationPrefix = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for sheet_index: %v", val)
			}
			cfg.SheetIndex = i
		case "reference_lines":
			var lines []float64
			for _, part := range strings.Split(val, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				f, err := strconv.ParseFloat(part, 64)
				if err != nil {
					return fmt.Errorf("invalid float in reference_lines: %v", part)
				}
				lines = append(lines, f)
			}
			cfg.ReferenceLines = lines
		case "jitter", "width_in", "height_in", "box_width", "point_radius_pt", "point_alpha",
			"label_font_pt", "tick_font_pt", "legend_font_pt", "legend_title_font_pt":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			setFloat(cfg, key, f)
		case "seed":
			u, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid uint for seed: %w", err)
			}
			cfg.Seed = u
		case "dpi":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for dpi: %v", val)
			}
			cfg.DPI = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setFloat(c *cfgpkg.Global, key string, f float64) {
	switch key {
	case "jitter":
		c.Jitter = f
	case "width_in":
		c.WidthIn = f
	case "height_in":
		c.HeightIn = f
	case "box_width":
		c.BoxWidth = f
	case "point_radius_pt":
		c.PointRadiusPt = f
	case "point_alpha":
		c.PointAlpha = f
	case "label_font_pt":
		c.LabelFontPt = f
	case "tick_font_pt":
		c.TickFontPt = f
	case "legend_font_pt":
		c.LegendFontPt = f
	case "legend_title_font_pt":
		c.LegendTitleFontPt = f
	}
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
