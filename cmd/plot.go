package cmd

import (
	"errors"
	"fmt"
	"io"

	cfgpkg "github.com/KaramelBytes/cramerplot/internal/config"
	"github.com/KaramelBytes/cramerplot/internal/dataset"
	"github.com/KaramelBytes/cramerplot/internal/manifest"
	"github.com/KaramelBytes/cramerplot/internal/render"
	"github.com/KaramelBytes/cramerplot/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	plInput      string
	plOutput     string
	plAnalysis   string
	plPrefix     string
	plSheetName  string
	plSheetIndex int
	plDelimiter  string
	plSeed       uint64
	plDPI        int
	plManifest   bool
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the Cramér's V boxplot for tumor subclusters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlot(cmd)
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addPlotFlags(plotCmd)
}

func addPlotFlags(c *cobra.Command) {
	addInputFlags(c)
	c.Flags().StringVarP(&plOutput, "output", "o", "", "image path; format from extension: .png|.jpg|.tiff|.svg|.pdf (overrides config)")
	c.Flags().Uint64Var(&plSeed, "seed", 0, "seed for point jitter (overrides config)")
	c.Flags().IntVar(&plDPI, "dpi", 0, "raster resolution (overrides config)")
	c.Flags().BoolVar(&plManifest, "manifest", false, "also write <output>.manifest.yaml describing the run")
}

func addInputFlags(c *cobra.Command) {
	c.Flags().StringVarP(&plInput, "input", "i", "", "input CSV/TSV/XLSX (overrides config)")
	c.Flags().StringVar(&plAnalysis, "analysis-type", "", "keep rows with this analysis_type (overrides config)")
	c.Flags().StringVar(&plPrefix, "population-prefix", "", "keep rows whose population has this prefix (overrides config)")
	c.Flags().StringVar(&plSheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&plSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().StringVar(&plDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
}

// effectiveConfig applies changed input flags on top of the loaded configuration.
func effectiveConfig(cmd *cobra.Command) (*cfgpkg.Global, error) {
	if cfg == nil {
		if err := loadConfig(); err != nil {
			return nil, err
		}
	}
	c := *cfg
	c.ReferenceLines = append([]float64(nil), cfg.ReferenceLines...)
	f := cmd.Flags()
	if f.Changed("input") {
		c.InputPath = plInput
	}
	if f.Changed("analysis-type") {
		c.AnalysisType = plAnalysis
	}
	if f.Changed("population-prefix") {
		c.PopulationPrefix = plPrefix
	}
	if f.Changed("sheet-name") {
		c.SheetName = plSheetName
	}
	if f.Changed("sheet-index") && plSheetIndex > 0 {
		c.SheetIndex = plSheetIndex
	}
	return &c, nil
}

// applyImageFlags applies the flags only plot commands carry.
func applyImageFlags(cmd *cobra.Command, c *cfgpkg.Global) {
	f := cmd.Flags()
	if f.Changed("output") {
		c.OutputPath = plOutput
	}
	if f.Changed("seed") {
		c.Seed = plSeed
	}
	if f.Changed("dpi") {
		c.DPI = plDPI
	}
}

func datasetOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.AnalysisType = c.AnalysisType
	opt.PopulationPrefix = c.PopulationPrefix
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	switch plDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", plDelimiter)
	}
	return opt, nil
}

func styleFromConfig(c *cfgpkg.Global) render.Style {
	s := render.DefaultStyle()
	s.ReferenceLines = c.ReferenceLines
	s.WidthIn = c.WidthIn
	s.HeightIn = c.HeightIn
	s.DPI = c.DPI
	s.BoxWidth = c.BoxWidth
	s.Jitter = c.Jitter
	s.Seed = c.Seed
	s.PointRadiusPt = c.PointRadiusPt
	s.PointAlpha = c.PointAlpha
	s.LabelFontPt = c.LabelFontPt
	s.TickFontPt = c.TickFontPt
	s.LegendFontPt = c.LegendFontPt
	s.LegendTitleFontPt = c.LegendTitleFontPt
	return s
}

func runPlot(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	c, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	applyImageFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}
	opt, err := datasetOptions(c)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Creating Cramér's V boxplot for subclusters...")
	tbl, err := dataset.Prepare(c.InputPath, opt)
	if err != nil {
		reportPrepareError(out, c.InputPath, err)
		fmt.Fprintln(out, "No valid data to plot.")
		fmt.Fprintln(out, "Completed.")
		return nil
	}
	logger.Debug("table prepared",
		zap.String("input", c.InputPath),
		zap.Int("rows", tbl.Rows),
		zap.Int("kept", tbl.Kept),
		zap.Int("dropped", tbl.Dropped))
	for _, w := range tbl.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", w)
	}

	fmt.Fprintln(out, "\nCreating Cramér's V plot...")
	if utils.FileExists(c.OutputPath) {
		logger.Info("replacing existing output", zap.String("output", c.OutputPath))
	}
	fig, err := render.WriteFile(tbl, styleFromConfig(c), c.OutputPath)
	if err != nil {
		return fmt.Errorf("render %s: %w", c.OutputPath, err)
	}
	logger.Debug("figure written",
		zap.String("output", c.OutputPath),
		zap.Strings("order", dataset.Names(fig.Order)),
		zap.Int("subclusters", len(fig.Subclusters)))
	fmt.Fprintf(out, "✓ Saved to %s\n", c.OutputPath)

	if plManifest {
		m := manifest.New(c.InputPath, c.OutputPath, opt, tbl, fig.Order)
		p := manifest.PathFor(c.OutputPath)
		if err := m.Save(p); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote manifest %s (run %s)\n", p, m.RunID)
	}
	fmt.Fprintln(out, "Completed.")
	return nil
}

// reportPrepareError prints why no table was produced.
func reportPrepareError(out io.Writer, input string, err error) {
	var schemaErr *dataset.SchemaError
	var parseErr *dataset.ParseError
	switch {
	case errors.Is(err, dataset.ErrFileNotFound):
		logger.Error("input file not found", zap.String("input", input), zap.Error(err))
		fmt.Fprintf(out, "✗ Input file not found: %s\n", input)
	case errors.As(err, &schemaErr):
		logger.Error("input schema mismatch", zap.String("input", input), zap.Strings("missing", schemaErr.Missing))
		fmt.Fprintf(out, "✗ Error loading or processing data: %v\n", err)
	case errors.Is(err, dataset.ErrEmptyAfterFilter):
		logger.Info("no rows matched the filter", zap.String("input", input), zap.Error(err))
		fmt.Fprintf(out, "⚠ %v\n", err)
	case errors.As(err, &parseErr):
		logger.Error("unparseable value", zap.String("input", input), zap.Int("row", parseErr.Row), zap.String("column", parseErr.Column))
		fmt.Fprintf(out, "✗ Error loading or processing data: %v\n", err)
	default:
		logger.Error("load failed", zap.String("input", input), zap.Error(err))
		fmt.Fprintf(out, "✗ Error loading or processing data: %v\n", err)
	}
}
