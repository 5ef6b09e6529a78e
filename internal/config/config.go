package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	InputPath         string `mapstructure:"input_path" yaml:"input_path"`
	ResidualInputPath string `mapstructure:"residual_input_path" yaml:"residual_input_path,omitempty"`
	OutputPath        string `mapstructure:"output_path" yaml:"output_path"`

	// Row filter and label derivation
	AnalysisType     string `mapstructure:"analysis_type" yaml:"analysis_type"`
	PopulationPrefix string `mapstructure:"population_prefix" yaml:"population_prefix"`
	SheetName        string `mapstructure:"sheet_name" yaml:"sheet_name,omitempty"`
	SheetIndex       int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Chart
	ReferenceLines    []float64 `mapstructure:"reference_lines" yaml:"reference_lines"`
	Jitter            float64   `mapstructure:"jitter" yaml:"jitter"`
	Seed              uint64    `mapstructure:"seed" yaml:"seed"`
	DPI               int       `mapstructure:"dpi" yaml:"dpi"`
	WidthIn           float64   `mapstructure:"width_in" yaml:"width_in"`
	HeightIn          float64   `mapstructure:"height_in" yaml:"height_in"`
	BoxWidth          float64   `mapstructure:"box_width" yaml:"box_width"`
	PointRadiusPt     float64   `mapstructure:"point_radius_pt" yaml:"point_radius_pt"`
	PointAlpha        float64   `mapstructure:"point_alpha" yaml:"point_alpha"`
	LabelFontPt       float64   `mapstructure:"label_font_pt" yaml:"label_font_pt"`
	TickFontPt        float64   `mapstructure:"tick_font_pt" yaml:"tick_font_pt"`
	LegendFontPt      float64   `mapstructure:"legend_font_pt" yaml:"legend_font_pt"`
	LegendTitleFontPt float64   `mapstructure:"legend_title_font_pt" yaml:"legend_title_font_pt"`
}

// Output formats the renderer can encode, keyed by lower-case file extension.
var SupportedOutputExts = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".svg", ".pdf"}

// ErrUnusedInput reports a configured input that no command reads.
var ErrUnusedInput = errors.New("configured input is never read")

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the settings a plot run depends on.
func (c *Global) Validate() error {
	var problems []string
	var wrapped error
	if strings.TrimSpace(c.InputPath) == "" {
		problems = append(problems, "input_path is empty")
	}
	if strings.TrimSpace(c.ResidualInputPath) != "" {
		problems = append(problems, fmt.Sprintf("residual_input_path %q is set but nothing reads it; remove it", c.ResidualInputPath))
		wrapped = ErrUnusedInput
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		problems = append(problems, "output_path is empty")
	} else {
		ext := strings.ToLower(filepath.Ext(c.OutputPath))
		ok := false
		for _, e := range SupportedOutputExts {
			if e == ext {
				ok = true
				break
			}
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("output_path extension %q not supported (use %s)", ext, strings.Join(SupportedOutputExts, ", ")))
		}
		if dir := filepath.Dir(c.OutputPath); dir != "." {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				problems = append(problems, fmt.Sprintf("output directory %s does not exist", dir))
			}
		}
	}
	if c.AnalysisType == "" {
		problems = append(problems, "analysis_type is empty")
	}
	if c.PopulationPrefix == "" {
		problems = append(problems, "population_prefix is empty")
	}
	if c.DPI <= 0 {
		problems = append(problems, fmt.Sprintf("dpi must be positive, got %d", c.DPI))
	}
	if c.WidthIn <= 0 || c.HeightIn <= 0 {
		problems = append(problems, fmt.Sprintf("canvas size must be positive, got %gx%g in", c.WidthIn, c.HeightIn))
	}
	if c.Jitter < 0 || c.Jitter >= 0.5 {
		problems = append(problems, fmt.Sprintf("jitter must be in [0, 0.5), got %g", c.Jitter))
	}
	if c.BoxWidth <= 0 || c.BoxWidth > 1 {
		problems = append(problems, fmt.Sprintf("box_width must be in (0, 1], got %g", c.BoxWidth))
	}
	if c.PointAlpha < 0 || c.PointAlpha > 1 {
		problems = append(problems, fmt.Sprintf("point_alpha must be in [0, 1], got %g", c.PointAlpha))
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems, Err: wrapped}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cramerplot/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults. An explicit cfgFile
// must exist.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
// Command flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CRAMERPLOT")
	v.AutomaticEnv()

	v.SetDefault("input_path", "all_samples_results.csv")
	v.SetDefault("residual_input_path", "")
	v.SetDefault("output_path", "full_cramers_v_plot.png")
	v.SetDefault("analysis_type", "full")
	v.SetDefault("population_prefix", "Subcluster_Tumor_")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("reference_lines", []float64{0.05, 0.15})
	v.SetDefault("jitter", 0.2)
	v.SetDefault("seed", 1)
	// Slide-friendly 16:9 canvas
	v.SetDefault("dpi", 300)
	v.SetDefault("width_in", 16.0)
	v.SetDefault("height_in", 9.0)
	v.SetDefault("box_width", 0.6)
	v.SetDefault("point_radius_pt", 5.0)
	v.SetDefault("point_alpha", 0.9)
	v.SetDefault("label_font_pt", 24.0)
	v.SetDefault("tick_font_pt", 18.0)
	v.SetDefault("legend_font_pt", 18.0)
	v.SetDefault("legend_title_font_pt", 20.0)

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// Only the default location may be absent.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cramerplot"), nil
}
