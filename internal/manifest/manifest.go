package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/cramerplot/internal/dataset"
	"github.com/KaramelBytes/cramerplot/internal/utils"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records what a plot run read, kept and drew.
type Manifest struct {
	RunID       string        `yaml:"run_id"`
	CreatedAt   time.Time     `yaml:"created_at"`
	Input       string        `yaml:"input"`
	Output      string        `yaml:"output"`
	Filter      Filter        `yaml:"filter"`
	Rows        int           `yaml:"rows"`
	Kept        int           `yaml:"kept"`
	Dropped     int           `yaml:"dropped,omitempty"`
	Samples     []SampleEntry `yaml:"samples"`
	Subclusters []string      `yaml:"subclusters"`
	Warnings    []string      `yaml:"warnings,omitempty"`
}

type Filter struct {
	AnalysisType     string `yaml:"analysis_type"`
	PopulationPrefix string `yaml:"population_prefix"`
}

type SampleEntry struct {
	Sample string  `yaml:"sample"`
	N      int     `yaml:"n"`
	Median float64 `yaml:"median"`
}

// New builds a manifest for a rendered table. order is the drawn sample order.
func New(input, output string, opt dataset.Options, t *dataset.Table, order []dataset.SampleGroup) *Manifest {
	m := &Manifest{
		RunID:       uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Input:       input,
		Output:      output,
		Filter:      Filter{AnalysisType: opt.AnalysisType, PopulationPrefix: opt.PopulationPrefix},
		Rows:        t.Rows,
		Kept:        t.Kept,
		Dropped:     t.Dropped,
		Subclusters: dataset.Subclusters(t.Records),
		Warnings:    t.Warnings,
	}
	for _, g := range order {
		m.Samples = append(m.Samples, SampleEntry{Sample: g.Sample, N: len(g.Values), Median: g.Median})
	}
	return m
}

func PathFor(output string) string {
	return output + ".manifest.yaml"
}

// Save writes the manifest as YAML using an atomic rename.
func (m *Manifest) Save(path string) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if strings.TrimSpace(m.RunID) == "" {
		return nil, fmt.Errorf("parse manifest: missing run_id")
	}
	return &m, nil
}
