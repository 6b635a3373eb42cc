package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"marketdata-collector/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed pipelines.yaml
var defaultPipelines []byte

const (
	KindMarket = "market"
	KindMacro  = "macro"
)

// PipelinesFile is the declarative table of what every pipeline collects.
type PipelinesFile struct {
	Pipelines []PipelineConfig `yaml:"pipelines" validate:"required,min=1,unique=Name,dive"`
}

type PipelineConfig struct {
	Name     string            `yaml:"name" validate:"required,alphanum"`
	Kind     string            `yaml:"kind" validate:"required,oneof=market macro"`
	Snapshot string            `yaml:"snapshot"`
	Window   WindowConfig      `yaml:"window"`
	Aliases  map[string]string `yaml:"aliases"`
	Series   []SeriesConfig    `yaml:"series" validate:"required,min=1,dive"`
}

type WindowConfig struct {
	Limit        int `yaml:"limit" validate:"gte=0"`
	LookbackDays int `yaml:"lookback_days" validate:"gte=0"`
}

type SeriesConfig struct {
	Code   string `yaml:"code" validate:"required"`
	Symbol string `yaml:"symbol"`
	Source string `yaml:"source" validate:"required"`
	Unit   string `yaml:"unit"`
}

// LoadPipelines reads path, or the embedded default table when path is "".
func LoadPipelines(path string) (PipelinesFile, error) {
	data := defaultPipelines
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return PipelinesFile{}, fmt.Errorf("read pipelines file: %w", err)
		}
		data = b
	}
	return ParsePipelines(data)
}

func ParsePipelines(data []byte) (PipelinesFile, error) {
	var pf PipelinesFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &pf); err != nil {
		return PipelinesFile{}, fmt.Errorf("parse pipelines yaml: %w", err)
	}
	pf.applyDefaults()
	if err := validator.New().Struct(pf); err != nil {
		return PipelinesFile{}, fmt.Errorf("validate pipelines: %w", err)
	}
	return pf, nil
}

func (pf *PipelinesFile) applyDefaults() {
	for i := range pf.Pipelines {
		if pf.Pipelines[i].Window.Limit == 0 {
			pf.Pipelines[i].Window.Limit = domain.DefaultWindowLimit
		}
	}
}

// Lookup returns the pipeline called name.
func (pf PipelinesFile) Lookup(name string) (PipelineConfig, bool) {
	for _, p := range pf.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return PipelineConfig{}, false
}

func (p PipelineConfig) DomainWindow() domain.Window {
	return domain.Window{Limit: p.Window.Limit, LookbackDays: p.Window.LookbackDays}
}

func (p PipelineConfig) DomainSeries() []domain.Series {
	out := make([]domain.Series, 0, len(p.Series))
	for _, s := range p.Series {
		out = append(out, domain.Series{Code: s.Code, Symbol: s.Symbol, Source: s.Source, Unit: s.Unit})
	}
	return out
}

func (p PipelineConfig) AliasTable() domain.AliasTable { return domain.AliasTable(p.Aliases) }

// SnapshotPath places the pipeline snapshot under dir; "" disables it.
func (p PipelineConfig) SnapshotPath(dir string) string {
	if p.Snapshot == "" {
		return ""
	}
	if filepath.IsAbs(p.Snapshot) {
		return p.Snapshot
	}
	return filepath.Join(dir, p.Snapshot)
}

// Sources lists the distinct sources the pipeline uses, in order.
func (p PipelineConfig) Sources() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range p.Series {
		if !seen[s.Source] {
			seen[s.Source] = true
			out = append(out, s.Source)
		}
	}
	return out
}
