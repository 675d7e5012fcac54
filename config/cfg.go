package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// RuleToggles enables or disables individual detectors. All default to
	// true - a disabled detector simply contributes no issues.
	RuleToggles struct {
		DeepSelectors         bool `yaml:"deep_selectors"`
		HighSpecificity       bool `yaml:"high_specificity"`
		ImportantAbuse        bool `yaml:"important_abuse"`
		DuplicateDeclarations bool `yaml:"duplicate_declarations"`
		LayoutRisk            bool `yaml:"layout_risk"`
		OverridePressure      bool `yaml:"override_pressure"`
		MissingLayers         bool `yaml:"missing_layers"`
	}

	// DuplicateBlocksConfig bounds the shared declaration block search.
	DuplicateBlocksConfig struct {
		MinProperties  int `yaml:"min_properties" validate:"min=2"`
		MinOccurrences int `yaml:"min_occurrences" validate:"min=2"`
	}

	// AnalysisConfig is the effective configuration consumed by the analysis
	// pipeline. Every field has a default, missing configuration is never an
	// error.
	AnalysisConfig struct {
		MaxSelectorDepth         int                   `yaml:"max_selector_depth" validate:"min=1"`
		MaxSpecificityScore      int                   `yaml:"max_specificity_score" validate:"min=1"`
		MaxImportantPerFile      int                   `yaml:"max_important_per_file" validate:"min=1"`
		MaxDuplicateDeclarations int                   `yaml:"max_duplicate_declarations" validate:"min=2"`
		MinOverrideRules         int                   `yaml:"min_override_rules" validate:"min=2"`
		MaxScore                 int                   `yaml:"max_score" validate:"min=1,max=100"`
		TopSelectors             int                   `yaml:"top_selectors" validate:"min=1"`
		DuplicateBlocks          DuplicateBlocksConfig `yaml:"duplicate_blocks"`
		Rules                    RuleToggles           `yaml:"rules"`
	}

	OutputConfig struct {
		Format string `yaml:"format" validate:"oneof=text json"`
	}

	// HistoryConfig enables recording run summaries into a local SQLite
	// database so scores remain comparable across versions.
	HistoryConfig struct {
		Enable bool   `yaml:"enable"`
		Path   string `yaml:"path,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required_if=Enable true,omitempty,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Analysis  AnalysisConfig `yaml:"analysis"`
		Output    OutputConfig   `yaml:"output"`
		History   HistoryConfig  `yaml:"history"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// DefaultAnalysis returns analysis defaults matching the embedded template.
// Kept in code too so the pipeline is usable without the template machinery
// (tests, library use).
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MaxSelectorDepth:         4,
		MaxSpecificityScore:      40,
		MaxImportantPerFile:      5,
		MaxDuplicateDeclarations: 3,
		MinOverrideRules:         5,
		MaxScore:                 100,
		TopSelectors:             10,
		DuplicateBlocks: DuplicateBlocksConfig{
			MinProperties:  3,
			MinOccurrences: 2,
		},
		Rules: RuleToggles{
			DeepSelectors:         true,
			HighSpecificity:       true,
			ImportantAbuse:        true,
			DuplicateDeclarations: true,
			LayoutRisk:            true,
			OverridePressure:      true,
			MissingLayers:         true,
		},
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
