package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "stmtdash.yaml"

// Environment overrides, applied after the file.
const (
	EnvTopN      = "STMTDASH_TOP_N"
	EnvLogLevel  = "STMTDASH_LOG_LEVEL"
	EnvLogFormat = "STMTDASH_LOG_FORMAT"
	EnvCurrency  = "STMTDASH_CURRENCY"
)

// Config represents the top-level stmtdash.yaml configuration.
type Config struct {
	Statement StatementConfig `yaml:"statement"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Output    OutputConfig    `yaml:"output"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// StatementConfig describes the bank export layout.
type StatementConfig struct {
	HeaderRow    int    `yaml:"header_row"`    // zero-based
	PrimarySheet string `yaml:"primary_sheet"` // "" means the first sheet
	SavingsSheet string `yaml:"savings_sheet"`
}

// AnalysisConfig tunes the aggregation engine.
type AnalysisConfig struct {
	TopN int `yaml:"top_n"`
}

// OutputConfig names the sheets written back to the workbook.
type OutputConfig struct {
	CleanedSheet  string `yaml:"cleaned_sheet"`
	AnalysisSheet string `yaml:"analysis_sheet"`
	SavingsSheet  string `yaml:"savings_sheet"`
}

// DashboardConfig controls HTML rendering.
type DashboardConfig struct {
	Currency string `yaml:"currency"` // ISO 4217 code
	Title    string `yaml:"title"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a stmtdash.yaml file from disk. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config matching the bank's standard export.
func Default() *Config {
	return &Config{
		Statement: StatementConfig{
			HeaderRow:    6,
			SavingsSheet: "Savings Account Transactions",
		},
		Analysis: AnalysisConfig{
			TopN: 10,
		},
		Output: OutputConfig{
			CleanedSheet:  "Cleaned_Data",
			AnalysisSheet: "Analysis",
			SavingsSheet:  "Savings_Analysis",
		},
		Dashboard: DashboardConfig{
			Currency: "NGN",
			Title:    "Financial Dashboard",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadDotenv reads .env from the working directory if present.
func LoadDotenv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides cfg with any STMTDASH_* variables lookup finds.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTopN); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTopN, err)
		}
		cfg.Analysis.TopN = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvCurrency); ok && v != "" {
		cfg.Dashboard.Currency = strings.ToUpper(v)
	}
	return nil
}

// Validate checks values the pipeline depends on.
func (c *Config) Validate() error {
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("analysis.top_n must be positive, got %d", c.Analysis.TopN)
	}
	if c.Statement.HeaderRow < 0 {
		return fmt.Errorf("statement.header_row must not be negative, got %d", c.Statement.HeaderRow)
	}
	sheets := []struct{ key, name string }{
		{"output.cleaned_sheet", c.Output.CleanedSheet},
		{"output.analysis_sheet", c.Output.AnalysisSheet},
		{"output.savings_sheet", c.Output.SavingsSheet},
	}
	seen := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		if strings.TrimSpace(s.name) == "" {
			return fmt.Errorf("%s must not be empty", s.key)
		}
		if seen[s.name] {
			return fmt.Errorf("%s duplicates another output sheet name %q", s.key, s.name)
		}
		seen[s.name] = true
	}
	if c.Dashboard.Currency == "" {
		return errors.New("dashboard.currency must not be empty")
	}
	return nil
}
