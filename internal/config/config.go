package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level budgeteer.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Git    GitConfig    `yaml:"git"`
	Import ImportConfig `yaml:"import"`
}

// LedgerConfig locates the ledger data directory.
type LedgerConfig struct {
	Dir string `yaml:"dir"`
}

// GitConfig controls git integration for the ledger directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// ImportConfig holds ingestion and staging-lifecycle settings.
type ImportConfig struct {
	UndoWindowMinutes    int     `yaml:"undo_window_minutes"`
	HistoryMaxEntries    int     `yaml:"history_max_entries"`
	HistoryMaxAgeDays    int     `yaml:"history_max_age_days"`
	StagedAutoExpireDays int     `yaml:"staged_auto_expire_days"`
	MinOccurrences       int     `yaml:"min_occurrences"`
	DominanceRatio       float64 `yaml:"dominance_ratio"`
	StreamLineThreshold  int     `yaml:"streaming_line_threshold"`
	StreamByteThreshold  int     `yaml:"streaming_byte_threshold"`
}

// Load reads a budgeteer.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new ledger.
func Default(ledgerDir string) *Config {
	cfg := &Config{
		Ledger: LedgerConfig{Dir: ledgerDir},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Budgeteer",
			AuthorEmail: "ledger@budgeteer.dev",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	imp := &c.Import
	if imp.UndoWindowMinutes <= 0 {
		imp.UndoWindowMinutes = 30
	}
	if imp.HistoryMaxEntries <= 0 {
		imp.HistoryMaxEntries = 30
	}
	if imp.HistoryMaxAgeDays <= 0 {
		imp.HistoryMaxAgeDays = 30
	}
	if imp.StagedAutoExpireDays <= 0 {
		imp.StagedAutoExpireDays = 30
	}
	if imp.MinOccurrences <= 0 {
		imp.MinOccurrences = 3
	}
	if imp.DominanceRatio <= 0 {
		imp.DominanceRatio = 0.6
	}
	if imp.StreamLineThreshold <= 0 {
		imp.StreamLineThreshold = 3000
	}
	if imp.StreamByteThreshold <= 0 {
		imp.StreamByteThreshold = 500_000
	}
}
