package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version int     `toml:"version"`
	Scan    Scan    `toml:"scan"`
	Rewrite Rewrite `toml:"rewrite"`
	Map     MapFile `toml:"map"`
	History History `toml:"history"`
}

type Scan struct {
	Directory  string   `toml:"directory"`
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
	LintConfig string   `toml:"lint_config"`
}

type Rewrite struct {
	Write        bool   `toml:"write"`
	BackupSuffix string `toml:"backup_suffix"`
	Diff         *bool  `toml:"diff"`
}

type MapFile struct {
	Path        string `toml:"path"`
	Update      bool   `toml:"update"`
	DocsCommand string `toml:"docs_command"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

// Default returns a configuration with all defaults applied, equivalent to
// loading an empty file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateRewrite(&cfg); err != nil {
		return nil, err
	}
	if err := validateMap(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Scan.Directory) == "" {
		cfg.Scan.Directory = "."
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{"yml", "yaml"}
	}
	if strings.TrimSpace(cfg.Scan.LintConfig) == "" {
		cfg.Scan.LintConfig = ".ansible-lint"
	}

	if strings.TrimSpace(cfg.Rewrite.BackupSuffix) == "" {
		cfg.Rewrite.BackupSuffix = ".bak"
	}

	if strings.TrimSpace(cfg.Map.Path) == "" {
		cfg.Map.Path = "fqcn.yml"
	}
	if strings.TrimSpace(cfg.Map.DocsCommand) == "" {
		cfg.Map.DocsCommand = "ansible-doc"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "fqcnfix-history.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}
}

// DiffEnabled reports whether unified diffs should be printed. Diffs are on
// unless the config or a flag switches them off.
func (r Rewrite) DiffEnabled() bool {
	if r.Diff == nil {
		return true
	}
	return *r.Diff
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if strings.TrimSpace(cfg.Scan.Directory) == "" {
		return fmt.Errorf("scan.directory must not be empty")
	}
	for _, ext := range cfg.Scan.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("scan.extensions must not include empty values")
		}
	}
	for _, pattern := range cfg.Scan.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("scan.exclude must not include empty values")
		}
	}
	return nil
}

func validateRewrite(cfg *Config) error {
	if strings.TrimSpace(cfg.Rewrite.BackupSuffix) == "" {
		return fmt.Errorf("rewrite.backup_suffix must not be empty")
	}
	return nil
}

func validateMap(cfg *Config) error {
	if strings.TrimSpace(cfg.Map.Path) == "" {
		return fmt.Errorf("map.path must not be empty")
	}
	if strings.TrimSpace(cfg.Map.DocsCommand) == "" {
		return fmt.Errorf("map.docs_command must not be empty")
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	return nil
}
