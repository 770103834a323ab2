package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// lintConfig mirrors the subset of an ansible-lint configuration file the
// tool understands. Everything else in the file is ignored.
type lintConfig struct {
	ExcludePaths []string `yaml:"exclude_paths"`
}

// LoadLintExcludes reads exclude_paths from an ansible-lint style YAML file,
// for example .ansible-lint. A missing file yields no exclusions and no error.
func LoadLintExcludes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lint config %s: %w", path, err)
	}

	var cfg lintConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing lint config %s: %w", path, err)
	}

	paths := make([]string, 0, len(cfg.ExcludePaths))
	for _, p := range cfg.ExcludePaths {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths, nil
}
