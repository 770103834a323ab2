package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: FQCNFIX_[SECTION]_[KEY] (e.g., FQCNFIX_MAP_PATH).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvString(&cfg.Scan.Directory, "FQCNFIX_SCAN_DIRECTORY")
	setEnvStringSlice(&cfg.Scan.Extensions, "FQCNFIX_SCAN_EXTENSIONS")
	setEnvStringSlice(&cfg.Scan.Exclude, "FQCNFIX_SCAN_EXCLUDE")
	setEnvString(&cfg.Scan.LintConfig, "FQCNFIX_SCAN_LINT_CONFIG")

	// Rewrite
	setEnvBool(&cfg.Rewrite.Write, "FQCNFIX_REWRITE_WRITE")
	setEnvString(&cfg.Rewrite.BackupSuffix, "FQCNFIX_REWRITE_BACKUP_SUFFIX")
	setEnvBoolPtr(&cfg.Rewrite.Diff, "FQCNFIX_REWRITE_DIFF")

	// Map
	setEnvString(&cfg.Map.Path, "FQCNFIX_MAP_PATH")
	setEnvBool(&cfg.Map.Update, "FQCNFIX_MAP_UPDATE")
	setEnvString(&cfg.Map.DocsCommand, "FQCNFIX_MAP_DOCS_COMMAND")

	// History
	setEnvBool(&cfg.History.Enabled, "FQCNFIX_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "FQCNFIX_HISTORY_PATH")
	setEnvDuration(&cfg.History.BusyTimeout, "FQCNFIX_HISTORY_BUSY_TIMEOUT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvStringSlice(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		log.Printf("Applying env override: %s=%s", key, val)
		*target = out
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = &b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
