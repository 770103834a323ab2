package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fqcnfix/internal/core/config"
)

func TestParseOptions_ShortAliases(t *testing.T) {
	opts, err := parseOptions([]string{
		"-d", "playbooks",
		"-e", "yml,yaml",
		"-c", "lint.yml",
		"-w",
		"-b", ".orig",
		"-x",
		"-m", "modules.yml",
		"-u",
	})
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}

	if opts.directory != "playbooks" {
		t.Fatalf("unexpected directory: %q", opts.directory)
	}
	if opts.extensions != "yml,yaml" {
		t.Fatalf("unexpected extensions: %q", opts.extensions)
	}
	if opts.lintConfig != "lint.yml" {
		t.Fatalf("unexpected lint config: %q", opts.lintConfig)
	}
	if opts.backupSuffix != ".orig" {
		t.Fatalf("unexpected backup suffix: %q", opts.backupSuffix)
	}
	if opts.mapPath != "modules.yml" {
		t.Fatalf("unexpected map path: %q", opts.mapPath)
	}
	if !opts.write || !opts.noDiff || !opts.updateMap {
		t.Fatalf("expected -w, -x and -u to be set: %+v", opts)
	}
}

func TestParseOptions_CollectsPositionalArgs(t *testing.T) {
	opts, err := parseOptions([]string{"-verbose", "stray", "args"})
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if !opts.verbose {
		t.Fatal("expected verbose to be set")
	}
	if len(opts.args) != 2 || opts.args[0] != "stray" || opts.args[1] != "args" {
		t.Fatalf("unexpected positional args: %v", opts.args)
	}
}

func TestParseOptions_RejectsUnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-bogus"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyOptions_KeepsConfigWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Directory = "from-config"
	cfg.Scan.Exclude = []string{"roles/vendor/*"}

	applyOptions(cfg, cliOptions{})

	if cfg.Scan.Directory != "from-config" {
		t.Fatalf("unexpected directory: %q", cfg.Scan.Directory)
	}
	if !reflect.DeepEqual(cfg.Scan.Extensions, []string{"yml", "yaml"}) {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
	if !reflect.DeepEqual(cfg.Scan.Exclude, []string{"roles/vendor/*"}) {
		t.Fatalf("unexpected exclude patterns: %v", cfg.Scan.Exclude)
	}
	if cfg.Rewrite.Write {
		t.Fatal("expected write to stay off")
	}
	if !cfg.Rewrite.DiffEnabled() {
		t.Fatal("expected diff to stay on")
	}
}

func TestApplyOptions_ExtensionsReplaceConfig(t *testing.T) {
	cfg := config.Default()

	applyOptions(cfg, cliOptions{extensions: "j2, yaml.j2"})

	if !reflect.DeepEqual(cfg.Scan.Extensions, []string{"j2", "yaml.j2"}) {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
}

func TestApplyOptions_ExcludeAppendsToConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Exclude = []string{"roles/vendor/*"}

	applyOptions(cfg, cliOptions{exclude: "legacy/*, *.retry"})

	want := []string{"roles/vendor/*", "legacy/*", "*.retry"}
	if !reflect.DeepEqual(cfg.Scan.Exclude, want) {
		t.Fatalf("unexpected exclude patterns: %v", cfg.Scan.Exclude)
	}
}

func TestApplyOptions_NoDiffDisablesDiff(t *testing.T) {
	cfg := config.Default()
	if !cfg.Rewrite.DiffEnabled() {
		t.Fatal("expected diff on by default")
	}

	applyOptions(cfg, cliOptions{noDiff: true})

	if cfg.Rewrite.DiffEnabled() {
		t.Fatal("expected diff to be disabled")
	}
}

func TestApplyOptions_OverridesPathsAndToggles(t *testing.T) {
	cfg := config.Default()

	applyOptions(cfg, cliOptions{
		directory:    "infra",
		lintConfig:   "lint.yml",
		backupSuffix: ".orig",
		mapPath:      "modules.yml",
		historyPath:  "runs.db",
		write:        true,
		updateMap:    true,
		history:      true,
	})

	if cfg.Scan.Directory != "infra" {
		t.Fatalf("unexpected directory: %q", cfg.Scan.Directory)
	}
	if cfg.Scan.LintConfig != "lint.yml" {
		t.Fatalf("unexpected lint config: %q", cfg.Scan.LintConfig)
	}
	if cfg.Rewrite.BackupSuffix != ".orig" {
		t.Fatalf("unexpected backup suffix: %q", cfg.Rewrite.BackupSuffix)
	}
	if cfg.Map.Path != "modules.yml" {
		t.Fatalf("unexpected map path: %q", cfg.Map.Path)
	}
	if cfg.History.Path != "runs.db" {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if !cfg.Rewrite.Write || !cfg.Map.Update || !cfg.History.Enabled {
		t.Fatal("expected write, update-map and history to be enabled")
	}
}

func TestSplitList_TrimsAndSkipsEmpty(t *testing.T) {
	got := splitList(" yml, yaml ,,j2,")
	want := []string{"yml", "yaml", "j2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestLoadConfig_ExplicitMissingPathErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, _, err := loadConfig(missing, t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadConfig_DefaultFallsBackWhenMissing(t *testing.T) {
	cwd := t.TempDir()

	cfg, path, err := loadConfig(defaultConfigPath, cwd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path for defaults, got %q", path)
	}
	if cfg.Scan.Directory != "." {
		t.Fatalf("unexpected default directory: %q", cfg.Scan.Directory)
	}
}

func TestLoadConfig_DefaultLoadsWhenPresent(t *testing.T) {
	cwd := t.TempDir()
	content := "version = 1\n\n[scan]\ndirectory = \"playbooks\"\n"
	if err := os.WriteFile(filepath.Join(cwd, defaultConfigPath), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, path, err := loadConfig(defaultConfigPath, cwd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if path != filepath.Join(cwd, defaultConfigPath) {
		t.Fatalf("unexpected config path: %q", path)
	}
	if cfg.Scan.Directory != "playbooks" {
		t.Fatalf("unexpected directory: %q", cfg.Scan.Directory)
	}
}

func TestResolveConfigPaths_AnchorsRelativeValues(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Directory = "playbooks"
	cfg.Scan.LintConfig = ".ansible-lint"
	cfg.Map.Path = filepath.Join(string(filepath.Separator), "var", "cache", "fqcn.yml")
	cfg.History.Path = "runs.db"

	base := filepath.Join(string(filepath.Separator), "etc", "fqcnfix")
	resolveConfigPaths(cfg, base)

	if cfg.Scan.Directory != filepath.Join(base, "playbooks") {
		t.Fatalf("unexpected directory: %q", cfg.Scan.Directory)
	}
	if cfg.Scan.LintConfig != filepath.Join(base, ".ansible-lint") {
		t.Fatalf("unexpected lint config: %q", cfg.Scan.LintConfig)
	}
	if cfg.Map.Path != filepath.Join(string(filepath.Separator), "var", "cache", "fqcn.yml") {
		t.Fatalf("absolute map path should be untouched: %q", cfg.Map.Path)
	}
	if cfg.History.Path != filepath.Join(base, "runs.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
}
