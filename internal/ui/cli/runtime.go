package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	coreapp "fqcnfix/internal/core/app"
	"fqcnfix/internal/core/config"
	"fqcnfix/internal/data/history"
	"fqcnfix/internal/engine/fqcn"
	"fqcnfix/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("fqcnfix v%s\n", versionString)
		return 0
	}
	if len(opts.args) > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(opts.args, " "))
		return 2
	}

	configureLogging(opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if cfgPath != "" {
		resolveConfigPaths(cfg, filepath.Dir(cfgPath))
	}
	config.ApplyEnvOverrides(cfg)
	applyOptions(cfg, opts)

	printer := report.NewPrinter(os.Stdout, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mapping, code := buildMapping(ctx, cfg, printer)
	if code != 0 {
		return code
	}

	lintExcludes, err := config.LoadLintExcludes(cfg.Scan.LintConfig)
	if err != nil {
		slog.Error("failed to read lint config", "path", cfg.Scan.LintConfig, "error", err)
		return 1
	}

	store := openHistoryStore(cfg)
	if store != nil {
		defer store.Close()
	}
	var sink coreapp.HistorySink
	if store != nil {
		sink = store
	}

	application, err := coreapp.New(cfg, mapping, coreapp.Options{
		Printer:       printer,
		History:       sink,
		ExtraExcludes: lintExcludes,
	})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	if _, err := application.Run(ctx); err != nil {
		slog.Error("run failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig loads an explicitly given config file, or probes the default
// path and falls back to built-in defaults when no file exists. The returned
// path is empty when defaults are in effect.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	candidate := filepath.Clean(filepath.Join(cwd, defaultConfigPath))
	cfg, err := config.Load(candidate)
	if err == nil {
		return cfg, candidate, nil
	}
	if os.IsNotExist(err) {
		return config.Default(), "", nil
	}
	return nil, "", err
}

// resolveConfigPaths anchors relative paths from the config file at the
// file's own directory. Values from flags and environment stay relative to
// the working directory.
func resolveConfigPaths(cfg *config.Config, baseDir string) {
	cfg.Scan.Directory = config.ResolveRelative(baseDir, cfg.Scan.Directory)
	cfg.Scan.LintConfig = config.ResolveRelative(baseDir, cfg.Scan.LintConfig)
	cfg.Map.Path = config.ResolveRelative(baseDir, cfg.Map.Path)
	cfg.History.Path = config.ResolveRelative(baseDir, cfg.History.Path)
}

func applyOptions(cfg *config.Config, opts cliOptions) {
	if opts.directory != "" {
		cfg.Scan.Directory = opts.directory
	}
	if opts.extensions != "" {
		cfg.Scan.Extensions = splitList(opts.extensions)
	}
	if opts.exclude != "" {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, splitList(opts.exclude)...)
	}
	if opts.lintConfig != "" {
		cfg.Scan.LintConfig = opts.lintConfig
	}
	if opts.write {
		cfg.Rewrite.Write = true
	}
	if opts.backupSuffix != "" {
		cfg.Rewrite.BackupSuffix = opts.backupSuffix
	}
	if opts.noDiff {
		off := false
		cfg.Rewrite.Diff = &off
	}
	if opts.mapPath != "" {
		cfg.Map.Path = opts.mapPath
	}
	if opts.updateMap {
		cfg.Map.Update = true
	}
	if opts.history {
		cfg.History.Enabled = true
	}
	if opts.historyPath != "" {
		cfg.History.Path = opts.historyPath
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// buildMapping loads or generates the fqcn map and returns a non-zero exit
// code on failure. A listing failure carries the documentation command's own
// exit status when it is known.
func buildMapping(ctx context.Context, cfg *config.Config, printer *report.Printer) (fqcn.Map, int) {
	client := fqcn.NewAnsibleDocClient(cfg.Map.DocsCommand)

	willGenerate := cfg.Map.Update
	if !willGenerate {
		if _, err := os.Stat(cfg.Map.Path); err != nil {
			willGenerate = true
		}
	}
	if willGenerate && !client.Available() {
		slog.Error("module documentation command not found", "command", cfg.Map.DocsCommand)
		return nil, 1
	}

	builder := fqcn.NewBuilder(client, printer.Noticef)
	mapping, err := builder.Build(ctx, cfg.Map.Path, cfg.Map.Update)
	if err != nil {
		slog.Error("failed to build fqcn map", "error", err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return nil, exitErr.ExitCode()
		}
		return nil, 1
	}
	return mapping, 0
}

func openHistoryStore(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}

	store, err := history.Open(cfg.History.Path, cfg.History.BusyTimeout)
	if err != nil {
		if history.IsCorruptError(err) {
			slog.Warn("history database is corrupt, delete it to start fresh", "path", cfg.History.Path, "error", err)
		} else {
			slog.Warn("history disabled for this run", "path", cfg.History.Path, "error", err)
		}
		return nil
	}
	return store
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
