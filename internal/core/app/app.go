package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fqcnfix/internal/core/config"
	"fqcnfix/internal/data/history"
	"fqcnfix/internal/engine/exclude"
	"fqcnfix/internal/engine/fqcn"
	"fqcnfix/internal/ui/report"
)

// HistorySink records finished runs. A nil sink disables recording.
type HistorySink interface {
	SaveRecord(record history.Record) error
}

// Options carries the collaborators a run needs beyond config and mapping.
type Options struct {
	Printer *report.Printer
	History HistorySink

	// ExtraExcludes holds patterns contributed outside the main config,
	// such as exclude_paths from an ansible-lint file.
	ExtraExcludes []string
}

type App struct {
	Config *config.Config

	rewriter *fqcn.Rewriter
	matcher  *exclude.Matcher
	printer  *report.Printer
	history  HistorySink

	root         string
	knownModules int
}

// Summary totals one run over the scanned tree.
type Summary struct {
	RunID          string
	FilesScanned   int
	FilesChanged   int
	FilesFailed    int
	LinesScanned   int
	LinesMatched   int
	LinesRewritten int
	Duration       time.Duration
}

func New(cfg *config.Config, mapping fqcn.Map, opts Options) (*App, error) {
	root, err := filepath.Abs(cfg.Scan.Directory)
	if err != nil {
		return nil, fmt.Errorf("resolve scan directory %q: %w", cfg.Scan.Directory, err)
	}

	patterns := exclude.DefaultPatterns()
	patterns = append(patterns, cfg.Scan.Exclude...)
	patterns = append(patterns, opts.ExtraExcludes...)

	// The tool's own artifacts are never rewrite candidates, wherever the
	// scan root happens to sit.
	artifacts := []string{cfg.Map.Path}
	if cfg.History.Enabled {
		artifacts = append(artifacts, cfg.History.Path)
	}
	for _, artifact := range artifacts {
		abs, err := filepath.Abs(artifact)
		if err != nil {
			return nil, fmt.Errorf("resolve artifact path %q: %w", artifact, err)
		}
		patterns = append(patterns, abs)
	}

	matcher, err := exclude.NewMatcher(root, patterns)
	if err != nil {
		return nil, err
	}

	printer := opts.Printer
	if printer == nil {
		printer = report.NewPrinter(os.Stdout, os.Stderr)
	}

	return &App{
		Config:       cfg,
		rewriter:     fqcn.NewRewriter(mapping),
		matcher:      matcher,
		printer:      printer,
		history:      opts.History,
		root:         root,
		knownModules: len(mapping),
	}, nil
}

// Run scans the configured tree and rewrites, diffs and reports each file
// according to the rewrite settings. Per-file failures are logged and
// counted; only scan setup errors and cancellation abort the run.
func (a *App) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}

	files, err := ScanDirectory(a.root, a.Config.Scan.Extensions, a.matcher)
	if err != nil {
		return summary, fmt.Errorf("scanning %s: %w", a.root, err)
	}
	summary.FilesScanned = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rep, err := a.ProcessFile(path)
		if err != nil {
			summary.FilesFailed++
			slog.Warn("failed to process file", "path", path, "error", err)
			continue
		}

		summary.LinesScanned += rep.Lines
		summary.LinesMatched += rep.Matched
		summary.LinesRewritten += rep.Rewritten
		if rep.Changed() {
			summary.FilesChanged++
		}
	}

	summary.Duration = time.Since(start)
	slog.Info("run complete",
		"run_id", summary.RunID,
		"files_scanned", summary.FilesScanned,
		"files_changed", summary.FilesChanged,
		"files_failed", summary.FilesFailed,
		"lines_matched", summary.LinesMatched,
		"lines_rewritten", summary.LinesRewritten,
		"duration", summary.Duration)

	a.recordRun(summary)
	return summary, nil
}

func (a *App) recordRun(summary Summary) {
	if a.history == nil {
		return
	}

	commitHash, commitTime := history.ResolveGitMetadata(a.root)
	record := history.Record{
		RunID:           summary.RunID,
		CommitHash:      commitHash,
		CommitTimestamp: commitTime,
		DryRun:          !a.Config.Rewrite.Write,
		KnownModules:    a.knownModules,
		FilesScanned:    summary.FilesScanned,
		FilesChanged:    summary.FilesChanged,
		FilesFailed:     summary.FilesFailed,
		LinesScanned:    summary.LinesScanned,
		LinesMatched:    summary.LinesMatched,
		LinesRewritten:  summary.LinesRewritten,
		Duration:        summary.Duration,
	}
	if err := a.history.SaveRecord(record); err != nil {
		slog.Warn("failed to record run history", "run_id", summary.RunID, "error", err)
	}
}
