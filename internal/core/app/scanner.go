package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fqcnfix/internal/engine/exclude"
	"fqcnfix/internal/engine/fqcn"
)

// ScanDirectory walks root and returns the files eligible for rewriting:
// the name carries one of the extensions (leading dot optional, compared
// case-insensitively) and neither the file nor a directory above it is
// excluded. Excluded directories are skipped without descending.
func ScanDirectory(root string, extensions []string, matcher *exclude.Matcher) ([]string, error) {
	suffixes := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		suffixes = append(suffixes, ext)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && matcher.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasAnySuffix(d.Name(), suffixes) {
			return nil
		}
		if matcher.Excluded(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ProcessFile rewrites a single file in memory, prints its progress line and
// diff, and writes the result back when write mode is on and the content
// changed. The returned report covers every line of the file.
func (a *App) ProcessFile(path string) (fqcn.Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return fqcn.Report{}, err
	}

	rewritten, rep := a.rewriter.RewriteContent(string(content))
	a.printer.FileProgress(a.displayPath(path), rep.Symbols)

	if !rep.Changed() {
		return rep, nil
	}

	if a.Config.Rewrite.DiffEnabled() {
		if err := a.printer.Diff(a.displayPath(path), string(content), rewritten); err != nil {
			return rep, err
		}
	}

	if !a.Config.Rewrite.Write {
		return rep, nil
	}
	if err := a.writeRewritten(path, rewritten); err != nil {
		return rep, err
	}
	a.printer.Noticef("updated %s", a.displayPath(path))
	return rep, nil
}

// writeRewritten moves the original aside as the backup and writes the new
// content to path with the original's permissions.
func (a *App) writeRewritten(path, rewritten string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	backupPath := path + a.Config.Rewrite.BackupSuffix
	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("creating backup %s: %w", backupPath, err)
	}
	if err := os.WriteFile(path, []byte(rewritten), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (a *App) displayPath(path string) string {
	rel, err := filepath.Rel(a.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
