package exclude

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"fqcnfix/internal/shared/util"
)

// DefaultPatterns returns the exclusions applied to every scan. They cover
// VCS metadata, tool caches and the Ansible directories that hold variable
// definitions rather than tasks.
func DefaultPatterns() []string {
	return []string{
		".cache",
		".git",
		".hg",
		".svn",
		".tox",
		".collections",
		"*/.github/*",
		"*/molecule/*",
		"*/group_vars/*",
		"*/host_vars/*",
		"*/vars/*",
		"*/defaults/*",
	}
}

// Matcher decides whether a path is excluded from scanning. Each pattern is
// applied three ways: literal patterns exclude the whole subtree below them,
// patterns containing a separator are matched fnmatch-style against the
// absolute and root-relative path, and flat patterns are matched against the
// path basename.
type Matcher struct {
	root      string
	prefixes  []string
	pathGlobs []glob.Glob
	nameGlobs []glob.Glob
}

// NewMatcher compiles patterns into a Matcher anchored at root. Relative
// patterns resolve against root. Invalid glob syntax is a configuration
// error.
func NewMatcher(root string, patterns []string) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root %q: %w", root, err)
	}

	m := &Matcher{root: filepath.ToSlash(absRoot)}
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		normalized := util.NormalizePatternPath(trimmed)

		if !hasWildcard(normalized) {
			prefix := normalized
			if !filepath.IsAbs(trimmed) {
				prefix = m.root + "/" + normalized
			}
			m.prefixes = append(m.prefixes, filepath.ToSlash(prefix))
		}

		g, err := glob.Compile(normalized)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if util.ContainsPathSeparator(normalized) {
			m.pathGlobs = append(m.pathGlobs, g)
		} else {
			m.nameGlobs = append(m.nameGlobs, g)
		}
	}
	return m, nil
}

// Excluded reports whether p falls under any exclusion pattern. Relative
// paths are taken to be relative to the matcher's root.
func (m *Matcher) Excluded(p string) bool {
	abs := filepath.ToSlash(p)
	if !filepath.IsAbs(p) {
		abs = m.root + "/" + util.NormalizePatternPath(p)
	}

	for _, prefix := range m.prefixes {
		if util.HasPathPrefix(abs, prefix) {
			return true
		}
	}

	rel := strings.TrimPrefix(abs, m.root+"/")
	for _, g := range m.pathGlobs {
		if g.Match(abs) || g.Match(rel) {
			return true
		}
	}

	base := path.Base(abs)
	for _, g := range m.nameGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func hasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}
