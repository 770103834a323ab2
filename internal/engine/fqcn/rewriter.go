package fqcn

import (
	"regexp"
	"sort"
	"strings"

	"fqcnfix/internal/shared/util"
)

// LineResult classifies one line of a rewrite pass.
type LineResult int

const (
	// LineUnchanged means no known module name matched.
	LineUnchanged LineResult = iota
	// LineMatched means a known module name matched but was already
	// qualified, so the text is untouched.
	LineMatched
	// LineRewritten means the short name was replaced with its FQCN.
	LineRewritten
)

// Symbol returns the progress rune for this result: '*' for any line that
// named a known module, '.' otherwise.
func (r LineResult) Symbol() byte {
	if r == LineUnchanged {
		return '.'
	}
	return '*'
}

// Report summarizes one file's rewrite pass.
type Report struct {
	Lines     int
	Matched   int // lines naming a known module, rewritten or already qualified
	Rewritten int
	Symbols   []byte // one progress symbol per line
}

// Changed reports whether any line was rewritten.
func (r Report) Changed() bool {
	return r.Rewritten > 0
}

// Rewriter applies a module map to one file at a time. The indentation
// prefix of the first matching line is locked in; afterwards only lines at
// exactly that prefix are candidates, leaving deeper keys with colliding
// names (options, dict keys) alone.
type Rewriter struct {
	mapping     Map
	alternation string
	unlocked    *regexp.Regexp
	locked      *regexp.Regexp
	prefix      string
}

func NewRewriter(m Map) *Rewriter {
	if len(m) == 0 {
		return &Rewriter{mapping: m}
	}
	alt := alternation(m)
	return &Rewriter{
		mapping:     m,
		alternation: alt,
		unlocked:    regexp.MustCompile(`^(\s*-?\s+)(` + alt + `):`),
	}
}

// alternation joins the quoted map keys longest-first (ties broken
// lexicographically) so the compiled pattern is deterministic regardless of
// map iteration order.
func alternation(m Map) string {
	keys := util.SortedStringKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j])
	})
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = regexp.QuoteMeta(key)
	}
	return strings.Join(quoted, "|")
}

// Reset clears the locked prefix so the rewriter can start a new file.
func (r *Rewriter) Reset() {
	r.locked = nil
	r.prefix = ""
}

// RewriteLine rewrites a single line, keeping any line terminator intact.
// The first match locks the indentation prefix for subsequent calls.
func (r *Rewriter) RewriteLine(line string) (string, LineResult) {
	if r.unlocked == nil {
		return line, LineUnchanged
	}

	var prefix, module string
	if r.locked != nil {
		m := r.locked.FindStringSubmatch(line)
		if m == nil {
			return line, LineUnchanged
		}
		prefix, module = r.prefix, m[1]
	} else {
		m := r.unlocked.FindStringSubmatch(line)
		if m == nil {
			return line, LineUnchanged
		}
		prefix, module = m[1], m[2]
		r.prefix = prefix
		r.locked = regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(` + r.alternation + `):`)
	}

	fqcn := r.mapping[module]
	if fqcn == module {
		return line, LineMatched
	}
	return prefix + fqcn + line[len(prefix)+len(module):], LineRewritten
}

// RewriteContent rewrites a whole file's content line by line, resetting the
// locked prefix first. Line boundaries and terminators are preserved
// byte-for-byte; only matched module names change.
func (r *Rewriter) RewriteContent(content string) (string, Report) {
	r.Reset()

	lines := strings.SplitAfter(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var out strings.Builder
	out.Grow(len(content))
	report := Report{Symbols: make([]byte, 0, len(lines))}

	for _, line := range lines {
		rewritten, result := r.RewriteLine(line)
		out.WriteString(rewritten)

		report.Lines++
		report.Symbols = append(report.Symbols, result.Symbol())
		switch result {
		case LineMatched:
			report.Matched++
		case LineRewritten:
			report.Matched++
			report.Rewritten++
		}
	}
	return out.String(), report
}
