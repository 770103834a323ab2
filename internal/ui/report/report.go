// # internal/ui/report/report.go
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// Printer renders the user-facing output of a run: status notices on the
// output stream, per-file progress and diffs on the error stream so that
// notices stay pipeable.
type Printer struct {
	out io.Writer
	err io.Writer
}

func NewPrinter(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// Noticef writes a status line such as "updated site.yml".
func (p *Printer) Noticef(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// FileProgress writes one progress line per scanned file. symbols carries one
// byte per file line: '.' untouched, '*' matched or rewritten.
func (p *Printer) FileProgress(path string, symbols []byte) {
	fmt.Fprintf(p.err, "parsing file %s %s\n", path, symbols)
}

// Diff writes a unified diff between the original and rewritten content of
// path. Equal contents produce no output.
func (p *Printer) Diff(path, original, rewritten string) error {
	if original == rewritten {
		return nil
	}
	diff := difflib.UnifiedDiff{
		A:        splitKeepEnds(original),
		B:        splitKeepEnds(rewritten),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("rendering diff for %s: %w", path, err)
	}
	fmt.Fprint(p.err, text)
	return nil
}

// splitKeepEnds splits content into lines that keep their trailing newline.
// Unlike difflib.SplitLines it does not invent a final empty line for content
// ending in a newline, so diffs never show context that is not in the file.
func splitKeepEnds(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
