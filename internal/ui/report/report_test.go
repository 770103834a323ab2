package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestNoticef(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Noticef("updated %s", "site.yml")
	p.Noticef("fqcn map written to %s", "fqcn.yml")

	want := "updated site.yml\nfqcn map written to fqcn.yml\n"
	if out.String() != want {
		t.Errorf("notices = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Errorf("notices leaked to error stream: %q", errOut.String())
	}
}

func TestFileProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.FileProgress("roles/common/tasks/main.yml", []byte("..*.*"))

	want := "parsing file roles/common/tasks/main.yml ..*.*\n"
	if errOut.String() != want {
		t.Errorf("progress = %q, want %q", errOut.String(), want)
	}
	if out.Len() != 0 {
		t.Errorf("progress leaked to output stream: %q", out.String())
	}
}

func TestFileProgressEmptyFile(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.FileProgress("empty.yml", nil)

	if got := errOut.String(); got != "parsing file empty.yml \n" {
		t.Errorf("progress = %q", got)
	}
}

func TestDiff(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	original := "- hosts: all\n  tasks:\n    - copy:\n        src: a\n"
	rewritten := "- hosts: all\n  tasks:\n    - ansible.builtin.copy:\n        src: a\n"

	if err := p.Diff("site.yml", original, rewritten); err != nil {
		t.Fatal(err)
	}

	got := errOut.String()
	for _, want := range []string{
		"--- a/site.yml",
		"+++ b/site.yml",
		"-    - copy:",
		"+    - ansible.builtin.copy:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q in:\n%s", want, got)
		}
	}
	if out.Len() != 0 {
		t.Errorf("diff leaked to output stream: %q", out.String())
	}
}

func TestDiffEqualContent(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	if err := p.Diff("site.yml", "- copy: a\n", "- copy: a\n"); err != nil {
		t.Fatal(err)
	}
	if errOut.Len() != 0 {
		t.Errorf("diff for equal content = %q, want empty", errOut.String())
	}
}

func TestDiffNoPhantomTrailingLine(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	if err := p.Diff("f.yml", "copy: a\n", "file: a\n"); err != nil {
		t.Fatal(err)
	}

	got := errOut.String()
	if !strings.Contains(got, "@@ -1 +1 @@") {
		t.Errorf("diff should cover exactly one line:\n%s", got)
	}
}

func TestSplitKeepEnds(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"Empty", "", []string{}},
		{"SingleNewline", "\n", []string{"\n"}},
		{"Terminated", "a: 1\nb: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"Unterminated", "a: 1\nb: 2", []string{"a: 1\n", "b: 2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitKeepEnds(tc.content)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitKeepEnds(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}
