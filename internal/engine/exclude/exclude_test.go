package exclude

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMatcherDefaults(t *testing.T) {
	t.Parallel()

	root := "/srv/ansible"
	m, err := NewMatcher(root, DefaultPatterns())
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	cases := []struct {
		name     string
		path     string
		excluded bool
	}{
		{name: "GitDirAtRoot", path: "/srv/ansible/.git", excluded: true},
		{name: "GitDirNested", path: "/srv/ansible/roles/common/.git", excluded: true},
		{name: "MoleculeFile", path: "/srv/ansible/roles/common/molecule/default/converge.yml", excluded: true},
		{name: "GroupVarsFile", path: "/srv/ansible/inventories/prod/group_vars/all.yml", excluded: true},
		{name: "GithubWorkflow", path: "/srv/ansible/.github/workflows/ci.yml", excluded: true},
		{name: "DefaultsFile", path: "/srv/ansible/roles/common/defaults/main.yml", excluded: true},
		{name: "TaskFile", path: "/srv/ansible/roles/common/tasks/main.yml", excluded: false},
		{name: "Playbook", path: "/srv/ansible/site.yml", excluded: false},
		{name: "GitNamePrefix", path: "/srv/ansible/.gitignore.yml", excluded: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := m.Excluded(tc.path); got != tc.excluded {
				t.Fatalf("Excluded(%q) = %v, expected %v", tc.path, got, tc.excluded)
			}
		})
	}
}

func TestMatcherLiteralSubtree(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher("/srv/ansible", []string{"roles/vendored"})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	if !m.Excluded("/srv/ansible/roles/vendored") {
		t.Error("expected the directory itself to be excluded")
	}
	if !m.Excluded("/srv/ansible/roles/vendored/tasks/main.yml") {
		t.Error("expected nested file to be excluded")
	}
	if m.Excluded("/srv/ansible/roles/vendored-fork/tasks/main.yml") {
		t.Error("expected sibling with shared name prefix to stay included")
	}
}

func TestMatcherAbsolutePattern(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher("/srv/ansible", []string{"/srv/ansible/fqcn.yml"})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	if !m.Excluded("/srv/ansible/fqcn.yml") {
		t.Error("expected absolute pattern to exclude the file")
	}
	if m.Excluded("/srv/ansible/site.yml") {
		t.Error("expected unrelated file to stay included")
	}
}

func TestMatcherNameGlob(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher("/srv/ansible", []string{"*.retry"})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	if !m.Excluded("/srv/ansible/playbooks/site.retry") {
		t.Error("expected retry file to be excluded")
	}
	if m.Excluded("/srv/ansible/playbooks/site.yml") {
		t.Error("expected yml file to stay included")
	}
}

func TestMatcherRelativeInput(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher("/srv/ansible", []string{"*/molecule/*"})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	if !m.Excluded("roles/common/molecule/default/converge.yml") {
		t.Error("expected relative path to resolve against the root")
	}
}

func TestMatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewMatcher("/srv/ansible", []string{"[unclosed"})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMatcherRelativeRoot(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher(".", []string{".git"})
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	abs, err := filepath.Abs(".git")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Excluded(abs) {
		t.Error("expected .git under a relative root to be excluded")
	}
}
