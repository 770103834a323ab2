package fqcn

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"fqcnfix/internal/core/errors"
	"fqcnfix/internal/shared/util"
)

// ModuleDoc carries the documented identity of a single module.
type ModuleDoc struct {
	Collection string
	Module     string
}

// FQCN returns the fully qualified collection name, or empty when either
// part is missing from the documentation.
func (d ModuleDoc) FQCN() string {
	if d.Collection == "" || d.Module == "" {
		return ""
	}
	return d.Collection + "." + d.Module
}

// DocSource lists the installed modules and resolves their documentation.
// The builder queries it one module at a time.
type DocSource interface {
	ListModules(ctx context.Context) ([]string, error)
	ModuleDoc(ctx context.Context, name string) (ModuleDoc, error)
}

// AnsibleDocClient implements DocSource by shelling out to ansible-doc.
type AnsibleDocClient struct {
	command string
}

// NewAnsibleDocClient returns a client invoking the given command, or
// ansible-doc when command is empty.
func NewAnsibleDocClient(command string) *AnsibleDocClient {
	if strings.TrimSpace(command) == "" {
		command = "ansible-doc"
	}
	return &AnsibleDocClient{command: command}
}

// Available reports whether the configured command is accessible via PATH.
func (c *AnsibleDocClient) Available() bool {
	_, err := exec.LookPath(c.command)
	return err == nil
}

// ListModules runs `<command> -lj` and returns the module identifiers from
// the listing in sorted order. Any failure here aborts map generation.
func (c *AnsibleDocClient) ListModules(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "-lj")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternalTool, fmt.Sprintf("%s -lj failed", c.command))
	}

	var listing map[string]json.RawMessage
	if err := json.Unmarshal(out, &listing); err != nil {
		return nil, errors.Wrap(err, errors.CodeExternalTool, fmt.Sprintf("%s -lj returned invalid JSON", c.command))
	}
	return util.SortedStringKeys(listing), nil
}

// ModuleDoc runs `<command> -j <name>` and extracts doc.collection and
// doc.module. Failures are per-module and skippable.
func (c *AnsibleDocClient) ModuleDoc(ctx context.Context, name string) (ModuleDoc, error) {
	out, err := c.run(ctx, "-j", name)
	if err != nil {
		return ModuleDoc{}, errors.Wrap(err, errors.CodeModuleSkipped, fmt.Sprintf("querying docs for %s", name))
	}

	var payload map[string]struct {
		Doc struct {
			Collection string `json:"collection"`
			Module     string `json:"module"`
		} `json:"doc"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return ModuleDoc{}, errors.Wrap(err, errors.CodeModuleSkipped, fmt.Sprintf("invalid docs JSON for %s", name))
	}

	entry, ok := payload[name]
	if !ok {
		return ModuleDoc{}, errors.New(errors.CodeModuleSkipped, fmt.Sprintf("no documentation entry for %s", name))
	}
	return ModuleDoc{Collection: entry.Doc.Collection, Module: entry.Doc.Module}, nil
}

func (c *AnsibleDocClient) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.command, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w\n%s", err, exitErr.Stderr)
		}
		return nil, err
	}
	return out, nil
}
