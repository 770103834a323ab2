package fqcn

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fqcnfix/internal/core/errors"
	"fqcnfix/internal/shared/util"
)

// Map holds every rewritable module name keyed to its fully qualified form.
// The cache file stores only short names; WithSelfMappings adds the
// qualified names mapped to themselves so already migrated task files are
// recognized instead of rewritten again.
type Map map[string]string

// MarshalYAML emits the map as a mapping node with sorted keys, so the cache
// file is stable across runs and diffs cleanly.
func (m Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range util.SortedStringKeys(m) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m[key]},
		)
	}
	return node, nil
}

// WithSelfMappings returns a copy with every qualified name also mapped to
// itself. Applied after every load or generation, never persisted.
func (m Map) WithSelfMappings() Map {
	out := make(Map, len(m)*2)
	for key, value := range m {
		out[key] = value
	}
	for _, value := range m {
		out[value] = value
	}
	return out
}

// NotifyFunc receives user-facing status lines during map building. A nil
// func silences them.
type NotifyFunc func(format string, args ...interface{})

// Builder produces the module map, preferring the cache file and falling
// back to querying the doc source module by module.
type Builder struct {
	source   DocSource
	notify   NotifyFunc
	progress *util.Limiter
}

func NewBuilder(source DocSource, notify NotifyFunc) *Builder {
	return &Builder{
		source: source,
		notify: notify,
		// At most one progress line per second during generation.
		progress: util.NewLimiter(1, 1),
	}
}

// Build returns the module map with self-mappings applied. The cache file is
// used when it exists and regenerate is false; otherwise the doc source is
// queried and the result written back to cachePath. A present but unreadable
// cache is an error so a corrupt file never gets silently clobbered.
func (b *Builder) Build(ctx context.Context, cachePath string, regenerate bool) (Map, error) {
	if !regenerate {
		m, err := b.loadCache(cachePath)
		if err == nil {
			slog.Debug("fqcn map loaded", "path", cachePath, "modules", len(m))
			return m.WithSelfMappings(), nil
		}
		if !errors.IsCode(err, errors.CodeNotFound) {
			return nil, err
		}
	}

	b.noticef("we will generate the fqcn map, this will take some time ...")
	m, err := b.generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.writeCache(cachePath, m); err != nil {
		return nil, err
	}
	b.noticef("fqcn map written to %s", cachePath)
	return m.WithSelfMappings(), nil
}

func (b *Builder) loadCache(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("map file %s does not exist", path))
		}
		return nil, errors.Wrap(err, errors.CodeCacheIO, fmt.Sprintf("reading map file %s", path))
	}

	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheIO, fmt.Sprintf("parsing map file %s", path))
	}
	if len(m) == 0 {
		return nil, errors.New(errors.CodeCacheIO, fmt.Sprintf("map file %s contains no entries", path))
	}
	return m, nil
}

func (b *Builder) generate(ctx context.Context) (Map, error) {
	names, err := b.source.ListModules(ctx)
	if err != nil {
		return nil, err
	}

	m := make(Map, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := b.source.ModuleDoc(ctx, name)
		if err != nil {
			slog.Warn("module docs unavailable", "module", name, "error", err)
			continue
		}
		fqcn := doc.FQCN()
		if fqcn == "" {
			slog.Warn("module docs incomplete", "module", name)
			continue
		}

		short := fqcn[strings.LastIndex(fqcn, ".")+1:]
		m[short] = fqcn
		slog.Debug("mapped module", "module", name, "short", short, "fqcn", fqcn)

		if b.progress.Allow(1) {
			slog.Info("fqcn map generation progress", "done", i+1, "total", len(names))
		}
	}
	return m, nil
}

func (b *Builder) writeCache(path string, m Map) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheIO, fmt.Sprintf("encoding map file %s", path))
	}

	content := make([]byte, 0, len(data)+8)
	content = append(content, []byte("---\n")...)
	content = append(content, data...)
	content = append(content, []byte("...\n")...)

	if err := util.WriteFileWithDirs(path, content, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeCacheIO, fmt.Sprintf("writing map file %s", path))
	}
	return nil
}

func (b *Builder) noticef(format string, args ...interface{}) {
	if b.notify != nil {
		b.notify(format, args...)
	}
}
