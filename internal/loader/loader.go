// Package loader opens data files as sheets. Loaders are registered by
// file extension; the JSON loader is the fallback for unknown extensions.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Loader parses one file format into a sheet.
type Loader interface {
	// Name identifies the loader in messages.
	Name() string

	// Load reads the file at path into a new sheet.
	Load(path string, opts *options.Store) (*sheet.Sheet, error)
}

// Registry maps file extensions to loaders.
type Registry struct {
	byExt    map[string]Loader
	fallback Loader
}

// NewRegistry returns a registry with the built-in loaders installed and
// the JSON loader as fallback.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Loader)}
	j := JSONLoader{}
	r.Register("json", j)
	r.Register("jsonl", JSONLinesLoader{})
	r.Register("ndjson", JSONLinesLoader{})
	r.Register("ldjson", JSONLinesLoader{})
	r.fallback = j
	return r
}

// Register installs a loader for an extension (without the leading dot).
func (r *Registry) Register(ext string, l Loader) {
	r.byExt[strings.ToLower(ext)] = l
}

// For returns the loader for the path's extension, or the fallback.
func (r *Registry) For(path string) Loader {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if l, ok := r.byExt[ext]; ok {
		return l
	}
	return r.fallback
}

// Open loads the file into a sheet and wires reloading, so reload-sheet
// re-reads the file in place.
func (r *Registry) Open(path string, opts *options.Store) (*sheet.Sheet, error) {
	l := r.For(path)
	s, err := l.Load(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	s.Reloader = func(target *sheet.Sheet) error {
		fresh, err := l.Load(path, opts)
		if err != nil {
			return fmt.Errorf("failed to reload %s: %w", path, err)
		}
		target.SetRows(fresh.Rows)
		return nil
	}
	return s, nil
}
