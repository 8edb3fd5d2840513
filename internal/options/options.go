// Package options provides the string-keyed configuration store consumed by
// the layout, rendering and replay subsystems. Every option is declared with
// a default; lookups by undeclared name return the zero value for the
// requested type.
package options

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Option describes one declared option: its default value and a help string.
type Option struct {
	Name    string
	Default any
	Help    string
}

// Store holds declared options and their current values.
// Safe for concurrent use; the replay worker reads options while the UI
// thread may be applying a set-option entry.
type Store struct {
	mu   sync.RWMutex
	defs map[string]Option
	vals map[string]any
}

// New returns a Store with the builtin option and theme defaults declared.
func New() *Store {
	s := &Store{
		defs: make(map[string]Option),
		vals: make(map[string]any),
	}
	declareDefaults(s)
	return s
}

// Declare registers an option with its default value.
// Re-declaring an option replaces its default but keeps any set value.
func (s *Store) Declare(name string, def any, help string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[name] = Option{Name: name, Default: def, Help: help}
}

// SetDefault replaces a declared option's default value, keeping its help
// text and any explicitly set value. Undeclared names are ignored.
func (s *Store) SetDefault(name string, def any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.defs[name]; ok {
		d.Default = def
		s.defs[name] = d
	}
}

// Declared reports whether the named option has been declared.
func (s *Store) Declared(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.defs[name]
	return ok
}

// Names returns all declared option names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the current value of the named option, or its default if unset.
// Returns nil for undeclared options.
func (s *Store) Get(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vals[name]; ok {
		return v
	}
	if d, ok := s.defs[name]; ok {
		return d.Default
	}
	return nil
}

// Set parses and stores a new value for the named option. The string is
// converted to the type of the option's default value; this is the seam the
// set-option replay path drives.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("unknown option %q", name)
	}
	parsed, err := coerce(value, d.Default)
	if err != nil {
		return fmt.Errorf("option %q: %w", name, err)
	}
	s.vals[name] = parsed
	return nil
}

// SetValue stores a typed value directly, bypassing string parsing.
func (s *Store) SetValue(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[name] = value
}

// Unset reverts the named option to its default.
func (s *Store) Unset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vals, name)
}

// coerce converts a string to the same type as the option's default.
func coerce(value string, def any) (any, error) {
	switch def.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", value)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q", value)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", value)
		}
		return f, nil
	default:
		return value, nil
	}
}

// String returns the named option as a string.
func (s *Store) String(name string) string {
	if v, ok := s.Get(name).(string); ok {
		return v
	}
	return ""
}

// Int returns the named option as an int.
func (s *Store) Int(name string) int {
	switch v := s.Get(name).(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the named option as a bool.
func (s *Store) Bool(name string) bool {
	if v, ok := s.Get(name).(bool); ok {
		return v
	}
	return false
}

// Float returns the named option as a float64.
func (s *Store) Float(name string) float64 {
	switch v := s.Get(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Duration interprets the named option as a number of seconds.
func (s *Store) Duration(name string) time.Duration {
	return time.Duration(s.Float(name) * float64(time.Second))
}
