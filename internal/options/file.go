package options

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the configuration loaded from .gridsheet/config.toml.
// Every entry in the options table overlays the declared default of the
// option with the same name.
type FileConfig struct {
	// Theme selects the colour theme: "auto", "dark", or "light".
	Theme string `toml:"theme"`

	// Options maps option names to override values, e.g.
	// [options] default_width = 30.
	Options map[string]any `toml:"options"`
}

// LoadFileConfig reads configuration from .gridsheet/config.toml in the
// given directory. Returns nil if the file doesn't exist (not an error).
func LoadFileConfig(dir string) (*FileConfig, error) {
	return LoadFileConfigFrom(filepath.Join(dir, ".gridsheet", "config.toml"))
}

// LoadFileConfigFrom reads configuration from a specific file path.
// Returns nil if the file doesn't exist (not an error).
func LoadFileConfigFrom(configPath string) (*FileConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply overlays the file config onto the store. Unknown option names are
// returned rather than applied, so the caller can surface them as status
// messages without aborting startup.
func (c *FileConfig) Apply(s *Store) (unknown []string) {
	if c == nil {
		return nil
	}
	for name, val := range c.Options {
		if !s.Declared(name) {
			unknown = append(unknown, name)
			continue
		}
		// TOML integers arrive as int64; normalize to the declared type.
		switch v := val.(type) {
		case int64:
			if _, isFloat := s.Get(name).(float64); isFloat {
				s.SetValue(name, float64(v))
			} else {
				s.SetValue(name, int(v))
			}
		default:
			s.SetValue(name, val)
		}
	}
	return unknown
}
