package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration structure.
type Config struct {
	Resolve ResolveConfig `json:"resolve" toml:"resolve"`
	Output  OutputConfig  `json:"output" toml:"output"`
	Filters FilterConfig  `json:"filters" toml:"filters"`
	Logging LoggingConfig `json:"logging" toml:"logging"`
}

// ResolveConfig controls the history walk.
type ResolveConfig struct {
	Strategy          string `json:"strategy" toml:"strategy"`                   // "tree" or "log"
	PathspecThreshold int    `json:"pathspecThreshold" toml:"pathspecThreshold"` // Default: 50
	Policy            string `json:"policy" toml:"policy"`                       // "placeholder" or "strict"
	Placeholder       string `json:"placeholder" toml:"placeholder"`             // Default: "?"
	Rev               string `json:"rev" toml:"rev"`                             // Default: "HEAD"
}

// OutputConfig controls the result artifact.
type OutputConfig struct {
	Path   string `json:"path" toml:"path"`     // Default: "times.json"; "-" writes to stdout
	Format string `json:"format" toml:"format"` // json, csv, ndjson, console
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" toml:"include"`
	Exclude []string `json:"exclude" toml:"exclude"`
}

// LoggingConfig holds diagnostic logging options.
type LoggingConfig struct {
	Level string `json:"level" toml:"level"` // debug, info, warn, error, none
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Strategy:          "tree",
			PathspecThreshold: 50,
			Policy:            "placeholder",
			Placeholder:       "?",
			Rev:               "HEAD",
		},
		Output: OutputConfig{
			Path:   "times.json",
			Format: "json",
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// configNames are the file names searched when no path is given.
var configNames = []string{".modtimes.json", ".modtimes.toml"}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfig returns the first default config file found in the working
// directory, then in the home directory.
func findConfig() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// SaveConfig saves configuration to a file, as TOML when the path ends in
// .toml and JSON otherwise.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
