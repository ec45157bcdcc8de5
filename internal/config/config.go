// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a config value that failed validation.
var ErrInvalid = errors.New("config: invalid")

// Config holds all toolbox configuration.
type Config struct {
	Files     Files     `yaml:"files"`
	Assistant Assistant `yaml:"assistant"`
	Log       Log       `yaml:"log"`
}

// Files holds default input file paths.
type Files struct {
	Salary string `yaml:"salary"`
	Cats   string `yaml:"cats"`
}

// Assistant holds contact bot settings.
type Assistant struct {
	Frontend   string `yaml:"frontend"`   // "auto" | "plain" | "tui"
	Permissive bool   `yaml:"permissive"` // Store contacts that fail validation
	Prompt     string `yaml:"prompt"`
}

// Log holds structured logging settings.
type Log struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Debug   bool   `yaml:"debug"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Files: Files{
			Salary: "salary_file.txt",
			Cats:   "cats_info.txt",
		},
		Assistant: Assistant{
			Frontend: "auto",
			Prompt:   "Enter a command: ",
		},
		Log: Log{
			Dir: ".toolbox/logs",
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
// Invalid YAML or unknown fields in any layer is an error.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Files.Salary == "" {
		return fmt.Errorf("%w: files.salary cannot be empty", ErrInvalid)
	}
	if c.Files.Cats == "" {
		return fmt.Errorf("%w: files.cats cannot be empty", ErrInvalid)
	}
	switch c.Assistant.Frontend {
	case "", "auto", "plain", "tui":
		// valid
	default:
		return fmt.Errorf("%w: assistant.frontend must be \"auto\", \"plain\" or \"tui\", got %q", ErrInvalid, c.Assistant.Frontend)
	}
	if c.Log.Enabled && c.Log.Dir == "" {
		return fmt.Errorf("%w: log.dir cannot be empty when logging is enabled", ErrInvalid)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: TOOLBOX_SALARY_FILE, TOOLBOX_CATS_FILE, TOOLBOX_FRONTEND, TOOLBOX_LOG_DIR.
// Setting TOOLBOX_LOG_DIR also enables logging.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TOOLBOX_SALARY_FILE"); v != "" {
		c.Files.Salary = v
	}
	if v := os.Getenv("TOOLBOX_CATS_FILE"); v != "" {
		c.Files.Cats = v
	}
	if v := os.Getenv("TOOLBOX_FRONTEND"); v != "" {
		c.Assistant.Frontend = v
	}
	if v := os.Getenv("TOOLBOX_LOG_DIR"); v != "" {
		c.Log.Dir = v
		c.Log.Enabled = true
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Files     *rawFiles     `yaml:"files"`
	Assistant *rawAssistant `yaml:"assistant"`
	Log       *rawLog       `yaml:"log"`
}

type rawFiles struct {
	Salary *string `yaml:"salary"`
	Cats   *string `yaml:"cats"`
}

type rawAssistant struct {
	Frontend   *string `yaml:"frontend"`
	Permissive *bool   `yaml:"permissive"`
	Prompt     *string `yaml:"prompt"`
}

type rawLog struct {
	Enabled *bool   `yaml:"enabled"`
	Dir     *string `yaml:"dir"`
	Debug   *bool   `yaml:"debug"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if f := layer.Files; f != nil {
		setString(&c.Files.Salary, f.Salary)
		setString(&c.Files.Cats, f.Cats)
	}
	if a := layer.Assistant; a != nil {
		setString(&c.Assistant.Frontend, a.Frontend)
		setBool(&c.Assistant.Permissive, a.Permissive)
		setString(&c.Assistant.Prompt, a.Prompt)
	}
	if l := layer.Log; l != nil {
		setBool(&c.Log.Enabled, l.Enabled)
		setString(&c.Log.Dir, l.Dir)
		setBool(&c.Log.Debug, l.Debug)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
