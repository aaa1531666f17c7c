// Package config loads gorex settings from a YAML file. Command line flags
// take precedence over anything set here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mfroeh/gorex/regex"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config mirrors the config file:
//
//	color: auto
//	step_limit: 1000000
//	ignore_case: false
//	multiline: false
//	max_count: -1
type Config struct {
	Color      string `yaml:"color"`
	StepLimit  int    `yaml:"step_limit"`
	IgnoreCase bool   `yaml:"ignore_case"`
	Multiline  bool   `yaml:"multiline"`
	// MaxCount limits the matches reported per line, -1 for all.
	MaxCount int `yaml:"max_count"`
}

func Default() Config {
	return Config{Color: ColorAuto, MaxCount: -1}
}

// Path returns the default location of the config file,
// $XDG_CONFIG_HOME/gorex/config.yaml on Unix.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gorex", "config.yaml"), nil
}

// Load reads the config file at path. An empty path selects the default
// location, which does not need to exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = Path(); err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config file. Unknown keys are an error, missing keys keep
// their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q, must be one of auto, always or never", c.Color)
	}
	if c.MaxCount < -1 {
		return fmt.Errorf("invalid max_count %d", c.MaxCount)
	}
	return nil
}

// RegexOptions returns the compile and search options the config asks for.
func (c Config) RegexOptions() regex.Options {
	return regex.Options{
		IgnoreCase: c.IgnoreCase,
		Multiline:  c.Multiline,
		StepLimit:  c.StepLimit,
	}
}
