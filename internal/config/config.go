// Package config loads settings for the mathexpr command.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathexpr"
)

// Config holds evaluation settings.
type Config struct {
	// Precision is the number of bits of precision for calculations.
	Precision uint `toml:"precision" yaml:"precision"`
	// Format is the number of significant digits to print, or -1 for the
	// fewest that represent results exactly.
	Format int `toml:"format" yaml:"format"`
	// Vars defines variables as expressions. They are evaluated in name
	// order, so each may refer to those whose names sort before it.
	Vars map[string]string `toml:"vars" yaml:"vars"`
}

// Default returns the settings used without a config file.
func Default() *Config {
	return &Config{Precision: 64, Format: -1}
}

// Load reads a config file. The format is chosen by extension: .toml, .yaml,
// or .yml. Settings absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses config text in the format named by ext.
func Decode(b []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(b)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Precision == 0 {
		return fmt.Errorf("precision must be positive")
	}
	if cfg.Format < -1 || cfg.Format == 0 {
		return fmt.Errorf("format must be a positive number of digits or -1, not %d", cfg.Format)
	}
	for name := range cfg.Vars {
		if mathexpr.IsKeyword(name) {
			return &mathexpr.ReservedError{Name: name}
		}
	}
	return nil
}

// Bind evaluates the config's variables with ns and defines them in s.
func (cfg *Config) Bind(ns mathexpr.Namespace, s mathexpr.Scope) error {
	names := make([]string, 0, len(cfg.Vars))
	for name := range cfg.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := mathexpr.EvalString(cfg.Vars[name], ns, s)
		if err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		s.Set(name, v)
	}
	return nil
}
