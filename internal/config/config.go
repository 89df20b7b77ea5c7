package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Known tokenizer backends.
const (
	BackendTiktoken  = "tiktoken"
	BackendWordPiece = "wordpiece"
	BackendHF        = "hf"
)

// Sample is a display label paired with the text it stands for.
type Sample struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// Model names a tokenizer to compare.
type Model struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Backend string `yaml:"backend"`
	Color   string `yaml:"color"`
	// Encoding overrides the tiktoken encoding derived from ID.
	Encoding string `yaml:"encoding,omitempty"`
}

// Output controls the rendered figure.
type Output struct {
	Path     string  `yaml:"path"`
	DPI      int     `yaml:"dpi"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// Config is the tokviz configuration file.
type Config struct {
	Samples       []Sample `yaml:"samples"`
	BreakdownText string   `yaml:"breakdown_text"`
	Models        []Model  `yaml:"models"`
	Output        Output   `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, err := parse(defaultYAML, Config{})
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// Parse decodes YAML over the built-in defaults and validates the result.
// A list present in data replaces the default list.
func Parse(data []byte) (Config, error) {
	return parse(data, Default())
}

func parse(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// UserPath returns ~/.config/tokviz/config.yaml (platform equivalent), or ""
// when no user config directory exists.
func UserPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tokviz", "config.yaml")
}

// Resolve loads path when set, else the user config file when it exists,
// else the built-in default.
func Resolve(path string) (Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	if up := UserPath(); up != "" {
		if _, err := os.Stat(up); err == nil {
			cfg, err := Load(up)
			return cfg, up, err
		}
	}
	return Default(), "", nil
}

// Validate checks the config for structural problems.
func (c Config) Validate() error {
	if len(c.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalid)
	}
	for i, s := range c.Samples {
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("%w: sample %d has no label", ErrInvalid, i)
		}
		if s.Text == "" {
			return fmt.Errorf("%w: sample %q has no text", ErrInvalid, s.Label)
		}
	}
	if c.BreakdownText == "" {
		return fmt.Errorf("%w: breakdown_text is empty", ErrInvalid)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("%w: no models", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("%w: model %d has no name", ErrInvalid, i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate model name %q", ErrInvalid, m.Name)
		}
		seen[m.Name] = true
		if m.ID == "" {
			return fmt.Errorf("%w: model %q has no id", ErrInvalid, m.Name)
		}
		switch m.Backend {
		case BackendTiktoken, BackendWordPiece, BackendHF:
		default:
			return fmt.Errorf("%w: model %q: unknown backend %q", ErrInvalid, m.Name, m.Backend)
		}
		if _, err := ParseColor(m.Color); err != nil {
			return fmt.Errorf("%w: model %q: %v", ErrInvalid, m.Name, err)
		}
	}
	if c.Output.Path == "" {
		return fmt.Errorf("%w: output.path is empty", ErrInvalid)
	}
	if c.Output.DPI <= 0 {
		return fmt.Errorf("%w: output.dpi must be positive", ErrInvalid)
	}
	if c.Output.WidthIn <= 0 || c.Output.HeightIn <= 0 {
		return fmt.Errorf("%w: output size must be positive", ErrInvalid)
	}
	return nil
}

// ParseColor parses a "#RRGGBB" hex color.
func ParseColor(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
