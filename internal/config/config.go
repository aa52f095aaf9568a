package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/viz"
)

const (
	DefaultColor      = "#000000"
	DefaultBackground = "#ffffff"
	DefaultOpacity    = 0.8
	DefaultRadius     = 0.75
	DefaultOutput     = "gumowski.png"
	DefaultExportFile = "gumowski-results.csv"
)

// Config is one render request as stored on disk.
type Config struct {
	Variant    dynamo.Variant `yaml:"variant"`
	Params     dynamo.Params  `yaml:"params"`
	Initial    dynamo.Point   `yaml:"initial"`
	Iterations int            `yaml:"iterations"`
	Skip       int            `yaml:"skip"`
	Viewport   viz.Viewport   `yaml:"viewport"`
	Style      StyleConfig    `yaml:"style"`
	Output     string         `yaml:"output"`
	Seed       int64          `yaml:"seed"`
}

type StyleConfig struct {
	Color      string  `yaml:"color"`
	Background string  `yaml:"background"`
	Opacity    float64 `yaml:"opacity"`
	Radius     float64 `yaml:"radius"`
}

func DefaultConfig() *Config {
	gen := dynamo.DefaultConfig()
	return &Config{
		Variant:    dynamo.Standard,
		Params:     ClassicParams,
		Initial:    gen.Initial,
		Iterations: gen.Iterations,
		Viewport:   viz.DefaultViewport(),
		Style: StyleConfig{
			Color:      DefaultColor,
			Background: DefaultBackground,
			Opacity:    DefaultOpacity,
			Radius:     DefaultRadius,
		},
		Output: DefaultOutput,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Merge(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the keys present in the file at path onto cfg.
func Merge(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Generation() dynamo.Config {
	return dynamo.Config{Initial: c.Initial, Iterations: c.Iterations, Skip: c.Skip}
}

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.Generation().Validate(); err != nil {
		return err
	}
	if _, err := c.Style.Resolve(); err != nil {
		return err
	}
	return c.Viewport.Validate()
}

// RenderStyle resolves the colour strings into a viz.Style.
func (c *Config) RenderStyle() (viz.Style, error) {
	return c.Style.Resolve()
}

func (s StyleConfig) Resolve() (viz.Style, error) {
	fg, err := ParseColor(s.Color, s.Opacity)
	if err != nil {
		return viz.Style{}, fmt.Errorf("style color: %w", err)
	}
	bg, err := ParseColor(s.Background, 1)
	if err != nil {
		return viz.Style{}, fmt.Errorf("style background: %w", err)
	}
	style := viz.Style{Color: fg, Background: bg, Radius: s.Radius}
	if err := style.Validate(); err != nil {
		return viz.Style{}, fmt.Errorf("style: %w", err)
	}
	return style, nil
}

// ApplyPreset copies a preset's parameters and variant into the config.
func (c *Config) ApplyPreset(name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %s (see `mirasim presets`)", name)
	}
	c.Params = p.Params
	c.Variant = p.Variant
	return nil
}
