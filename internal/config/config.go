// Package config handles configuration loading for notegraph.
// It supports YAML config files, a local .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/notegraph/internal/graph"
)

// EnvPrefix is the prefix of every environment override,
// e.g. NOTEGRAPH_CHART_WIDTH.
const EnvPrefix = "NOTEGRAPH"

// DefaultConfigFile is where SaveToFile writes when no file was loaded.
const DefaultConfigFile = "config/config.yaml"

// Config represents the complete application configuration.
type Config struct {
	Chart   ChartConfig   `mapstructure:"chart"   yaml:"chart"   json:"chart"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"  json:"render"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"     json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// File is the config file the values were read from, if any.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// ChartConfig holds canvas geometry and rendering options for charts.
type ChartConfig struct {
	Width         int         `mapstructure:"width"           yaml:"width"           json:"width"`
	Height        int         `mapstructure:"height"          yaml:"height"          json:"height"`
	PadLeft       int         `mapstructure:"pad_left"        yaml:"pad_left"        json:"pad_left"`
	PadRight      int         `mapstructure:"pad_right"       yaml:"pad_right"       json:"pad_right"`
	PadTop        int         `mapstructure:"pad_top"         yaml:"pad_top"         json:"pad_top"`
	PadBottom     int         `mapstructure:"pad_bottom"      yaml:"pad_bottom"      json:"pad_bottom"`
	TitleHeight   int         `mapstructure:"title_height"    yaml:"title_height"    json:"title_height"` // extra height for a title row
	TitlePad      int         `mapstructure:"title_pad"       yaml:"title_pad"       json:"title_pad"`    // extra top padding for a title row
	Grid          bool        `mapstructure:"grid"            yaml:"grid"            json:"grid"`         // grid without the ';' flag
	FilledArea    bool        `mapstructure:"filled_area"     yaml:"filled_area"     json:"filled_area"`
	MaxTickLabels int         `mapstructure:"max_tick_labels" yaml:"max_tick_labels" json:"max_tick_labels"`
	TargetTicks   int         `mapstructure:"target_ticks"    yaml:"target_ticks"    json:"target_ticks"`
	Palette       []string    `mapstructure:"palette"         yaml:"palette"         json:"palette"`
	Theme         ThemeConfig `mapstructure:"theme"           yaml:"theme"           json:"theme"`
}

// ThemeConfig holds non-series colors.
type ThemeConfig struct {
	Background   string `mapstructure:"background"    yaml:"background"    json:"background"`
	Grid         string `mapstructure:"grid"          yaml:"grid"          json:"grid"`
	Axis         string `mapstructure:"axis"          yaml:"axis"          json:"axis"`
	Label        string `mapstructure:"label"         yaml:"label"         json:"label"`
	Title        string `mapstructure:"title"         yaml:"title"         json:"title"`
	FontFamily   string `mapstructure:"font_family"   yaml:"font_family"   json:"font_family"`
	CornerRadius int    `mapstructure:"corner_radius" yaml:"corner_radius" json:"corner_radius"`
}

// RenderConfig holds batch rendering settings for the CLI.
type RenderConfig struct {
	Workers int  `mapstructure:"workers" yaml:"workers" json:"workers"` // files rendered concurrently
	HTML    bool `mapstructure:"html"    yaml:"html"    json:"html"`    // treat inputs as HTML documents
}

// APIConfig holds preview server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	ServeUI     bool     `mapstructure:"serve_ui"     yaml:"serve_ui"     json:"serve_ui"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.notegraph/config.yaml (home directory)
//  3. /etc/notegraph/config.yaml (system)
//
// A .env file in the working directory is loaded first; environment
// variables override config file values.
// Format: NOTEGRAPH_<SECTION>_<KEY>, e.g., NOTEGRAPH_CHART_WIDTH
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".notegraph"))
	v.AddConfigPath("/etc/notegraph")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults alone always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads ./.env into the process environment. Variables already
// set are left alone; a missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	d := graph.DefaultOptions()

	// Chart defaults
	v.SetDefault("chart.width", d.Canvas.Width)
	v.SetDefault("chart.height", d.Canvas.Height)
	v.SetDefault("chart.pad_left", d.Canvas.PadLeft)
	v.SetDefault("chart.pad_right", d.Canvas.PadRight)
	v.SetDefault("chart.pad_top", d.Canvas.PadTop)
	v.SetDefault("chart.pad_bottom", d.Canvas.PadBottom)
	v.SetDefault("chart.title_height", d.Canvas.TitleHeight)
	v.SetDefault("chart.title_pad", d.Canvas.TitlePad)
	v.SetDefault("chart.grid", d.GridEnabled)
	v.SetDefault("chart.filled_area", d.ShowFilledArea)
	v.SetDefault("chart.max_tick_labels", d.MaxTickLabels)
	v.SetDefault("chart.target_ticks", d.TargetTicks)
	v.SetDefault("chart.palette", d.Palette)
	v.SetDefault("chart.theme.background", d.Theme.Background)
	v.SetDefault("chart.theme.grid", d.Theme.Grid)
	v.SetDefault("chart.theme.axis", d.Theme.Axis)
	v.SetDefault("chart.theme.label", d.Theme.Label)
	v.SetDefault("chart.theme.title", d.Theme.Title)
	v.SetDefault("chart.theme.font_family", d.Theme.FontFamily)
	v.SetDefault("chart.theme.corner_radius", d.Theme.CornerRadius)

	// Render defaults
	v.SetDefault("render.workers", 4)
	v.SetDefault("render.html", false)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.serve_ui", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that the configuration can produce a chart.
func (c *Config) Validate() error {
	ch := c.Chart
	if ch.Width <= ch.PadLeft+ch.PadRight {
		return fmt.Errorf("chart.width %d leaves no room between paddings %d+%d", ch.Width, ch.PadLeft, ch.PadRight)
	}
	if ch.Height <= ch.PadTop+ch.PadBottom {
		return fmt.Errorf("chart.height %d leaves no room between paddings %d+%d", ch.Height, ch.PadTop, ch.PadBottom)
	}
	if ch.MaxTickLabels < 2 {
		return fmt.Errorf("chart.max_tick_labels must be at least 2, got %d", ch.MaxTickLabels)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be at least 1, got %d", c.Render.Workers)
	}
	return nil
}

// GraphOptions converts the chart section into renderer options.
func (c *Config) GraphOptions() graph.Options {
	ch := c.Chart
	return graph.Options{
		Canvas: graph.Canvas{
			Width:       ch.Width,
			Height:      ch.Height,
			PadLeft:     ch.PadLeft,
			PadRight:    ch.PadRight,
			PadTop:      ch.PadTop,
			PadBottom:   ch.PadBottom,
			TitleHeight: ch.TitleHeight,
			TitlePad:    ch.TitlePad,
		},
		Theme: graph.Theme{
			Background:   ch.Theme.Background,
			Grid:         ch.Theme.Grid,
			Axis:         ch.Theme.Axis,
			Label:        ch.Theme.Label,
			Title:        ch.Theme.Title,
			FontFamily:   ch.Theme.FontFamily,
			CornerRadius: ch.Theme.CornerRadius,
		},
		Palette:        append([]string(nil), ch.Palette...),
		GridEnabled:    ch.Grid,
		ShowFilledArea: ch.FilledArea,
		MaxTickLabels:  ch.MaxTickLabels,
		TargetTicks:    ch.TargetTicks,
	}
}

// FilePath returns the file the config was loaded from, or
// DefaultConfigFile when it came from defaults and the environment only.
func (c *Config) FilePath() string {
	if c.File != "" {
		return c.File
	}
	return DefaultConfigFile
}

// SaveToFile writes cfg as YAML to path, creating parent directories.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", path, err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
