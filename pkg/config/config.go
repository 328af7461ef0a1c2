// Package config loads facetlayout settings from TOML or YAML files.
//
// Every field has a default, so a config file only needs the values it
// changes:
//
//	[pencil]
//	object_distance = 16
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/pencil"
)

// Config is the complete facetlayout configuration.
type Config struct {
	Pencil pencil.Sizes `toml:"pencil" yaml:"pencil" json:"pencil"`
	Layout LayoutConfig `toml:"layout" yaml:"layout" json:"layout"`
	Render RenderConfig `toml:"render" yaml:"render" json:"render"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache" json:"cache"`
	Server ServerConfig `toml:"server" yaml:"server" json:"server"`
}

// LayoutConfig selects the layouter.
type LayoutConfig struct {
	// Variant forces a layouter variant ("standard", "void", "communication",
	// "1d"). Empty derives it from the diagram type.
	Variant string `toml:"variant" yaml:"variant" json:"variant"`
}

// RenderConfig configures preview rendering.
type RenderConfig struct {
	// Renderer is "svg" (built in) or "dot" (graphviz).
	Renderer string `toml:"renderer" yaml:"renderer" json:"renderer"`
	// Formats are the default output formats: svg, png, pdf.
	Formats []string `toml:"formats" yaml:"formats" json:"formats"`
	// Padding around the diagram bounds.
	Padding float64 `toml:"padding" yaml:"padding" json:"padding"`
	// ShowImplicit draws implicit relationships as dashed lines.
	ShowImplicit bool `toml:"show_implicit" yaml:"show_implicit" json:"show_implicit"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is "file", "redis" or "none".
	Backend string `toml:"backend" yaml:"backend" json:"backend"`
	// Dir is the file cache directory; empty uses the user cache directory.
	Dir string `toml:"dir" yaml:"dir" json:"dir"`
	// URL is the redis URL for the redis backend.
	URL string `toml:"url" yaml:"url" json:"url"`
	// Prefix scopes every key.
	Prefix string `toml:"prefix" yaml:"prefix" json:"prefix"`
	// TTL is the lifetime of cached layouts and artifacts.
	TTL Duration `toml:"ttl" yaml:"ttl" json:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr" json:"addr"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	// MaxBodyBytes limits request documents.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`
}

// Duration is a time.Duration written as "90s" or "168h" in config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Pencil: pencil.DefaultSizes(),
		Render: RenderConfig{
			Renderer: "svg",
			Formats:  []string{"svg"},
			Padding:  20,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration(7 * 24 * time.Hour),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
			MaxBodyBytes: 8 << 20,
		},
	}
}

var (
	variants  = []string{"", "standard", "void", "communication", "1d"}
	renderers = []string{"svg", "dot"}
	formats   = []string{"svg", "png", "pdf"}
	backends  = []string{"file", "redis", "none"}
)

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Pencil.Validate(); err != nil {
		return err
	}
	if !oneOf(c.Layout.Variant, variants) {
		return invalid("layout.variant: unknown variant %q", c.Layout.Variant)
	}
	if !oneOf(c.Render.Renderer, renderers) {
		return invalid("render.renderer: unknown renderer %q", c.Render.Renderer)
	}
	for _, f := range c.Render.Formats {
		if !oneOf(f, formats) {
			return invalid("render.formats: unknown format %q", f)
		}
	}
	if c.Render.Padding < 0 {
		return invalid("render.padding must not be negative")
	}
	if !oneOf(c.Cache.Backend, backends) {
		return invalid("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.URL == "" {
		return invalid("cache.url is required for the redis backend")
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes must be positive")
	}
	return nil
}

// Load reads a config file on top of the defaults. The format follows the
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch format(path) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "config format of %s (use .toml or .yaml)", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path in the format given by its extension.
func (c *Config) Save(path string) error {
	data, err := c.Encode(format(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Encode serializes c as "toml" or "yaml".
func (c *Config) Encode(format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "config format %q", format)
	}
	return buf.Bytes(), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/facetlayout/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "facetlayout", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "facetlayout.toml")
	}
	return filepath.Join(home, ".config", "facetlayout", "config.toml")
}

// LoadOrDefault loads path, or DefaultPath when path is empty. A missing
// default file yields the defaults; a missing explicit file is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(DefaultPath())
	if apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return apperrors.New(apperrors.ErrCodeInvalidConfig, format, args...)
}
