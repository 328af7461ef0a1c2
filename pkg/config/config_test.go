package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero distance", func(c *Config) { c.Pencil.ObjectDistance = 0 }},
		{"unknown variant", func(c *Config) { c.Layout.Variant = "radial" }},
		{"unknown renderer", func(c *Config) { c.Render.Renderer = "canvas" }},
		{"unknown format", func(c *Config) { c.Render.Formats = []string{"svg", "gif"} }},
		{"negative padding", func(c *Config) { c.Render.Padding = -1 }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -1 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"no body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "config.toml", `
[pencil]
object_distance = 16

[cache]
backend = "redis"
url = "redis://localhost:6379/1"
ttl = "1h"
`},
		{"yaml", "config.yaml", `
pencil:
  object_distance: 16
cache:
  backend: redis
  url: redis://localhost:6379/1
  ttl: 1h
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Pencil.ObjectDistance != 16 {
				t.Errorf("ObjectDistance = %g, want 16", cfg.Pencil.ObjectDistance)
			}
			if cfg.Pencil.LineWidth != 1 {
				t.Errorf("LineWidth = %g, want default 1", cfg.Pencil.LineWidth)
			}
			if cfg.Cache.Backend != "redis" || cfg.Cache.URL != "redis://localhost:6379/1" {
				t.Errorf("Cache = %+v", cfg.Cache)
			}
			if cfg.Cache.TTL.Std() != time.Hour {
				t.Errorf("TTL = %v, want 1h", cfg.Cache.TTL.Std())
			}
			if cfg.Server.Addr != ":8080" {
				t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		code apperrors.Code
	}{
		{"missing", filepath.Join(dir, "nope.toml"), apperrors.ErrCodeFileNotFound},
		{"bad toml", write("bad.toml", "[pencil\n"), apperrors.ErrCodeInvalidConfig},
		{"bad ttl", write("ttl.yaml", "cache:\n  ttl: soon\n"), apperrors.ErrCodeInvalidConfig},
		{"invalid values", write("neg.toml", "[pencil]\nline_width = -1\n"), apperrors.ErrCodeInvalidConfig},
		{"unknown extension", write("config.ini", "x=1"), apperrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("Load error code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.toml", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", name)
			cfg := Default()
			cfg.Pencil.ObjectDistance = 20
			cfg.Render.Formats = []string{"svg", "png"}
			cfg.Cache.TTL = Duration(90 * time.Minute)
			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Pencil.ObjectDistance != 20 {
				t.Errorf("ObjectDistance = %g, want 20", got.Pencil.ObjectDistance)
			}
			if len(got.Render.Formats) != 2 || got.Render.Formats[1] != "png" {
				t.Errorf("Formats = %v", got.Render.Formats)
			}
			if got.Cache.TTL.Std() != 90*time.Minute {
				t.Errorf("TTL = %v, want 1h30m", got.Cache.TTL.Std())
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault without a file: %v", err)
	}
	if cfg.Pencil != Default().Pencil {
		t.Errorf("expected defaults, got %+v", cfg.Pencil)
	}

	if err := os.MkdirAll(filepath.Dir(DefaultPath()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(DefaultPath(), []byte("[pencil]\nobject_distance = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Pencil.ObjectDistance != 30 {
		t.Errorf("ObjectDistance = %g, want 30 from the default path", cfg.Pencil.ObjectDistance)
	}

	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("an explicit missing file should be an error")
	}
}
