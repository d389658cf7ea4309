package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SiteDir != "_build/html" {
		t.Errorf("expected default site_dir %q, got %q", "_build/html", cfg.SiteDir)
	}
	if cfg.DefaultMode != "system" {
		t.Errorf("expected default mode %q, got %q", "system", cfg.DefaultMode)
	}
	if len(cfg.Modes) != 3 {
		t.Errorf("expected 3 default modes, got %d", len(cfg.Modes))
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("expected default max_concurrency 4, got %d", cfg.MaxConcurrency)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout())
	}
}

func TestDefaultConfigDoesNotShareSlices(t *testing.T) {
	a := DefaultConfig()
	a.Modes[0].Name = "changed"
	a.Exclude[0] = "changed"
	b := DefaultConfig()
	if b.Modes[0].Name == "changed" || b.Exclude[0] == "changed" {
		t.Error("DefaultConfig shares slices between calls")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.docskin.yml")

	original := DefaultConfig()
	original.SiteDir = "site"
	original.DefaultMode = "dark"
	original.Modes = []ModeConfig{
		{Name: "Light", Value: "light", Icon: "/icons/sun.svg"},
		{Name: "Dark", Value: "dark", Icon: "/icons/moon.svg"},
	}
	original.Header = HeaderConfig{
		HomeURL: "https://example.com",
		DocsURL: "https://docs.example.com",
		NavLinks: []NavLinkConfig{
			{Name: "Docs", Href: "https://docs.example.com"},
			{Name: "Community", Items: []NavLinkConfig{
				{Name: "Forum", Href: "https://forum.example.com"},
			}},
		},
	}
	original.Server.AllowAll = true

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.SiteDir != original.SiteDir {
		t.Errorf("site_dir: got %q, want %q", loaded.SiteDir, original.SiteDir)
	}
	if loaded.DefaultMode != "dark" {
		t.Errorf("default_mode: got %q, want dark", loaded.DefaultMode)
	}
	if len(loaded.Modes) != 2 {
		t.Fatalf("modes: got %d, want 2 (configured list must replace defaults)", len(loaded.Modes))
	}
	if loaded.Modes[1] != original.Modes[1] {
		t.Errorf("modes[1]: got %+v, want %+v", loaded.Modes[1], original.Modes[1])
	}
	if len(loaded.Header.NavLinks) != 2 || len(loaded.Header.NavLinks[1].Items) != 1 {
		t.Fatalf("nav_links: got %+v", loaded.Header.NavLinks)
	}
	if loaded.Header.NavLinks[1].Items[0].Href != "https://forum.example.com" {
		t.Errorf("nested nav link: got %+v", loaded.Header.NavLinks[1].Items[0])
	}
	if !loaded.Server.AllowAll {
		t.Error("server.allow_all lost in round trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.SiteDir != "_build/html" {
		t.Errorf("expected default site_dir, got %q", cfg.SiteDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("modes: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("DOCSKIN_DEFAULT_MODE", "dark")
	t.Setenv("DOCSKIN_SERVER__PORT", "9090")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DefaultMode != "dark" {
		t.Errorf("env override failed: got %q, want dark", loaded.DefaultMode)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("nested env override failed: got %d, want 9090", loaded.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty site dir", func(c *Config) { c.SiteDir = "" }, true},
		{"no modes", func(c *Config) { c.Modes = nil }, true},
		{"duplicate mode", func(c *Config) { c.Modes = append(c.Modes, c.Modes[0]) }, true},
		{"unknown default mode", func(c *Config) { c.DefaultMode = "sepia" }, true},
		{"empty default mode", func(c *Config) { c.DefaultMode = "" }, true},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -1 }, true},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"nameless link", func(c *Config) {
			c.Header.NavLinks = []NavLinkConfig{{Href: "/"}}
		}, true},
		{"empty link", func(c *Config) {
			c.Header.NavLinks = []NavLinkConfig{{Name: "Docs"}}
		}, true},
		{"dropdown link", func(c *Config) {
			c.Header.NavLinks = []NavLinkConfig{{Name: "More", Items: []NavLinkConfig{{Name: "A", Href: "/a"}}}}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHeaderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header = HeaderConfig{
		HomeURL: "https://example.com",
		DocsURL: "/docs",
		Logo:    "/logo.svg",
		NavLinks: []NavLinkConfig{
			{Name: "More", Items: []NavLinkConfig{{Name: "Blog", Href: "https://blog.example.com"}}},
		},
	}
	set, err := cfg.ModeSet()
	if err != nil {
		t.Fatal(err)
	}

	opts := cfg.HeaderOptions(set.All())
	if opts.LogoURL != "/logo.svg" || opts.DocsURL != "/docs" {
		t.Errorf("unexpected header options: %+v", opts)
	}
	if len(opts.NavLinks) != 1 || len(opts.NavLinks[0].Items) != 1 {
		t.Fatalf("nav links not converted: %+v", opts.NavLinks)
	}
	if opts.NavLinks[0].Items[0].Href != "https://blog.example.com" {
		t.Errorf("nested href: got %q", opts.NavLinks[0].Items[0].Href)
	}
	if len(opts.Modes) != 3 {
		t.Errorf("modes: got %d, want 3", len(opts.Modes))
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a/** , ,b.html,")
	if len(got) != 2 || got[0] != "a/**" || got[1] != "b.html" {
		t.Errorf("splitAndTrim = %q", got)
	}
}
