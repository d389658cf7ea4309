package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/page"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCSKIN_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCSKIN_*). A double underscore selects a
// nested key: DOCSKIN_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Configured lists replace the defaults instead of merging into them.
	if k.Exists("include") {
		cfg.Include = nil
	}
	if k.Exists("exclude") {
		cfg.Exclude = nil
	}
	if k.Exists("modes") {
		cfg.Modes = nil
	}
	if k.Exists("fonts") {
		cfg.Fonts = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return fmt.Errorf("site_dir is required")
	}

	modes, err := c.ModeSet()
	if err != nil {
		return err
	}
	if _, ok := modes.Lookup(c.DefaultMode); !ok {
		return fmt.Errorf("default_mode %q is not one of the configured modes", c.DefaultMode)
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must be non-negative")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	for _, l := range c.Header.NavLinks {
		if l.Name == "" {
			return fmt.Errorf("header.nav_links: every link needs a name")
		}
		if l.Href == "" && len(l.Items) == 0 {
			return fmt.Errorf("header.nav_links: %q needs an href or items", l.Name)
		}
	}

	return nil
}

// ModeSet builds the color-mode set from the configured modes.
func (c *Config) ModeSet() (*colormode.ModeSet, error) {
	modes := make([]colormode.Mode, len(c.Modes))
	for i, m := range c.Modes {
		modes[i] = colormode.Mode{Name: m.Name, Value: m.Value, Icon: m.Icon}
	}
	set, err := colormode.NewModeSet(modes)
	if err != nil {
		return nil, fmt.Errorf("modes: %w", err)
	}
	return set, nil
}

// Timeout returns the icon fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// HeaderOptions converts the header settings for page.BuildHeader.
func (c *Config) HeaderOptions(modes []colormode.Mode) page.HeaderOptions {
	return page.HeaderOptions{
		HomeURL:  c.Header.HomeURL,
		DocsURL:  c.Header.DocsURL,
		LogoURL:  c.Header.Logo,
		NavLinks: navLinks(c.Header.NavLinks),
		Modes:    modes,
	}
}

func navLinks(in []NavLinkConfig) []page.NavLink {
	if len(in) == 0 {
		return nil
	}
	out := make([]page.NavLink, len(in))
	for i, l := range in {
		out[i] = page.NavLink{Name: l.Name, Href: l.Href, Items: navLinks(l.Items)}
	}
	return out
}
