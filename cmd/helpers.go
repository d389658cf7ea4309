package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/config"
	"github.com/ziadkadry99/docskin/internal/icons"
	"github.com/ziadkadry99/docskin/internal/page"
	"github.com/ziadkadry99/docskin/internal/progress"
	"github.com/ziadkadry99/docskin/internal/site"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docskin init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger returns the logger for library components. Their diagnostics
// (missing mounts, failed icon fetches) are only shown with --verbose.
func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// iconSourceFromConfig loads icons over HTTP when icon_base_url is set and
// from the built site otherwise.
func iconSourceFromConfig(cfg *config.Config) colormode.IconSource {
	if cfg.IconBaseURL != "" {
		return icons.SVGOnly(icons.NewHTTPSource(cfg.IconBaseURL, cfg.Timeout()))
	}
	return icons.SVGOnly(icons.FSSource{FS: os.DirFS(cfg.SiteDir)})
}

// newCustomizer builds a site customizer from the config. Pages load the
// live client from liveScript when it is set and carry the static client
// otherwise.
func newCustomizer(cfg *config.Config, source colormode.IconSource, reporter progress.Reporter, liveScript string) (*site.Customizer, error) {
	modes, err := cfg.ModeSet()
	if err != nil {
		return nil, err
	}
	return site.New(site.Config{
		SiteDir:        cfg.SiteDir,
		OutputDir:      cfg.OutputDir,
		Include:        cfg.Include,
		Exclude:        cfg.Exclude,
		Modes:          modes,
		DefaultMode:    cfg.DefaultMode,
		Source:         source,
		MaxConcurrency: cfg.MaxConcurrency,
		Page: page.Options{
			Fonts:      cfg.Fonts,
			EditLabel:  cfg.EditLabel,
			FooterNote: cfg.FooterNote,
			Header:     cfg.HeaderOptions(modes.All()),
			LiveScript: liveScript,
		},
		Reporter: reporter,
		Logger:   newLogger(),
	})
}
