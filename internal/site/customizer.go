package site

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/dom"
	"github.com/ziadkadry99/docskin/internal/page"
	"github.com/ziadkadry99/docskin/internal/progress"
	"github.com/ziadkadry99/docskin/internal/walker"
)

// Config configures a Customizer.
type Config struct {
	SiteDir   string // built HTML site
	OutputDir string // empty rewrites SiteDir in place
	Include   []string
	Exclude   []string

	Modes       *colormode.ModeSet
	DefaultMode string
	Source      colormode.IconSource // icons for the theme widget

	// MaxConcurrency bounds both icon fetches and pages processed at once.
	MaxConcurrency int

	Page     page.Options // Root is filled in per page
	Reporter progress.Reporter
	Logger   *log.Logger
}

// Report summarizes an Apply run.
type Report struct {
	Pages    int      // pages rewritten
	Skipped  int      // pages already customized
	Warnings []string // skipped steps and missing mounts, prefixed with the page path
}

// Customizer rewrites the pages of a built site.
type Customizer struct {
	cfg    Config
	icons  *colormode.IconCache
	logger *log.Logger

	prefetchOnce sync.Once
	prefetchErr  error
}

// New validates cfg and returns a Customizer.
func New(cfg Config) (*Customizer, error) {
	if cfg.SiteDir == "" {
		return nil, fmt.Errorf("site directory is required")
	}
	if cfg.Modes == nil {
		return nil, fmt.Errorf("color modes are required")
	}
	if _, ok := cfg.Modes.Lookup(cfg.DefaultMode); !ok {
		return nil, fmt.Errorf("default color mode %q is not configured", cfg.DefaultMode)
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Reporter == nil {
		cfg.Reporter = progress.Nop{}
	}

	c := &Customizer{
		cfg:    cfg,
		icons:  colormode.NewIconCache(),
		logger: cfg.Logger,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// Icons returns the icon cache shared by every page.
func (c *Customizer) Icons() *colormode.IconCache { return c.icons }

// Modes returns the configured mode set.
func (c *Customizer) Modes() *colormode.ModeSet { return c.cfg.Modes }

// DefaultMode returns the value of the initial mode.
func (c *Customizer) DefaultMode() string { return c.cfg.DefaultMode }

// Prefetch loads every mode icon into the shared cache. It runs once; later
// calls return the first result.
func (c *Customizer) Prefetch(ctx context.Context) error {
	c.prefetchOnce.Do(func() {
		if c.cfg.Source == nil {
			c.prefetchErr = fmt.Errorf("no icon source configured")
			return
		}
		ctl, err := colormode.New(ctx, colormode.Config{
			Modes:          c.cfg.Modes,
			Default:        c.cfg.DefaultMode,
			Source:         c.cfg.Source,
			Cache:          c.icons,
			Logger:         c.logger,
			MaxConcurrency: c.cfg.MaxConcurrency,
		})
		if err != nil {
			c.prefetchErr = err
			return
		}
		defer ctl.Close()
		c.prefetchErr = ctl.PrefetchIcons(ctx)
	})
	return c.prefetchErr
}

// Apply customizes every page under SiteDir matching Include and not
// Exclude. Step failures on a page become warnings; I/O failures abort.
// When OutputDir is set the rest of the site is copied alongside.
func (c *Customizer) Apply(ctx context.Context) (Report, error) {
	var report Report

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: c.cfg.SiteDir,
		Include: c.cfg.Include,
		Exclude: c.cfg.Exclude,
	})
	if err != nil {
		return report, err
	}

	if err := c.Prefetch(ctx); err != nil {
		report.Warnings = append(report.Warnings, "icons: "+err.Error())
	}

	var (
		mu   sync.Mutex
		done int
		g    errgroup.Group
	)
	g.SetLimit(c.cfg.MaxConcurrency)

	c.cfg.Reporter.Start(len(files))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, warnings, err := c.applyFile(ctx, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.RelPath, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if changed {
				report.Pages++
			} else {
				report.Skipped++
			}
			for _, w := range warnings {
				report.Warnings = append(report.Warnings, f.RelPath+": "+w.Error())
			}
			done++
			c.cfg.Reporter.Update(done, f.RelPath)
			return nil
		})
	}
	err = g.Wait()
	c.cfg.Reporter.Finish()
	if err != nil {
		return report, err
	}

	if c.outputDir() != c.siteDir() {
		pages := make(map[string]bool, len(files))
		for _, f := range files {
			pages[f.RelPath] = true
		}
		if err := copyTree(c.siteDir(), c.outputDir(), pages); err != nil {
			return report, err
		}
	}
	return report, nil
}

// applyFile customizes one page. changed is false for pages that were
// already customized; those are copied unchanged when writing elsewhere.
func (c *Customizer) applyFile(ctx context.Context, f walker.FileInfo) (changed bool, warnings []error, err error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return false, nil, err
	}

	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return false, nil, err
	}

	out := data
	if !page.Customized(doc) {
		warnings = c.customize(ctx, doc, f.Root, "")
		s, err := doc.String()
		if err != nil {
			return false, nil, err
		}
		out = []byte(s)
		changed = true
	}

	if !changed && c.outputDir() == c.siteDir() {
		return false, nil, nil
	}
	dst := filepath.Join(c.outputDir(), filepath.FromSlash(f.RelPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, nil, err
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return false, nil, err
	}
	return changed, warnings, nil
}

// RewritePage customizes a single page for serving. relPath locates the
// page within the site and mode selects the active color mode; an empty or
// unknown mode keeps the default and is reported among the warnings.
func (c *Customizer) RewritePage(ctx context.Context, relPath string, html []byte, mode string) ([]byte, []error, error) {
	doc, err := dom.Parse(bytes.NewReader(html))
	if err != nil {
		return nil, nil, err
	}

	// Icons are usually already cached; a failed prefetch leaves them blank.
	_ = c.Prefetch(ctx)

	warnings := c.customize(ctx, doc, walker.RootPrefix(relPath), mode)
	s, err := doc.String()
	if err != nil {
		return nil, warnings, err
	}
	return []byte(s), warnings, nil
}

// customize applies the page rewrites and renders the theme widget with a
// controller bound to doc.
func (c *Customizer) customize(ctx context.Context, doc *dom.Document, root, mode string) []error {
	var warnings []error

	opts := c.cfg.Page
	opts.Root = root
	warnings = append(warnings, splitJoined(page.Apply(doc, opts))...)

	ctl, err := colormode.New(ctx, colormode.Config{
		Modes:   c.cfg.Modes,
		Default: c.cfg.DefaultMode,
		Cache:   c.icons,
		Mounts:  page.ThemeMounts(doc),
		Logger:  c.logger,
	})
	if err != nil {
		return append(warnings, err)
	}
	defer ctl.Close()

	htmlEl := doc.Find("html").First()
	htmlEl.SetAttr(page.ColorModeAttr, ctl.ActiveMode().Value)
	ctl.OnChange(func(m colormode.Mode) {
		htmlEl.SetAttr(page.ColorModeAttr, m.Value)
	})

	if mode != "" && mode != ctl.ActiveMode().Value {
		if err := ctl.SetActiveMode(ctx, mode); err != nil {
			warnings = append(warnings, err)
		}
	}
	warnings = append(warnings, splitJoined(ctl.Render())...)
	return warnings
}

func (c *Customizer) siteDir() string {
	abs, err := filepath.Abs(c.cfg.SiteDir)
	if err != nil {
		return filepath.Clean(c.cfg.SiteDir)
	}
	return abs
}

func (c *Customizer) outputDir() string {
	if c.cfg.OutputDir == "" {
		return c.siteDir()
	}
	abs, err := filepath.Abs(c.cfg.OutputDir)
	if err != nil {
		return filepath.Clean(c.cfg.OutputDir)
	}
	return abs
}

// splitJoined flattens an errors.Join result into its parts.
func splitJoined(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
