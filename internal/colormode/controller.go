package colormode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config holds everything a Controller is built from.
type Config struct {
	Modes   *ModeSet
	Default string // value of the initial mode when nothing is stored

	Source IconSource  // where PrefetchIcons fetches from
	Cache  *IconCache  // shared cache; a private one is created when nil
	Store  ModeStore   // optional persistence hook
	Mounts Mounts      // nil means headless: renders report missing mounts
	Logger *log.Logger // defaults to log.Default()

	// MaxConcurrency bounds concurrent icon fetches. Zero means one
	// fetch per mode.
	MaxConcurrency int
}

// Controller tracks the active color mode and the open/closed state of the
// mode menu, and renders both into externally owned mount points.
type Controller struct {
	modes   *ModeSet
	source  IconSource
	icons   *IconCache
	store   ModeStore
	mounts  Mounts
	logger  *log.Logger
	maxConc int

	mu        sync.Mutex
	active    Mode
	menuOpen  bool
	closed    bool
	observers []func(Mode)

	// renderMu serializes element writes. Each write re-checks closed
	// while holding it, and Close waits for a write in progress.
	renderMu sync.Mutex
}

// New builds a controller. The initial mode is the stored one when the store
// holds a valid value, otherwise cfg.Default. The menu starts collapsed.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Modes == nil {
		return nil, fmt.Errorf("color modes are required")
	}
	def, ok := cfg.Modes.Lookup(cfg.Default)
	if !ok {
		return nil, fmt.Errorf("default color mode %q is not configured", cfg.Default)
	}

	c := &Controller{
		modes:   cfg.Modes,
		source:  cfg.Source,
		icons:   cfg.Cache,
		store:   cfg.Store,
		mounts:  cfg.Mounts,
		logger:  cfg.Logger,
		maxConc: cfg.MaxConcurrency,
		active:  def,
	}
	if c.icons == nil {
		c.icons = NewIconCache()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.maxConc <= 0 {
		c.maxConc = cfg.Modes.Len()
	}

	if c.store != nil {
		c.restore(ctx)
	}
	return c, nil
}

func (c *Controller) restore(ctx context.Context) {
	value, ok, err := c.store.StoredMode(ctx)
	if err != nil {
		c.logger.Printf("colormode: reading stored mode: %v", err)
		return
	}
	if !ok {
		return
	}
	m, ok := c.modes.Lookup(value)
	if !ok {
		c.logger.Printf("colormode: ignoring stored mode: %v", &InvalidModeError{Value: value})
		return
	}
	c.active = m
}

// Modes returns the configured mode set.
func (c *Controller) Modes() *ModeSet { return c.modes }

// Cache returns the icon cache the controller reads from.
func (c *Controller) Cache() *IconCache { return c.icons }

// ActiveMode returns the currently active mode.
func (c *Controller) ActiveMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// MenuOpen reports whether the mode menu is expanded.
func (c *Controller) MenuOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.menuOpen
}

// OnChange registers fn to be called after every successful SetActiveMode.
func (c *Controller) OnChange(fn func(Mode)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Icon returns the cached icon markup for a mode. ok is false while the icon
// has not been loaded; Icon never fetches.
func (c *Controller) Icon(value string) (markup string, ok bool) {
	return c.icons.Get(value)
}

// PrefetchIcons fetches the icon of every mode not yet cached, concurrently.
// A failed fetch is logged and leaves its entry empty without affecting the
// others; all failures are returned joined. When the fetches finish the
// toggle and item icons are re-rendered. Run it on its own goroutine for
// fire-and-forget loading.
func (c *Controller) PrefetchIcons(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("no icon source configured")
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(c.maxConc)

	for _, m := range c.modes.All() {
		if _, ok := c.icons.Get(m.Value); ok {
			continue
		}
		g.Go(func() error {
			markup, err := c.source.FetchIcon(ctx, m.Icon)
			if err != nil {
				fetchErr := &IconFetchError{Mode: m.Value, Locator: m.Icon, Err: err}
				c.logger.Printf("colormode: %v", fetchErr)
				mu.Lock()
				errs = append(errs, fetchErr)
				mu.Unlock()
				return nil
			}

			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed {
				return nil
			}
			c.icons.Put(m.Value, markup)
			return nil
		})
	}
	_ = g.Wait()

	if !c.isClosed() {
		// Mounts may not exist yet; a later Render picks the icons up.
		_ = c.renderToggle()
		_ = c.renderItems()
	}

	return errors.Join(errs...)
}

// SetActiveMode makes value the active mode, persists it, notifies
// observers and renders the toggle icon once. An unknown value is logged and
// returned as *InvalidModeError with the active mode unchanged.
func (c *Controller) SetActiveMode(ctx context.Context, value string) error {
	m, ok := c.modes.Lookup(value)
	if !ok {
		err := &InvalidModeError{Value: value}
		c.logger.Printf("colormode: %v", err)
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.active = m
	observers := append([]func(Mode){}, c.observers...)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.StoreMode(ctx, m.Value); err != nil {
			c.logger.Printf("colormode: storing mode %q: %v", m.Value, err)
		}
	}
	for _, fn := range observers {
		fn(m)
	}

	if err := c.renderToggle(); err != nil {
		c.logger.Printf("colormode: %v", err)
	}
	return nil
}

// SelectMode is the handler for a dropdown item: SetActiveMode followed by
// CloseMenu. The menu closes even when value is invalid.
func (c *Controller) SelectMode(ctx context.Context, value string) error {
	err := c.SetActiveMode(ctx, value)
	c.CloseMenu()
	return err
}

// OpenMenu expands the menu. It writes to the menu element only when the
// state changes.
func (c *Controller) OpenMenu() { c.setMenu(true) }

// CloseMenu collapses the menu. Closing a closed menu is a no-op.
func (c *Controller) CloseMenu() { c.setMenu(false) }

// ToggleMenu flips the menu state and returns the new state.
func (c *Controller) ToggleMenu() bool {
	c.mu.Lock()
	if c.closed {
		open := c.menuOpen
		c.mu.Unlock()
		return open
	}
	c.menuOpen = !c.menuOpen
	open := c.menuOpen
	c.mu.Unlock()

	c.writeMenu()
	return open
}

func (c *Controller) setMenu(open bool) {
	c.mu.Lock()
	if c.closed || c.menuOpen == open {
		c.mu.Unlock()
		return
	}
	c.menuOpen = open
	c.mu.Unlock()

	c.writeMenu()
}

// writeMenu writes the current menu state, so concurrent transitions leave
// the element matching MenuOpen.
func (c *Controller) writeMenu() {
	el, err := c.menuElement()
	if err != nil {
		if !c.isClosed() {
			c.logger.Printf("colormode: %v", err)
		}
		return
	}
	c.write(func() error {
		el.SetExpanded(c.MenuOpen())
		return nil
	})
}

// Render writes the full widget state: toggle icon, menu expansion and every
// item icon. Missing mount points are skipped and returned joined.
func (c *Controller) Render() error {
	if c.isClosed() {
		return nil
	}

	var errs []error
	if err := c.renderToggle(); err != nil {
		errs = append(errs, err)
	}
	if el, err := c.menuElement(); err != nil {
		errs = append(errs, err)
	} else {
		c.write(func() error {
			el.SetExpanded(c.MenuOpen())
			return nil
		})
	}
	errs = append(errs, c.renderItems()...)
	if c.isClosed() {
		return nil
	}
	return errors.Join(errs...)
}

// Close tears the controller down. Fetches completing afterwards and later
// operations do not touch the cache or any element. Close waits for an
// element write in progress, so it must not be called from an Element
// method. Mount lookups may call it.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.observers = nil
	c.mu.Unlock()

	// Wait out a write in progress.
	c.renderMu.Lock()
	c.renderMu.Unlock()
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// write runs fn under renderMu unless the controller is closed.
func (c *Controller) write(fn func() error) error {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if c.isClosed() {
		return nil
	}
	return fn()
}

// renderToggle shows the active mode's icon in the toggle button. The mode
// is read at write time, so the last of several concurrent renders wins
// with the current mode. An icon that has not been loaded renders blank.
func (c *Controller) renderToggle() error {
	var el Element
	if c.mounts != nil {
		if e, ok := c.mounts.Toggle(); ok {
			el = e
		}
	}
	if el == nil {
		if c.isClosed() {
			return nil
		}
		return &MissingMountPointError{Mount: MountToggle}
	}
	return c.write(func() error {
		markup, _ := c.icons.Get(c.ActiveMode().Value)
		if err := el.SetContent(markup); err != nil {
			return fmt.Errorf("rendering %s icon: %w", MountToggle, err)
		}
		return nil
	})
}

func (c *Controller) renderItems() []error {
	var errs []error
	for _, m := range c.modes.All() {
		var el Element
		if c.mounts != nil {
			if e, ok := c.mounts.Item(m.Value); ok {
				el = e
			}
		}
		if el == nil {
			errs = append(errs, &MissingMountPointError{Mount: MountItem, Value: m.Value})
			continue
		}
		err := c.write(func() error {
			markup, _ := c.icons.Get(m.Value)
			return el.SetContent(markup)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("rendering %s icon for %q: %w", MountItem, m.Value, err))
		}
	}
	if c.isClosed() {
		return nil
	}
	return errs
}

func (c *Controller) menuElement() (Element, error) {
	var el Element
	if c.mounts != nil {
		if e, ok := c.mounts.Menu(); ok {
			el = e
		}
	}
	if el == nil {
		return nil, &MissingMountPointError{Mount: MountMenu}
	}
	return el, nil
}
