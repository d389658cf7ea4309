package colormode

import "context"

// MountPoint names an externally owned element the controller renders into.
type MountPoint string

const (
	MountToggle MountPoint = "toggle" // button showing the active mode's icon
	MountMenu   MountPoint = "menu"   // dropdown list container
	MountItem   MountPoint = "item"   // per-mode entry in the dropdown
)

// Element is the only surface the controller needs from a UI element.
type Element interface {
	// SetContent replaces the element's visual content with markup.
	SetContent(markup string) error
	// SetExpanded sets the element's expanded (aria-expanded) state.
	SetExpanded(expanded bool)
}

// Mounts resolves mount points. Each lookup may fail; absence is reported by
// the controller as a *MissingMountPointError.
type Mounts interface {
	Toggle() (Element, bool)
	Menu() (Element, bool)
	Item(value string) (Element, bool)
}

// IconSource retrieves icon markup from a locator.
type IconSource interface {
	FetchIcon(ctx context.Context, locator string) (string, error)
}

// ModeStore persists the chosen mode across page views.
type ModeStore interface {
	// StoredMode returns the persisted value, or ok=false when nothing is stored.
	StoredMode(ctx context.Context) (value string, ok bool, err error)
	StoreMode(ctx context.Context, value string) error
}
