package colormode

import "fmt"

// IconFetchError reports that a single mode's icon could not be loaded.
// The cache entry for that mode stays empty.
type IconFetchError struct {
	Mode    string
	Locator string
	Err     error
}

func (e *IconFetchError) Error() string {
	return fmt.Sprintf("fetching icon for mode %q from %s: %v", e.Mode, e.Locator, e.Err)
}

func (e *IconFetchError) Unwrap() error { return e.Err }

// InvalidModeError reports a request for a mode outside the configured set.
type InvalidModeError struct {
	Value string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q", e.Value)
}

// MissingMountPointError reports that a render could not find the element it
// writes to. Value is set for per-mode item mounts.
type MissingMountPointError struct {
	Mount MountPoint
	Value string
}

func (e *MissingMountPointError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("mount point %s for mode %q not found", e.Mount, e.Value)
	}
	return fmt.Sprintf("mount point %s not found", e.Mount)
}
