// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Platform tags used in package variants and resolution requests.
const (
	// PlatformLinux is the Linux platform tag.
	PlatformLinux Platform = "linux"
	// PlatformMacOS is the macOS platform tag.
	PlatformMacOS Platform = "macos"
	// PlatformWindows is the Windows platform tag.
	PlatformWindows Platform = "windows"
	// PlatformAny is the wildcard variant tag matching every platform.
	PlatformAny Platform = "any"
)

// ErrInvalidPlatform is the sentinel error wrapped by InvalidPlatformError.
var ErrInvalidPlatform = errors.New("invalid platform")

type (
	// Platform identifies an operating system family a package variant targets.
	Platform string

	// InvalidPlatformError is returned when a platform tag is not recognized.
	// It wraps ErrInvalidPlatform for errors.Is() compatibility.
	InvalidPlatformError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q (expected linux, macos, windows or any)", e.Value)
}

// Unwrap returns ErrInvalidPlatform so callers can use errors.Is for programmatic detection.
func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }

// Parse parses a platform tag. Matching is case-insensitive and accepts the
// GOOS spelling "darwin" for macOS and "*" for the wildcard.
func Parse(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linux":
		return PlatformLinux, nil
	case "macos", Darwin:
		return PlatformMacOS, nil
	case Windows:
		return PlatformWindows, nil
	case "any", "*":
		return PlatformAny, nil
	default:
		return "", &InvalidPlatformError{Value: s}
	}
}

// Current returns the platform of the running process.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a runtime.GOOS value to a Platform. Unknown Unix-likes map to Linux.
func FromGOOS(goos string) Platform {
	switch goos {
	case Windows:
		return PlatformWindows
	case Darwin:
		return PlatformMacOS
	default:
		return PlatformLinux
	}
}

// IsWildcard reports whether p is the "any" tag.
func (p Platform) IsWildcard() bool {
	return p == PlatformAny
}

// Matches reports whether a variant tagged p applies on the active platform.
func (p Platform) Matches(active Platform) bool {
	return p == PlatformAny || p == active
}

// String returns the platform tag.
func (p Platform) String() string { return string(p) }
