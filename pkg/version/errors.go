// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidSpec is the sentinel error wrapped by InvalidSpecError.
	ErrInvalidSpec = errors.New("invalid spec")
)

type (
	// InvalidVersionError is returned when version text cannot be parsed.
	// It wraps ErrInvalidVersion for errors.Is() compatibility.
	InvalidVersionError struct {
		// Text is the offending literal.
		Text string
		// Reason describes what is wrong with it.
		Reason string
	}

	// InvalidSpecError is returned when a package request string cannot be parsed.
	// It wraps ErrInvalidSpec for errors.Is() compatibility; when the suffix failed
	// to parse as a version, Cause holds the *InvalidVersionError.
	InvalidSpecError struct {
		Text   string
		Reason string
		Cause  error
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Text, e.Reason)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface.
func (e *InvalidSpecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid spec %q: %s: %v", e.Text, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid spec %q: %s", e.Text, e.Reason)
}

// Unwrap returns ErrInvalidSpec and the underlying cause, if any.
func (e *InvalidSpecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidSpec, e.Cause}
	}
	return []error{ErrInvalidSpec}
}
