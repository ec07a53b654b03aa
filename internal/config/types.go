// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidAlias is the sentinel error wrapped by InvalidAliasError.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the terminal color palette.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidAliasError is returned when an alias name or one of its requests is malformed.
	InvalidAliasError struct {
		Alias string
		Cause error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// PlatformOverride holds settings that apply only on one platform.
	PlatformOverride struct {
		// PackagePaths are appended after the global search paths.
		PackagePaths []string `json:"package_paths" mapstructure:"package_paths"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and issue guides on failure.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config is the application configuration.
	Config struct {
		// PackagePaths lists package search directories in priority order.
		PackagePaths []string `json:"package_paths" mapstructure:"package_paths"`
		// DefaultShell is the shell started by `anvil shell` when none is requested.
		DefaultShell string `json:"default_shell" mapstructure:"default_shell"`
		// Aliases maps a short name to the requests it stands for.
		Aliases map[string][]string `json:"aliases" mapstructure:"aliases"`
		// Platform holds per-platform overrides keyed by "linux", "macos" or "windows".
		Platform map[string]PlatformOverride `json:"platform" mapstructure:"platform"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}
)

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// Error implements the error interface for InvalidAliasError.
func (e *InvalidAliasError) Error() string {
	return fmt.Sprintf("invalid alias %q: %v", e.Alias, e.Cause)
}

// Unwrap returns both the sentinel and the cause so errors.Is matches either.
func (e *InvalidAliasError) Unwrap() []error { return []error{ErrInvalidAlias, e.Cause} }

// IsValid returns whether the Config has valid fields: the UI block, every
// alias request (which must parse as a request spec), and the platform keys.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, name := range sortedKeys(c.Aliases) {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, &InvalidAliasError{Alias: name, Cause: errors.New("empty alias name")})
			continue
		}
		if _, err := version.ParseSpecs(c.Aliases[name]); err != nil {
			errs = append(errs, &InvalidAliasError{Alias: name, Cause: err})
		}
	}
	for _, key := range sortedKeys(c.Platform) {
		p, err := platform.Parse(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p.IsWildcard() {
			errs = append(errs, fmt.Errorf("platform override %q must name a concrete platform", key))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration. PackagePaths is left empty;
// PackagePaths() falls back to DefaultPackagePaths when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Aliases:  map[string][]string{},
		Platform: map[string]PlatformOverride{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
