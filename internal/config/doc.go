// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/anvil/config.cue (or $XDG_CONFIG_HOME/anvil on Linux,
// ~/Library/Application Support/anvil/config.cue on macOS, %APPDATA%\anvil\config.cue
// on Windows), or from the file named by --config or $ANVIL_CONFIG. It carries package
// search paths, request aliases, the default shell, per-platform overrides and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
