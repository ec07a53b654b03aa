// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for anvil.
//
// This package implements the Cobra command hierarchy: environment rendering
// (env), launching (run, shell), inspection (resolve, list, info, validate),
// lock files (lock) and configuration management (config).
package cmd
