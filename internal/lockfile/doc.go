// SPDX-License-Identifier: MPL-2.0

// Package lockfile records a resolution as TOML so the same environment can be
// rebuilt later without re-running version selection against a changed catalog.
package lockfile
