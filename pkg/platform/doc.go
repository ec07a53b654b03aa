// SPDX-License-Identifier: MPL-2.0

// Package platform defines the platform tags used to select package variants.
//
// The active platform is always passed explicitly through resolution; Current
// is only consulted at the CLI boundary when no --platform flag is given.
package platform
