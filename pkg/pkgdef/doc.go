// SPDX-License-Identifier: MPL-2.0

// Package pkgdef defines the in-memory shape of package definitions and the
// Catalog boundary the resolver consumes.
//
// A PackageDef is immutable once loaded. Platform variants are merged into a
// separate ResolvedPackage value, leaving the definition untouched so the same
// catalog snapshot can serve many resolutions.
package pkgdef
