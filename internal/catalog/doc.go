// SPDX-License-Identifier: MPL-2.0

// Package catalog loads package definitions from disk and serves them to the
// resolver through the pkgdef.Catalog interface.
//
// Packages live under search paths laid out as
//
//	<search path>/<name>/<version>/package.yaml
//
// and the version directory is the package's PACKAGE_ROOT. Search paths are
// scanned in order; the first definition of a given name and version wins.
// Files that fail to load are reported as diagnostics instead of aborting the scan.
package catalog
