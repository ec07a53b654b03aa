// SPDX-License-Identifier: MPL-2.0

// Package compose builds the final environment and command table from an
// ordered list of resolved packages.
//
// Packages are applied in dependency-first order and each package's entries in
// declaration order, so a template can reference a value an earlier package (or
// an earlier key of the same package) already set:
//
//	PYTHONPATH: ${PACKAGE_ROOT}/python:${PYTHONPATH}
//
// Every assignment replaces the prior value. There is no implicit merging; the
// template spells out any prepend or append. Expansion never fails: unknown
// forms are kept verbatim and missing variables expand to the empty string.
package compose
