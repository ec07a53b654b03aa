// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixture helpers shared by anvil's tests.
//
// WritePackage lays out package.yaml files the way a studio package tree does;
// MustWriteFile and MustMkdirAll fail the test instead of returning errors.
package testutil
