// SPDX-License-Identifier: MPL-2.0

// Package version parses and compares package versions and request constraints.
//
// A request such as "maya-2024+" is parsed once into a typed Spec (name plus
// Constraint); nothing downstream re-parses request text. Supported suffixes:
//
//	maya-2024         exact
//	maya-2024+        minimum (inclusive)
//	maya-2024..2025   inclusive range
//	python-3.10|3.11  alternation
//	maya              any version
package version
