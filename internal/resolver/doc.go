// SPDX-License-Identifier: MPL-2.0

// Package resolver turns a list of package requests into one consistent set of
// resolved packages, ordered so that dependencies precede their dependents.
//
// Resolution is breadth-first constraint propagation: every requirement for a
// package name is intersected with what earlier requirers demanded, the newest
// satisfying version wins, and a winner never changes once chosen. Failures are
// returned as structured errors carrying package names, competing constraints,
// requirer chains, and cycle paths.
package resolver
