// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anvil-pipeline/anvil/pkg/version"
)

var (
	// ErrPackageNotFound is returned when a package has no definitions in the catalog.
	ErrPackageNotFound = errors.New("package not found")
	// ErrUnsatisfiableConstraint is returned when no available version satisfies the accumulated constraint.
	ErrUnsatisfiableConstraint = errors.New("unsatisfiable constraint")
	// ErrVersionConflict is returned when two requirers impose incompatible constraints.
	ErrVersionConflict = errors.New("version conflict")
	// ErrCyclicDependency is returned when a dependency chain revisits a package.
	ErrCyclicDependency = errors.New("cyclic dependency")
)

type (
	// Requirer identifies who asked for a package. Chain lists package IDs from
	// the top-level request down to the direct requirer; an empty chain means the
	// user's request itself.
	Requirer struct {
		Chain []string
	}

	// Requirement is one constraint placed on a package together with its origin.
	Requirement struct {
		Constraint version.Constraint
		Requirer   Requirer
	}

	// PackageNotFoundError is returned when the catalog has no definitions for Name.
	PackageNotFoundError struct {
		Name     string
		Requirer Requirer
	}

	// UnsatisfiableConstraintError is returned when Package exists but none of the
	// Available versions (newest first) satisfies Constraint.
	UnsatisfiableConstraintError struct {
		Package    string
		Constraint version.Constraint
		Requirer   Requirer
		Available  []version.Version
	}

	// VersionConflictError is returned when two requirements on Package cannot
	// both hold. A is the earlier requirement, B the one that exposed the conflict.
	VersionConflictError struct {
		Package string
		A       Requirement
		B       Requirement
	}

	// CyclicDependencyError is returned when a package transitively requires
	// itself. Cycle is a closed path of package names ("a", "b", "a").
	CyclicDependencyError struct {
		Cycle []string
	}
)

// IsTopLevel reports whether the requirement came from the request itself.
func (r Requirer) IsTopLevel() bool { return len(r.Chain) == 0 }

// Direct returns the ID of the package that declared the requirement, or "" at top level.
func (r Requirer) Direct() string {
	if r.IsTopLevel() {
		return ""
	}
	return r.Chain[len(r.Chain)-1]
}

func (r Requirer) String() string {
	if r.IsTopLevel() {
		return "the request"
	}
	return strings.Join(r.Chain, " -> ")
}

func (r Requirement) String() string {
	if r.Constraint.IsAny() {
		return fmt.Sprintf("any version (required by %s)", r.Requirer)
	}
	return fmt.Sprintf("%s (required by %s)", r.Constraint, r.Requirer)
}

func (e *PackageNotFoundError) Error() string {
	if e.Requirer.IsTopLevel() {
		return fmt.Sprintf("package %q not found", e.Name)
	}
	return fmt.Sprintf("package %q not found (required by %s)", e.Name, e.Requirer)
}

func (e *PackageNotFoundError) Unwrap() error { return ErrPackageNotFound }

func (e *UnsatisfiableConstraintError) Error() string {
	avail := make([]string, len(e.Available))
	for i, v := range e.Available {
		avail[i] = v.String()
	}
	return fmt.Sprintf("no version of %q satisfies %s (required by %s); available: %s",
		e.Package, e.Constraint, e.Requirer, strings.Join(avail, ", "))
}

func (e *UnsatisfiableConstraintError) Unwrap() error { return ErrUnsatisfiableConstraint }

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict for %q: %s conflicts with %s", e.Package, e.A, e.B)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }
