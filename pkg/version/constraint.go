// SPDX-License-Identifier: MPL-2.0

package version

import (
	"slices"
	"strings"
)

// Constraint kinds, in the order they are documented for request suffixes.
const (
	// KindAny matches every version (bare package name).
	KindAny Kind = iota
	// KindExact matches one version: "X".
	KindExact
	// KindMinimum matches versions >= X: "X+".
	KindMinimum
	// KindRange matches X <= version <= Y: "X..Y".
	KindRange
	// KindAlternation matches any of the listed versions: "X|Y|...".
	KindAlternation
)

type (
	// Kind identifies the shape of a Constraint.
	Kind int

	// Constraint is an immutable predicate over Version.
	//
	// The zero value is the unconstrained (KindAny) constraint.
	Constraint struct {
		kind Kind
		// lo is the exact version, the minimum, or the range start.
		lo Version
		// hi is the inclusive range end.
		hi Version
		// set holds alternation members in declaration order, deduplicated.
		set []Version
	}
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindExact:
		return "exact"
	case KindMinimum:
		return "minimum"
	case KindRange:
		return "range"
	case KindAlternation:
		return "alternation"
	default:
		return "unknown"
	}
}

// Any returns the unconstrained constraint.
func Any() Constraint { return Constraint{} }

// Exact returns a constraint matching only v.
func Exact(v Version) Constraint { return Constraint{kind: KindExact, lo: v} }

// Minimum returns a constraint matching versions >= v.
func Minimum(v Version) Constraint { return Constraint{kind: KindMinimum, lo: v} }

// Range returns a constraint matching lo <= version <= hi.
// The second result is false when lo > hi.
func Range(lo, hi Version) (Constraint, bool) {
	switch c := lo.Compare(hi); {
	case c > 0:
		return Constraint{}, false
	case c == 0:
		return Exact(lo), true
	}
	return Constraint{kind: KindRange, lo: lo, hi: hi}, true
}

// OneOf returns a constraint matching any of versions.
// Duplicates are dropped; a single distinct version yields an Exact constraint.
func OneOf(versions ...Version) Constraint {
	set := make([]Version, 0, len(versions))
	for _, v := range versions {
		if !slices.ContainsFunc(set, v.Equal) {
			set = append(set, v)
		}
	}
	switch len(set) {
	case 0:
		return Any()
	case 1:
		return Exact(set[0])
	}
	return Constraint{kind: KindAlternation, set: set}
}

// ParseConstraint parses a request suffix (the part after the last '-').
func ParseConstraint(suffix string) (Constraint, error) {
	c, reason, cause := parseConstraint(suffix)
	if reason != "" {
		return Constraint{}, &InvalidSpecError{Text: suffix, Reason: reason, Cause: cause}
	}
	return c, nil
}

func parseConstraint(suffix string) (_ Constraint, reason string, cause error) {
	switch {
	case suffix == "":
		return Constraint{}, "empty version constraint", nil

	case strings.HasSuffix(suffix, "+"):
		v, err := ParseVersion(strings.TrimSuffix(suffix, "+"))
		if err != nil {
			return Constraint{}, "bad minimum version", err
		}
		return Minimum(v), "", nil

	case strings.Contains(suffix, ".."):
		bounds := strings.Split(suffix, "..")
		if len(bounds) != 2 {
			return Constraint{}, "range must have exactly two bounds", nil
		}
		lo, err := ParseVersion(bounds[0])
		if err != nil {
			return Constraint{}, "bad range start", err
		}
		hi, err := ParseVersion(bounds[1])
		if err != nil {
			return Constraint{}, "bad range end", err
		}
		c, ok := Range(lo, hi)
		if !ok {
			return Constraint{}, "range start is greater than range end", nil
		}
		return c, "", nil

	case strings.Contains(suffix, "|"):
		options := strings.Split(suffix, "|")
		versions := make([]Version, 0, len(options))
		for _, opt := range options {
			v, err := ParseVersion(opt)
			if err != nil {
				return Constraint{}, "bad alternative", err
			}
			versions = append(versions, v)
		}
		return OneOf(versions...), "", nil

	default:
		v, err := ParseVersion(suffix)
		if err != nil {
			return Constraint{}, "bad version", err
		}
		return Exact(v), "", nil
	}
}

// Kind returns the constraint kind.
func (c Constraint) Kind() Kind { return c.kind }

// IsAny reports whether c matches every version.
func (c Constraint) IsAny() bool { return c.kind == KindAny }

// Versions returns the versions named by c: the exact version, the minimum,
// the range bounds, or the alternation members. It returns nil for KindAny.
func (c Constraint) Versions() []Version {
	switch c.kind {
	case KindExact, KindMinimum:
		return []Version{c.lo}
	case KindRange:
		return []Version{c.lo, c.hi}
	case KindAlternation:
		return slices.Clone(c.set)
	default:
		return nil
	}
}

// Matches reports whether v satisfies c.
func (c Constraint) Matches(v Version) bool {
	switch c.kind {
	case KindAny:
		return true
	case KindExact:
		return v.Equal(c.lo)
	case KindMinimum:
		return v.Compare(c.lo) >= 0
	case KindRange:
		return v.Compare(c.lo) >= 0 && v.Compare(c.hi) <= 0
	case KindAlternation:
		return slices.ContainsFunc(c.set, v.Equal)
	default:
		return false
	}
}

// Intersect returns a constraint matching exactly the versions matched by both
// c and other. The second result is false when no version can match both.
//
// The result may be synthetic: a minimum intersected with a range yields a
// narrower range, and alternations are filtered down to their surviving members.
func (c Constraint) Intersect(other Constraint) (Constraint, bool) {
	switch {
	case c.kind == KindAny:
		return other, true
	case other.kind == KindAny:
		return c, true
	case c.kind == KindAlternation:
		return c.filter(other)
	case other.kind == KindAlternation:
		return other.filter(c)
	}

	// Both sides are intervals with a lower bound and an optional upper bound.
	lo := c.lo
	if other.lo.Compare(lo) > 0 {
		lo = other.lo
	}
	hi, bounded := c.upper()
	if ohi, ok := other.upper(); ok && (!bounded || ohi.Compare(hi) < 0) {
		hi, bounded = ohi, true
	}
	if !bounded {
		return Minimum(lo), true
	}
	return Range(lo, hi)
}

func (c Constraint) upper() (Version, bool) {
	switch c.kind {
	case KindExact:
		return c.lo, true
	case KindRange:
		return c.hi, true
	default:
		return Version{}, false
	}
}

func (c Constraint) filter(other Constraint) (Constraint, bool) {
	var kept []Version
	for _, v := range c.set {
		if other.Matches(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return Constraint{}, false
	}
	return OneOf(kept...), true
}

// String renders c in request-suffix syntax. KindAny renders as "".
func (c Constraint) String() string {
	switch c.kind {
	case KindExact:
		return c.lo.String()
	case KindMinimum:
		return c.lo.String() + "+"
	case KindRange:
		return c.lo.String() + ".." + c.hi.String()
	case KindAlternation:
		parts := make([]string, len(c.set))
		for i, v := range c.set {
			parts[i] = v.String()
		}
		return strings.Join(parts, "|")
	default:
		return ""
	}
}
