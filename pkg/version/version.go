// SPDX-License-Identifier: MPL-2.0

package version

import (
	"strconv"
	"strings"
)

type (
	// Version is a parsed, immutable dotted version such as "2024", "7.2" or "3.10.beta".
	//
	// Components are either non-negative integers or string tokens. Versions are ordered
	// component-wise: integers numerically, strings lexically, and an integer component
	// sorts before a string component at the same position. A version that is a strict
	// prefix of another is lower ("7" < "7.2").
	Version struct {
		text  string
		parts []component
	}

	component struct {
		num   uint64
		token string
		isNum bool
	}
)

// ParseVersion parses dotted version text.
func ParseVersion(text string) (Version, error) {
	if text == "" {
		return Version{}, &InvalidVersionError{Text: text, Reason: "empty version"}
	}

	fields := strings.Split(text, ".")
	parts := make([]component, 0, len(fields))
	for _, field := range fields {
		if field == "" {
			return Version{}, &InvalidVersionError{Text: text, Reason: "empty component"}
		}
		c, ok := parseComponent(field)
		if !ok {
			return Version{}, &InvalidVersionError{Text: text, Reason: "malformed component " + strconv.Quote(field)}
		}
		parts = append(parts, c)
	}

	return Version{text: text, parts: parts}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

func parseComponent(field string) (component, bool) {
	digits := true
	for _, r := range field {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			digits = false
		default:
			return component{}, false
		}
	}
	if !digits {
		return component{token: field}, true
	}
	n, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		// Longer than uint64; keep it ordered as a token rather than failing.
		return component{token: field}, true
	}
	return component{num: n, isNum: true}, true
}

// String returns the version as originally written.
func (v Version) String() string {
	return v.text
}

// IsZero reports whether v is the zero Version (never produced by ParseVersion).
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Len returns the number of components.
func (v Version) Len() int {
	return len(v.parts)
}

// Compare returns -1, 0 or 1 when v is lower than, equal to or higher than other.
func (v Version) Compare(other Version) int {
	n := min(len(v.parts), len(other.parts))
	for i := range n {
		if c := v.parts[i].compare(other.parts[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(v.parts) < len(other.parts):
		return -1
	case len(v.parts) > len(other.parts):
		return 1
	default:
		return 0
	}
}

// Equal reports whether v and other compare equal.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func (c component) compare(o component) int {
	switch {
	case c.isNum && o.isNum:
		switch {
		case c.num < o.num:
			return -1
		case c.num > o.num:
			return 1
		}
		return 0
	case c.isNum:
		return -1
	case o.isNum:
		return 1
	default:
		return strings.Compare(c.token, o.token)
	}
}

// Compare compares a and b, returning:
//
//	-1 if a < b
//	 0 if a == b
//	 1 if a > b
func Compare(a, b Version) int {
	return a.Compare(b)
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !c.Matches(candidate) {
			continue
		}
		if !found || candidate.Compare(best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}
