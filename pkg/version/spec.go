// SPDX-License-Identifier: MPL-2.0

package version

import "strings"

// Spec is a package name paired with a version constraint, as written in a
// request ("maya-2024+", "arnold-7.2", "python").
type Spec struct {
	Name       string
	Constraint Constraint
}

// ParseSpec parses a request string.
//
// The text is split on its last unescaped '-': everything before it is the
// package name and everything after it is the constraint suffix. A dash that is
// part of the name can be escaped as `\-`. Text without an unescaped dash names
// a package with no version constraint.
func ParseSpec(text string) (Spec, error) {
	if text == "" {
		return Spec{}, &InvalidSpecError{Text: text, Reason: "empty request"}
	}
	if trailingBackslashes(text, len(text))%2 == 1 {
		return Spec{}, &InvalidSpecError{Text: text, Reason: "dangling escape"}
	}

	idx := lastUnescapedDash(text)
	if idx < 0 {
		name := unescapeName(text)
		if strings.TrimSpace(name) == "" {
			return Spec{}, &InvalidSpecError{Text: text, Reason: "empty package name"}
		}
		return Spec{Name: name}, nil
	}

	name := unescapeName(text[:idx])
	if strings.TrimSpace(name) == "" {
		return Spec{}, &InvalidSpecError{Text: text, Reason: "empty package name"}
	}
	c, reason, cause := parseConstraint(text[idx+1:])
	if reason != "" {
		return Spec{}, &InvalidSpecError{Text: text, Reason: reason, Cause: cause}
	}
	return Spec{Name: name, Constraint: c}, nil
}

// MustParseSpec is like ParseSpec but panics on error.
func MustParseSpec(text string) Spec {
	s, err := ParseSpec(text)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSpecs parses every request string, stopping at the first failure.
func ParseSpecs(texts []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(texts))
	for _, text := range texts {
		s, err := ParseSpec(text)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Matches reports whether the named package at version v satisfies s.
func (s Spec) Matches(name string, v Version) bool {
	return s.Name == name && s.Constraint.Matches(v)
}

// String renders s back into request syntax.
func (s Spec) String() string {
	name := strings.ReplaceAll(s.Name, "-", `\-`)
	if s.Constraint.IsAny() {
		return name
	}
	return name + "-" + s.Constraint.String()
}

func lastUnescapedDash(text string) int {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '-' && trailingBackslashes(text, i)%2 == 0 {
			return i
		}
	}
	return -1
}

// trailingBackslashes counts consecutive backslashes immediately before text[end].
func trailingBackslashes(text string, end int) int {
	n := 0
	for j := end - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n
}

func unescapeName(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+1 < len(name) {
			i++
		}
		sb.WriteByte(name[i])
	}
	return sb.String()
}
