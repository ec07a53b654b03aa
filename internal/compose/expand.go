// SPDX-License-Identifier: MPL-2.0

package compose

import "strings"

const (
	// VarPackageRoot expands to the current package's install directory.
	VarPackageRoot = "PACKAGE_ROOT"
	// VarVersion expands to the current package's version text.
	VarVersion = "VERSION"
	// VarName expands to the current package's name.
	VarName = "NAME"
)

// Scope supplies the values visible to one expansion.
type Scope struct {
	Root    string
	Name    string
	Version string
	// Lookup resolves ${VAR} references. A nil Lookup treats every variable as unset.
	Lookup func(name string) (string, bool)
}

// Expand substitutes ${...} references in template.
//
// Recognized forms are ${PACKAGE_ROOT}, ${VERSION}, ${NAME}, ${VAR} and
// ${VAR:-default}, where VAR is a shell identifier. Anything else, including an
// unterminated "${", is copied through unchanged. "$VAR" without braces is not
// a reference.
func Expand(template string, scope Scope) string {
	if !strings.Contains(template, "${") {
		return template
	}

	var sb strings.Builder
	sb.Grow(len(template))
	rest := template
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:start])
		rest = rest[start:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		body := rest[2:end]
		if value, ok := scope.resolve(body); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[:end+1])
		}
		rest = rest[end+1:]
	}
	return sb.String()
}

// resolve returns the substitution for the text between "${" and "}", or false
// when the form is not recognized.
func (s Scope) resolve(body string) (string, bool) {
	switch body {
	case VarPackageRoot:
		return s.Root, true
	case VarVersion:
		return s.Version, true
	case VarName:
		return s.Name, true
	}

	name, def, hasDefault := strings.Cut(body, ":-")
	if !isIdentifier(name) {
		return "", false
	}
	if v, ok := s.lookup(name); ok {
		return v, true
	}
	if hasDefault {
		return def, true
	}
	return "", true
}

func (s Scope) lookup(name string) (string, bool) {
	if s.Lookup == nil {
		return "", false
	}
	return s.Lookup(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
