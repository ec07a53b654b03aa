// SPDX-License-Identifier: MPL-2.0

package catalog

import "fmt"

const (
	// SeverityWarning indicates a skipped or shadowed definition.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a definition that could not be loaded.
	SeverityError Severity = "error"

	// CodeParseFailed marks a package.yaml that could not be read or decoded.
	CodeParseFailed = "package_parse_failed"
	// CodeInvalidDefinition marks a decoded definition with invalid content.
	CodeInvalidDefinition = "package_invalid"
	// CodeLayoutMismatch marks a definition whose name or version disagrees with its directory.
	CodeLayoutMismatch = "package_layout_mismatch"
	// CodeShadowed marks a definition hidden by one from an earlier search path.
	CodeShadowed = "package_shadowed"
	// CodeSearchPathUnreadable marks a search path that exists but cannot be listed.
	CodeSearchPathUnreadable = "search_path_unreadable"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal problem found while scanning. Diagnostics are
	// returned to callers so the CLI decides how to render them.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier such as "package_parse_failed".
		Code    string
		Message string
		// Path is the file or directory involved (optional).
		Path  string
		Cause error
	}
)

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if d.Path != "" {
		s += " (" + d.Path + ")"
	}
	if d.Cause != nil {
		s += ": " + d.Cause.Error()
	}
	return s
}
