// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"testing"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		wantName string
		wantKind Kind
		wantStr  string
	}{
		{text: "maya", wantName: "maya", wantKind: KindAny, wantStr: "maya"},
		{text: "maya-2024", wantName: "maya", wantKind: KindExact, wantStr: "maya-2024"},
		{text: "maya-2024+", wantName: "maya", wantKind: KindMinimum, wantStr: "maya-2024+"},
		{text: "arnold-7.2", wantName: "arnold", wantKind: KindExact, wantStr: "arnold-7.2"},
		{text: "python-3.10|3.11", wantName: "python", wantKind: KindAlternation, wantStr: "python-3.10|3.11"},
		{text: "houdini-19.5..20", wantName: "houdini", wantKind: KindRange, wantStr: "houdini-19.5..20"},
		{text: "studio-python-1.0.0", wantName: "studio-python", wantKind: KindExact, wantStr: `studio\-python-1.0.0`},
		{text: `studio\-python`, wantName: "studio-python", wantKind: KindAny, wantStr: `studio\-python`},
		{text: `studio\-tools-2+`, wantName: "studio-tools", wantKind: KindMinimum, wantStr: `studio\-tools-2+`},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			s, err := ParseSpec(tt.text)
			if err != nil {
				t.Fatalf("ParseSpec(%q) unexpected error: %v", tt.text, err)
			}
			if s.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", s.Name, tt.wantName)
			}
			if s.Constraint.Kind() != tt.wantKind {
				t.Errorf("Kind = %v, want %v", s.Constraint.Kind(), tt.wantKind)
			}
			if s.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", s.String(), tt.wantStr)
			}
		})
	}
}

func TestParseSpec_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text        string
		wantVersion bool
	}{
		{text: ""},
		{text: "-2024"},
		{text: "maya-"},
		{text: `maya\`},
		{text: "maya-2024..2023"},
		{text: "maya-20 24", wantVersion: true},
		{text: "maya-1..", wantVersion: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSpec(tt.text)
			if err == nil {
				t.Fatalf("ParseSpec(%q) expected error", tt.text)
			}
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("errors.Is(err, ErrInvalidSpec) = false for %v", err)
			}
			var ise *InvalidSpecError
			if !errors.As(err, &ise) || ise.Text != tt.text {
				t.Errorf("expected *InvalidSpecError referencing %q, got %v", tt.text, err)
			}
			if got := errors.Is(err, ErrInvalidVersion); got != tt.wantVersion {
				t.Errorf("errors.Is(err, ErrInvalidVersion) = %v, want %v", got, tt.wantVersion)
			}
		})
	}
}

func TestParseSpecs(t *testing.T) {
	t.Parallel()

	specs, err := ParseSpecs([]string{"maya-2024", "arnold-7.2"})
	if err != nil {
		t.Fatalf("ParseSpecs: %v", err)
	}
	if len(specs) != 2 || specs[0].Name != "maya" || specs[1].Name != "arnold" {
		t.Errorf("ParseSpecs = %v", specs)
	}

	if _, err := ParseSpecs([]string{"maya", "-"}); err == nil {
		t.Error("expected error for bad second spec")
	}
}

func TestSpecMatches(t *testing.T) {
	t.Parallel()

	s := MustParseSpec("maya-2024+")
	if !s.Matches("maya", MustParseVersion("2025")) {
		t.Error("maya-2024+ should match maya 2025")
	}
	if s.Matches("houdini", MustParseVersion("2025")) {
		t.Error("maya-2024+ should not match houdini")
	}
}
