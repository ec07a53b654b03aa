// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"testing"
)

func mustConstraint(t *testing.T, suffix string) Constraint {
	t.Helper()
	c, err := ParseConstraint(suffix)
	if err != nil {
		t.Fatalf("ParseConstraint(%q): %v", suffix, err)
	}
	return c
}

func TestParseConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		suffix   string
		wantKind Kind
		wantStr  string
		wantErr  bool
	}{
		{suffix: "2024", wantKind: KindExact, wantStr: "2024"},
		{suffix: "2024+", wantKind: KindMinimum, wantStr: "2024+"},
		{suffix: "2024..2025", wantKind: KindRange, wantStr: "2024..2025"},
		{suffix: "2024..2024", wantKind: KindExact, wantStr: "2024"},
		{suffix: "3.10|3.11", wantKind: KindAlternation, wantStr: "3.10|3.11"},
		{suffix: "3.10|3.10", wantKind: KindExact, wantStr: "3.10"},
		{suffix: "", wantErr: true},
		{suffix: "+", wantErr: true},
		{suffix: "2025..2024", wantErr: true},
		{suffix: "1..2..3", wantErr: true},
		{suffix: "..2", wantErr: true},
		{suffix: "3.10|", wantErr: true},
		{suffix: "1+|2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			t.Parallel()

			c, err := ParseConstraint(tt.suffix)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseConstraint(%q) = %v, want error", tt.suffix, c)
				}
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("errors.Is(err, ErrInvalidSpec) = false for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConstraint(%q) unexpected error: %v", tt.suffix, err)
			}
			if c.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", c.Kind(), tt.wantKind)
			}
			if c.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", c.String(), tt.wantStr)
			}
		})
	}
}

func TestConstraintMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		suffix string
		match  []string
		reject []string
	}{
		{suffix: "2024+", match: []string{"2024", "2025", "2024.1"}, reject: []string{"2023", "2023.9"}},
		{suffix: "2024..2025", match: []string{"2024", "2024.5", "2025"}, reject: []string{"2026", "2023", "2025.1"}},
		{suffix: "3.10|3.11", match: []string{"3.10", "3.11"}, reject: []string{"3.9", "3.12", "3", "3.10.1"}},
		{suffix: "7.2", match: []string{"7.2"}, reject: []string{"7", "7.2.0", "7.3"}},
	}

	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			t.Parallel()

			c := mustConstraint(t, tt.suffix)
			for _, v := range tt.match {
				if !c.Matches(MustParseVersion(v)) {
					t.Errorf("%s should match %s", tt.suffix, v)
				}
			}
			for _, v := range tt.reject {
				if c.Matches(MustParseVersion(v)) {
					t.Errorf("%s should not match %s", tt.suffix, v)
				}
			}
		})
	}

	if !Any().Matches(MustParseVersion("1")) {
		t.Error("Any() should match every version")
	}
}

func TestConstraintIntersect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    Constraint
		wantOK  bool
		wantStr string
	}{
		{name: "minimum and exact", a: Minimum(MustParseVersion("2024")), b: Exact(MustParseVersion("2025")), wantOK: true, wantStr: "2025"},
		{name: "disjoint exacts", a: Exact(MustParseVersion("2024")), b: Exact(MustParseVersion("2025"))},
		{name: "equal exacts", a: Exact(MustParseVersion("2024")), b: Exact(MustParseVersion("2024")), wantOK: true, wantStr: "2024"},
		{name: "two minimums", a: Minimum(MustParseVersion("1")), b: Minimum(MustParseVersion("2")), wantOK: true, wantStr: "2+"},
		{name: "minimum and range", a: Minimum(MustParseVersion("2024")), b: mustRange("2020", "2025"), wantOK: true, wantStr: "2024..2025"},
		{name: "touching ranges", a: mustRange("1", "2"), b: mustRange("2", "3"), wantOK: true, wantStr: "2"},
		{name: "disjoint ranges", a: mustRange("1", "2"), b: mustRange("3", "4")},
		{name: "exact below minimum", a: Exact(MustParseVersion("2023")), b: Minimum(MustParseVersion("2024"))},
		{name: "any and range", a: Any(), b: mustRange("1", "2"), wantOK: true, wantStr: "1..2"},
		{name: "any and any", a: Any(), b: Any(), wantOK: true, wantStr: ""},
		{name: "alternation filtered by minimum", a: OneOf(MustParseVersion("3.9"), MustParseVersion("3.10"), MustParseVersion("3.11")), b: Minimum(MustParseVersion("3.10")), wantOK: true, wantStr: "3.10|3.11"},
		{name: "alternation collapses to exact", a: Minimum(MustParseVersion("3.11")), b: OneOf(MustParseVersion("3.10"), MustParseVersion("3.11")), wantOK: true, wantStr: "3.11"},
		{name: "alternations intersect", a: OneOf(MustParseVersion("1"), MustParseVersion("2")), b: OneOf(MustParseVersion("2"), MustParseVersion("3")), wantOK: true, wantStr: "2"},
		{name: "disjoint alternations", a: OneOf(MustParseVersion("1"), MustParseVersion("2")), b: OneOf(MustParseVersion("3"), MustParseVersion("4"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, order := range [][2]Constraint{{tt.a, tt.b}, {tt.b, tt.a}} {
				got, ok := order[0].Intersect(order[1])
				if ok != tt.wantOK {
					t.Fatalf("Intersect(%q, %q) ok = %v, want %v", order[0], order[1], ok, tt.wantOK)
				}
				if ok && got.String() != tt.wantStr {
					t.Errorf("Intersect(%q, %q) = %q, want %q", order[0], order[1], got, tt.wantStr)
				}
			}
		})
	}
}

func TestConstraintIntersect_MatchesOnlyCommonVersions(t *testing.T) {
	t.Parallel()

	got, ok := Minimum(MustParseVersion("2024")).Intersect(Exact(MustParseVersion("2025")))
	if !ok {
		t.Fatal("expected non-empty intersection")
	}
	for _, v := range []string{"2023", "2024", "2025.1", "2026"} {
		if got.Matches(MustParseVersion(v)) {
			t.Errorf("intersection should not match %s", v)
		}
	}
	if !got.Matches(MustParseVersion("2025")) {
		t.Error("intersection should match 2025")
	}
}

func mustRange(lo, hi string) Constraint {
	c, ok := Range(MustParseVersion(lo), MustParseVersion(hi))
	if !ok {
		panic("bad range " + lo + ".." + hi)
	}
	return c
}
