// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "linux", want: PlatformLinux},
		{in: "MacOS", want: PlatformMacOS},
		{in: "darwin", want: PlatformMacOS},
		{in: "windows", want: PlatformWindows},
		{in: "any", want: PlatformAny},
		{in: "*", want: PlatformAny},
		{in: "solaris", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlatform) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidPlatform", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromGOOS(t *testing.T) {
	t.Parallel()

	if got := FromGOOS("darwin"); got != PlatformMacOS {
		t.Errorf("FromGOOS(darwin) = %q", got)
	}
	if got := FromGOOS("windows"); got != PlatformWindows {
		t.Errorf("FromGOOS(windows) = %q", got)
	}
	if got := FromGOOS("freebsd"); got != PlatformLinux {
		t.Errorf("FromGOOS(freebsd) = %q", got)
	}
}

func TestPlatformMatches(t *testing.T) {
	t.Parallel()

	if !PlatformAny.Matches(PlatformWindows) {
		t.Error("any should match windows")
	}
	if PlatformLinux.Matches(PlatformMacOS) {
		t.Error("linux should not match macos")
	}
	if !PlatformLinux.Matches(PlatformLinux) {
		t.Error("linux should match linux")
	}
}
