// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/anvil-pipeline/anvil/internal/compose"
	"github.com/anvil-pipeline/anvil/pkg/envmap"
)

func composition(env, commands *envmap.Map) *compose.Result {
	owners := make(map[string]string)
	for alias := range commands.All() {
		owners[alias] = "test-1"
	}
	return &compose.Result{Env: env, Commands: commands, CommandOwners: owners}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	m, err := ParseAssignments([]string{"A=1", "B=x=y", "EMPTY=", "A=2"})
	if err != nil {
		t.Fatalf("ParseAssignments: %v", err)
	}
	if got := m.Keys(); !slices.Equal(got, []string{"A", "B", "EMPTY"}) {
		t.Errorf("keys = %v", got)
	}
	if v, _ := m.Get("A"); v != "2" {
		t.Errorf("A = %q, want 2", v)
	}
	if v, _ := m.Get("B"); v != "x=y" {
		t.Errorf("B = %q, want x=y", v)
	}

	for _, bad := range []string{"NOEQUALS", "=value", " =x"} {
		if _, err := ParseAssignments([]string{bad}); !errors.Is(err, ErrInvalidAssignment) {
			t.Errorf("ParseAssignments(%q) = %v, want ErrInvalidAssignment", bad, err)
		}
	}
}

func TestOptions_Environ(t *testing.T) {
	t.Parallel()

	opts := Options{
		Ambient:     map[string]string{"PATH": "/usr/bin", "HOME": "/home/artist", "MAYA_ROOT": "/old"},
		Composition: composition(envmap.FromPairs("MAYA_ROOT", "/opt/maya", "NEW", "1"), envmap.New()),
		Extra:       envmap.FromPairs("NEW", "override", "DEBUG", "1"),
	}

	want := []string{
		"HOME=/home/artist",
		"MAYA_ROOT=/opt/maya",
		"PATH=/usr/bin",
		"NEW=override",
		"DEBUG=1",
	}
	if got := opts.Environ(); !slices.Equal(got, want) {
		t.Errorf("Environ() = %q, want %q", got, want)
	}
}

func TestRun_Alias(t *testing.T) {
	t.Parallel()

	opts := Options{
		Composition: composition(
			envmap.FromPairs("MAYA_ROOT", "/opt/maya/2024"),
			envmap.FromPairs(
				"where", `echo "root=$MAYA_ROOT"`,
				"args", `echo "$#:$1:$2"`,
				"fail", `exit 3`,
				"extra", `echo "$DEBUG"`,
			),
		),
		Extra: envmap.FromPairs("DEBUG", "on"),
	}

	tests := []struct {
		argv     []string
		want     string
		wantCode int
	}{
		{argv: []string{"where"}, want: "root=/opt/maya/2024\n"},
		{argv: []string{"args", "-v", "scene.ma"}, want: "2:-v:scene.ma\n"},
		{argv: []string{"extra"}, want: "on\n"},
		{argv: []string{"fail"}, wantCode: 3},
	}

	for _, tt := range tests {
		t.Run(tt.argv[0], func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			o := opts
			o.Stdout = &stdout
			o.Stderr = &bytes.Buffer{}

			err := Run(context.Background(), tt.argv, o)
			if tt.wantCode != 0 {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) {
					t.Fatalf("Run(%v) = %v, want *ExitError", tt.argv, err)
				}
				if exitErr.Code != tt.wantCode || exitErr.Command != tt.argv[0] {
					t.Errorf("ExitError = %+v, want code %d", exitErr, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run(%v): %v", tt.argv, err)
			}
			if stdout.String() != tt.want {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.want)
			}
		})
	}
}

func TestRun_AliasSyntaxError(t *testing.T) {
	t.Parallel()

	opts := Options{Composition: composition(envmap.New(), envmap.FromPairs("broken", `echo "unterminated`))}
	err := Run(context.Background(), []string{"broken"}, opts)
	if err == nil || !strings.Contains(err.Error(), `failed to parse command "broken"`) {
		t.Errorf("Run(broken) = %v, want parse error", err)
	}
}

func TestRun_NoCommand(t *testing.T) {
	t.Parallel()

	if err := Run(context.Background(), nil, Options{}); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Run(nil) = %v, want ErrNoCommand", err)
	}
}

func TestRun_NativeUsesComposedPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell script as the tool")
	}
	t.Parallel()

	bin := t.TempDir()
	tool := filepath.Join(bin, "anvil-test-tool")
	script := "#!/bin/sh\nprintf '%s|%s' \"$MAYA_ROOT\" \"$1\"\nexit 4\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}

	var stdout bytes.Buffer
	opts := Options{
		Ambient:     map[string]string{"PATH": "/usr/bin:/bin"},
		Composition: composition(envmap.FromPairs("PATH", bin+":/usr/bin:/bin", "MAYA_ROOT", "/opt/maya"), envmap.New()),
		Stdout:      &stdout,
		Stderr:      &bytes.Buffer{},
	}

	err := Run(context.Background(), []string{"anvil-test-tool", "scene.ma"}, opts)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 4 {
		t.Fatalf("Run = %v, want exit status 4", err)
	}
	if stdout.String() != "/opt/maya|scene.ma" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_NativeNotFound(t *testing.T) {
	t.Parallel()

	opts := Options{Ambient: map[string]string{"PATH": t.TempDir()}}
	err := Run(context.Background(), []string{"anvil-definitely-missing"}, opts)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Run(missing) = %v, want not-found error", err)
	}
}

func TestDetectShell(t *testing.T) {
	t.Parallel()

	if got := DetectShell(func(string) string { return "/bin/zsh" }); got != "/bin/zsh" {
		t.Errorf("DetectShell with $SHELL = %q, want /bin/zsh", got)
	}
	if runtime.GOOS != "windows" {
		if got := DetectShell(func(string) string { return "" }); got != "bash" {
			t.Errorf("DetectShell without $SHELL = %q, want bash", got)
		}
	}
}

func TestShell_SetsPrompt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX sh")
	}
	t.Parallel()

	tests := []struct {
		name    string
		ambient map[string]string
		want    string
	}{
		{name: "default prompt", ambient: map[string]string{"PATH": "/usr/bin:/bin"}, want: defaultPrompt},
		{name: "existing prompt", ambient: map[string]string{"PATH": "/usr/bin:/bin", "PS1": "$ "}, want: "[anvil] $ "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			opts := Options{
				Ambient:     tt.ambient,
				Composition: composition(envmap.FromPairs("MAYA_ROOT", "/opt/maya"), envmap.New()),
				Stdin:       strings.NewReader("printf '%s|%s' \"$PS1\" \"$MAYA_ROOT\"\n"),
				Stdout:      &stdout,
				Stderr:      &bytes.Buffer{},
			}
			if err := Shell(context.Background(), "sh", opts); err != nil {
				t.Fatalf("Shell: %v", err)
			}
			if want := tt.want + "|/opt/maya"; stdout.String() != want {
				t.Errorf("stdout = %q, want %q", stdout.String(), want)
			}
		})
	}
}
