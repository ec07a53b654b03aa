// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	package_paths?: [...string]
	default_shell?: string
	aliases?: [string]: [...string]
	ui?: {
		verbose?: bool
		color_scheme?: "auto" | "dark" | "light"
	}
}
`

type testSettings struct {
	PackagePaths []string            `json:"package_paths"`
	DefaultShell string              `json:"default_shell"`
	Aliases      map[string][]string `json:"aliases"`
	UI           struct {
		Verbose     bool   `json:"verbose"`
		ColorScheme string `json:"color_scheme"`
	} `json:"ui"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
package_paths: ["/studio/packages", "~/packages"]
aliases: lighting: ["maya-2024", "arnold"]
ui: color_scheme: "dark"
`)
	got, err := Decode[testSettings](testSchema, data, "#Settings", WithConcrete(false))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.PackagePaths) != 2 || got.PackagePaths[0] != "/studio/packages" {
		t.Errorf("PackagePaths = %v", got.PackagePaths)
	}
	if strings.Join(got.Aliases["lighting"], " ") != "maya-2024 arnold" {
		t.Errorf("Aliases = %v", got.Aliases)
	}
	if got.UI.ColorScheme != "dark" || got.UI.Verbose {
		t.Errorf("UI = %+v", got.UI)
	}
}

func TestDecode_IntoMap(t *testing.T) {
	t.Parallel()

	got, err := Decode[map[string]any](testSchema, []byte(`default_shell: "zsh"`), "#Settings", WithConcrete(false))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got["default_shell"] != "zsh" {
		t.Errorf("default_shell = %v", got["default_shell"])
	}
	if _, ok := got["package_paths"]; ok {
		t.Error("unset optional fields should be absent from the map")
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantErr []string
	}{
		{
			name:    "wrong type",
			data:    `default_shell: 42`,
			wantErr: []string{"settings.cue", "default_shell"},
		},
		{
			name:    "value outside enum",
			data:    `ui: color_scheme: "neon"`,
			wantErr: []string{"settings.cue", "color_scheme"},
		},
		{
			name:    "unknown field in closed definition",
			data:    `package_path: ["/x"]`,
			wantErr: []string{"settings.cue", "package_path"},
		},
		{
			name:    "syntax error",
			data:    `package_paths: [`,
			wantErr: []string{"settings.cue"},
		},
		{
			name:    "file too large",
			data:    `default_shell: "bash"`,
			opts:    []Option{WithMaxFileSize(8)},
			wantErr: []string{"settings.cue", "exceeds maximum 8 bytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]Option{WithFilename("settings.cue"), WithConcrete(false)}, tt.opts...)
			_, err := Decode[testSettings](testSchema, []byte(tt.data), "#Settings", opts...)
			if err == nil {
				t.Fatal("Decode() succeeded, want error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q should contain %q", err, want)
				}
			}
		})
	}
}

func TestDecode_UnknownDefinition(t *testing.T) {
	t.Parallel()

	_, err := Decode[testSettings](testSchema, []byte(`{}`), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Errorf("Decode() error = %v, want mention of #Missing", err)
	}
}
