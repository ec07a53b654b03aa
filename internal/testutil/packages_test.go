// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWritePackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := WritePackage(t, root, "maya", "2024", "")

	if want := filepath.Join(root, "maya", "2024"); dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
	data, err := os.ReadFile(filepath.Join(dir, "package.yaml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "name: maya") || !strings.Contains(string(data), `version: "2024"`) {
		t.Errorf("unexpected default body %q", data)
	}

	custom := WritePackage(t, root, "arnold", "7.2", "name: arnold\nversion: '7.2'\n")
	data, err = os.ReadFile(filepath.Join(custom, "package.yaml"))
	if err != nil || string(data) != "name: arnold\nversion: '7.2'\n" {
		t.Errorf("custom body = %q, %v", data, err)
	}
}
