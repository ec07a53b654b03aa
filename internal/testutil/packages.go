// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// WritePackage writes a package.yaml under root/name/version and returns the
// version directory. An empty body produces a minimal definition with just the
// name and version.
//
//	dir := testutil.WritePackage(t, root, "maya", "2024", `
//	name: maya
//	version: "2024"
//	environment:
//	  MAYA_LOCATION: ${PACKAGE_ROOT}
//	`)
func WritePackage(t testing.TB, root, name, version, body string) string {
	t.Helper()
	dir := filepath.Join(root, name, version)
	if body == "" {
		body = "name: " + name + "\nversion: \"" + version + "\"\n"
	}
	MustWriteFile(t, filepath.Join(dir, "package.yaml"), body)
	return dir
}
