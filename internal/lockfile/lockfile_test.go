// SPDX-License-Identifier: MPL-2.0

package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/anvil-pipeline/anvil/internal/catalog"
	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

var generated = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func def(name, ver string, requires ...string) *pkgdef.PackageDef {
	reqs := make([]version.Spec, len(requires))
	for i, r := range requires {
		reqs[i] = version.MustParseSpec(r)
	}
	return &pkgdef.PackageDef{
		Name:        name,
		Version:     version.MustParseVersion(ver),
		Requires:    reqs,
		Environment: envmap.New(),
		Commands:    envmap.New(),
		Root:        filepath.Join("/pkg", name, ver),
	}
}

func resolve(t *testing.T, cat pkgdef.Catalog, p platform.Platform, requests ...string) *resolver.Resolution {
	t.Helper()
	specs, err := version.ParseSpecs(requests)
	if err != nil {
		t.Fatalf("ParseSpecs: %v", err)
	}
	res, err := resolver.Resolve(specs, cat, p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return res
}

func TestFromResolution(t *testing.T) {
	t.Parallel()

	python := def("python", "3.11")
	python.Variants = []pkgdef.Variant{{
		Platform:    platform.PlatformWindows,
		Requires:    []version.Spec{version.MustParseSpec("vcredist-2022")},
		HasRequires: true,
	}}
	cat := catalog.NewMemory(
		def("maya", "2024", "python-3.10|3.11"),
		python,
		def("vcredist", "2022"),
	)

	lf := FromResolution(resolve(t, cat, platform.PlatformLinux, "maya-2024+"), generated)

	if lf.Version != FormatVersion || lf.Platform != "linux" || !lf.Generated.Equal(generated) {
		t.Errorf("header = %d %s %v", lf.Version, lf.Platform, lf.Generated)
	}
	if !slices.Equal(lf.Requests, []string{"maya-2024+"}) {
		t.Errorf("Requests = %v", lf.Requests)
	}
	want := []Package{
		{Name: "python", Version: "3.11", Root: filepath.Join("/pkg", "python", "3.11")},
		{Name: "maya", Version: "2024", Root: filepath.Join("/pkg", "maya", "2024"), Requires: []string{"python-3.10|3.11"}},
	}
	if len(lf.Packages) != len(want) {
		t.Fatalf("Packages = %+v", lf.Packages)
	}
	for i := range want {
		got := lf.Packages[i]
		if got.Name != want[i].Name || got.Version != want[i].Version || got.Root != want[i].Root || !slices.Equal(got.Requires, want[i].Requires) {
			t.Errorf("Packages[%d] = %+v, want %+v", i, got, want[i])
		}
	}

	// Windows merges the variant, so the lock records the merged requires.
	win := FromResolution(resolve(t, cat, platform.PlatformWindows, "maya-2024+"), generated)
	if ids := packageIDs(win); !slices.Equal(ids, []string{"vcredist-2022", "python-3.11", "maya-2024"}) {
		t.Errorf("windows packages = %v", ids)
	}
	if got := win.Packages[1].Requires; !slices.Equal(got, []string{"vcredist-2022"}) {
		t.Errorf("windows python requires = %v", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	cat := catalog.NewMemory(
		def("maya", "2024", "python-3.10|3.11"),
		def("python", "3.11"),
		def("arnold", "7.2", "maya-2024+"),
		def("studio-tools", "1.0.0"),
	)
	lf := FromResolution(resolve(t, cat, platform.PlatformLinux, "arnold-7.2", `studio\-tools`), generated)

	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := Save(path, lf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"version = 1", "platform = 'linux'", "[[packages]]", "name = 'arnold'"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("lock file should contain %q:\n%s", want, data)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Generated.Equal(generated) {
		t.Errorf("Generated = %v, want %v", loaded.Generated, generated)
	}
	if !slices.Equal(packageIDs(loaded), packageIDs(lf)) {
		t.Errorf("packages = %v, want %v", packageIDs(loaded), packageIDs(lf))
	}
	if !slices.Equal(loaded.Requests, []string{"arnold-7.2", `studio\-tools`}) {
		t.Errorf("Requests = %v", loaded.Requests)
	}
}

func TestSpecs_ReproduceResolution(t *testing.T) {
	t.Parallel()

	cat := catalog.NewMemory(
		def("maya", "2024", "python-3.10+"),
		def("python", "3.10"),
	)
	lf := FromResolution(resolve(t, cat, platform.PlatformLinux, "maya"), generated)

	// Newer releases appear after the lock was written.
	cat.Add(def("maya", "2025", "python-3.12"))
	cat.Add(def("python", "3.12"))

	specs, err := lf.Specs()
	if err != nil {
		t.Fatalf("Specs: %v", err)
	}
	for _, s := range specs {
		if s.Constraint.Kind() != version.KindExact {
			t.Errorf("spec %s should be an exact pin", s)
		}
	}

	res, err := resolver.Resolve(specs, cat, platform.PlatformLinux)
	if err != nil {
		t.Fatalf("Resolve(pins): %v", err)
	}
	if got := res.IDs(); !slices.Equal(got, []string{"python-3.10", "maya-2024"}) {
		t.Errorf("pinned resolution = %v, want [python-3.10 maya-2024]", got)
	}
}

func TestSpecs_DashedNames(t *testing.T) {
	t.Parallel()

	lf := &LockFile{Packages: []Package{{Name: "studio-tools", Version: "1.0.0"}}}
	specs, err := lf.Specs()
	if err != nil {
		t.Fatalf("Specs: %v", err)
	}
	if specs[0].Name != "studio-tools" || specs[0].String() != `studio\-tools-1.0.0` {
		t.Errorf("spec = %+v (%s)", specs[0], specs[0])
	}
}

func TestCheckPlatform(t *testing.T) {
	t.Parallel()

	lf := &LockFile{Platform: "linux"}
	if err := lf.CheckPlatform(platform.PlatformLinux); err != nil {
		t.Errorf("CheckPlatform(linux) = %v", err)
	}
	err := lf.CheckPlatform(platform.PlatformWindows)
	if !errors.Is(err, ErrPlatformMismatch) {
		t.Errorf("CheckPlatform(windows) = %v, want ErrPlatformMismatch", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		wantReason string
	}{
		{name: "malformed", data: "version = [", wantReason: "malformed TOML"},
		{name: "wrong format version", data: "version = 7\nplatform = 'linux'\n", wantReason: "unsupported format version 7"},
		{name: "missing version", data: "platform = 'linux'\n", wantReason: "unsupported format version 0"},
		{name: "bad platform", data: "version = 1\nplatform = 'amiga'\n", wantReason: "bad platform"},
		{name: "bad package version", data: "version = 1\nplatform = 'linux'\n[[packages]]\nname = 'maya'\nversion = '20 24'\n", wantReason: "packages[0] (maya)"},
		{name: "unnamed package", data: "version = 1\nplatform = 'linux'\n[[packages]]\nversion = '1'\n", wantReason: "packages[0] has no name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.data), "anvil.lock")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidLockFile) {
				t.Errorf("errors.Is(err, ErrInvalidLockFile) = false for %v", err)
			}
			var ile *InvalidLockFileError
			if !errors.As(err, &ile) {
				t.Fatalf("expected *InvalidLockFileError, got %T", err)
			}
			if ile.Path != "anvil.lock" {
				t.Errorf("Path = %q, want anvil.lock", ile.Path)
			}
			if ile.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", ile.Reason, tt.wantReason)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.lock"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestSave_Nil(t *testing.T) {
	t.Parallel()

	if err := Save(filepath.Join(t.TempDir(), "x.lock"), nil); err == nil {
		t.Error("Save(nil) should fail")
	}
}

func packageIDs(lf *LockFile) []string {
	ids := make([]string, len(lf.Packages))
	for i, p := range lf.Packages {
		ids[i] = p.Name + "-" + p.Version
	}
	return ids
}
