// SPDX-License-Identifier: MPL-2.0

package pkgdef

import (
	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

type (
	// PackageDef is the metadata of one package version.
	PackageDef struct {
		Name        string
		Version     version.Version
		Description string
		// Requires lists the direct dependencies in declaration order.
		Requires []version.Spec
		Variants []Variant
		// Environment maps variable names to raw templates, in declaration order.
		Environment *envmap.Map
		// Commands maps command aliases to raw templates.
		Commands *envmap.Map
		// Root is the install directory substituted for ${PACKAGE_ROOT}.
		Root string
		// Source is the file the definition was loaded from, if any.
		Source string
	}

	// Variant is a platform-keyed override block.
	Variant struct {
		Platform platform.Platform
		// Requires replaces the accumulated requires list when HasRequires is set.
		// An explicit empty list clears the dependencies.
		Requires    []version.Spec
		HasRequires bool
		Environment *envmap.Map
	}

	// Catalog answers which definitions exist for a package name.
	//
	// ListVersions returns every definition for name, with the base requires and
	// environment intact. An empty result means the package is unknown on p.
	Catalog interface {
		ListVersions(name string, p platform.Platform) ([]*PackageDef, error)
	}

	// CatalogFunc adapts a function to the Catalog interface.
	CatalogFunc func(name string, p platform.Platform) ([]*PackageDef, error)
)

// ListVersions calls f.
func (f CatalogFunc) ListVersions(name string, p platform.Platform) ([]*PackageDef, error) {
	return f(name, p)
}

// ID returns the canonical "name-version" identifier.
func (d *PackageDef) ID() string {
	return d.Name + "-" + d.Version.String()
}

// Spec returns an exact request pinning this definition.
func (d *PackageDef) Spec() version.Spec {
	return version.Spec{Name: d.Name, Constraint: version.Exact(d.Version)}
}

// HasVariantFor reports whether any variant applies to p, wildcard included.
func (d *PackageDef) HasVariantFor(p platform.Platform) bool {
	for _, v := range d.Variants {
		if v.Platform.Matches(p) {
			return true
		}
	}
	return false
}
