// SPDX-License-Identifier: MPL-2.0

package pkgdef

import (
	"slices"

	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

// ResolvedPackage is a PackageDef with its matching variants merged for one platform.
type ResolvedPackage struct {
	Def         *PackageDef
	Requires    []version.Spec
	Environment *envmap.Map
	Commands    *envmap.Map
	// Variants lists the platforms of the variants that were merged, in merge order.
	Variants []platform.Platform
}

// Merge applies the variants of def that match p.
//
// Wildcard variants are applied first, then variants for p itself, each group in
// declaration order. A variant that declares requires replaces the accumulated
// list; environment entries override per key, keeping the position of keys that
// already exist and appending new ones.
func Merge(def *PackageDef, p platform.Platform) *ResolvedPackage {
	rp := &ResolvedPackage{
		Def:         def,
		Requires:    slices.Clone(def.Requires),
		Environment: def.Environment.Clone(),
		Commands:    def.Commands.Clone(),
	}

	apply := func(v Variant) {
		if v.HasRequires {
			rp.Requires = slices.Clone(v.Requires)
		}
		rp.Environment.Overlay(v.Environment)
		rp.Variants = append(rp.Variants, v.Platform)
	}

	for _, v := range def.Variants {
		if v.Platform.IsWildcard() {
			apply(v)
		}
	}
	if !p.IsWildcard() {
		for _, v := range def.Variants {
			if v.Platform == p {
				apply(v)
			}
		}
	}
	return rp
}

// Name returns the package name.
func (rp *ResolvedPackage) Name() string { return rp.Def.Name }

// Version returns the resolved version.
func (rp *ResolvedPackage) Version() version.Version { return rp.Def.Version }

// Root returns the package install directory.
func (rp *ResolvedPackage) Root() string { return rp.Def.Root }

// ID returns "name-version".
func (rp *ResolvedPackage) ID() string { return rp.Def.ID() }
