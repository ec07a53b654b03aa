// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"slices"

	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

// Memory is an in-memory catalog. The zero value is ready to use.
type Memory struct {
	defs map[string][]*pkgdef.PackageDef
}

// NewMemory returns a catalog holding defs.
func NewMemory(defs ...*pkgdef.PackageDef) *Memory {
	m := &Memory{}
	for _, d := range defs {
		m.Add(d)
	}
	return m
}

// Add inserts def, keeping each name's definitions ordered newest first.
// A definition with the same name and version as an existing one replaces it.
func (m *Memory) Add(def *pkgdef.PackageDef) {
	if m.defs == nil {
		m.defs = make(map[string][]*pkgdef.PackageDef)
	}
	list := m.defs[def.Name]
	if i := slices.IndexFunc(list, func(d *pkgdef.PackageDef) bool { return d.Version.Equal(def.Version) }); i >= 0 {
		list[i] = def
		return
	}
	list = append(list, def)
	slices.SortStableFunc(list, func(a, b *pkgdef.PackageDef) int { return version.Compare(b.Version, a.Version) })
	m.defs[def.Name] = list
}

// ListVersions implements pkgdef.Catalog. Definitions are returned newest first.
// The platform does not filter: variant eligibility is decided by the resolver.
func (m *Memory) ListVersions(name string, _ platform.Platform) ([]*pkgdef.PackageDef, error) {
	return slices.Clone(m.defs[name]), nil
}

// Lookup returns the definition of name at exactly v.
func (m *Memory) Lookup(name string, v version.Version) (*pkgdef.PackageDef, bool) {
	for _, d := range m.defs[name] {
		if d.Version.Equal(v) {
			return d, true
		}
	}
	return nil, false
}

// Names returns every package name, sorted.
func (m *Memory) Names() []string {
	names := make([]string, 0, len(m.defs))
	for name := range m.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Versions returns the versions of name, newest first.
func (m *Memory) Versions(name string) []version.Version {
	defs := m.defs[name]
	out := make([]version.Version, len(defs))
	for i, d := range defs {
		out[i] = d.Version
	}
	return out
}

// Find returns the newest definition matching s.
func (m *Memory) Find(s version.Spec) (*pkgdef.PackageDef, bool) {
	for _, d := range m.defs[s.Name] {
		if s.Constraint.Matches(d.Version) {
			return d, true
		}
	}
	return nil, false
}

// All returns every definition, grouped by sorted name, newest first within a name.
func (m *Memory) All() []*pkgdef.PackageDef {
	var out []*pkgdef.PackageDef
	for _, name := range m.Names() {
		out = append(out, m.defs[name]...)
	}
	return out
}
