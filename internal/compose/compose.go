// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"maps"
	"slices"

	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
)

type (
	// RootFunc maps a resolved package to the directory substituted for ${PACKAGE_ROOT}.
	RootFunc func(*pkgdef.ResolvedPackage) string

	// Options controls composition.
	Options struct {
		// Ambient is a read-only snapshot of the enclosing environment, consulted
		// when a variable has not been composed yet.
		Ambient map[string]string
		// Root overrides the package root. Nil uses each definition's Root.
		Root RootFunc
	}

	// Result is the composed environment and command table.
	Result struct {
		// Env holds only the variables the packages assigned, in first-assignment order.
		Env *envmap.Map
		// Commands maps command aliases to expanded templates.
		Commands *envmap.Map
		// CommandOwners maps each alias to the ID of the package that defined the
		// winning template.
		CommandOwners map[string]string
	}
)

// Compose applies the packages' environments and commands in order.
func Compose(resolved []*pkgdef.ResolvedPackage, opts Options) *Result {
	res := &Result{
		Env:           envmap.New(),
		Commands:      envmap.New(),
		CommandOwners: make(map[string]string),
	}

	lookup := func(name string) (string, bool) {
		if v, ok := res.Env.Get(name); ok {
			return v, true
		}
		v, ok := opts.Ambient[name]
		return v, ok
	}

	for _, rp := range resolved {
		root := rp.Root()
		if opts.Root != nil {
			root = opts.Root(rp)
		}
		scope := Scope{
			Root:    root,
			Name:    rp.Name(),
			Version: rp.Version().String(),
			Lookup:  lookup,
		}

		for key, tmpl := range rp.Environment.All() {
			res.Env.Set(key, Expand(tmpl, scope))
		}
		for alias, tmpl := range rp.Commands.All() {
			res.Commands.Set(alias, Expand(tmpl, scope))
			res.CommandOwners[alias] = rp.ID()
		}
	}
	return res
}

// Command returns the expanded template for alias and the ID of its owner.
func (r *Result) Command(alias string) (template, owner string, ok bool) {
	template, ok = r.Commands.Get(alias)
	if !ok {
		return "", "", false
	}
	return template, r.CommandOwners[alias], true
}

// Environ returns "KEY=value" pairs of ambient overlaid with the composed
// environment, suitable for exec.Cmd.Env. Ambient keys come first in sorted
// order, followed by newly composed keys in composition order.
func (r *Result) Environ(ambient map[string]string) []string {
	merged := envmap.New()
	for _, k := range slices.Sorted(maps.Keys(ambient)) {
		merged.Set(k, ambient[k])
	}
	merged.Overlay(r.Env)

	out := make([]string, 0, merged.Len())
	for k, v := range merged.All() {
		out = append(out, k+"="+v)
	}
	return out
}
