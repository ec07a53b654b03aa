// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/anvil-pipeline/anvil/internal/dag"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

type (
	// Option configures a Resolver.
	Option func(*Resolver)

	// Resolver resolves requests against a catalog for one platform.
	// It keeps no state between calls to Resolve.
	Resolver struct {
		catalog  pkgdef.Catalog
		platform platform.Platform
		logger   *log.Logger
	}

	// Resolution is the outcome of a successful resolve.
	Resolution struct {
		// Packages is in dependency-first order.
		Packages []*pkgdef.ResolvedPackage
		Platform platform.Platform
		Requests []version.Spec
		// Edges maps a package name to the names it requires, in declaration order.
		Edges map[string][]string
	}

	// workItem is a queued requirement.
	workItem struct {
		spec     version.Spec
		requirer Requirer
		// names holds the package names along requirer.Chain; it is the in-progress
		// set used for cycle detection.
		names []string
	}

	// nameState accumulates everything known about one package name.
	nameState struct {
		constraint   version.Constraint
		requirements []Requirement
		selected     *pkgdef.ResolvedPackage
		selectedBy   Requirement
	}
)

// WithLogger sets the logger used for the selection trace.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver. Without WithLogger the trace is discarded.
func New(catalog pkgdef.Catalog, p platform.Platform, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  catalog,
		platform: p,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is shorthand for New(catalog, p).Resolve(requests).
func Resolve(requests []version.Spec, catalog pkgdef.Catalog, p platform.Platform) (*Resolution, error) {
	return New(catalog, p).Resolve(requests)
}

// Resolve computes the set of packages satisfying requests and all of their
// transitive requirements. It returns no partial result on failure.
func (r *Resolver) Resolve(requests []version.Spec) (*Resolution, error) {
	states := make(map[string]*nameState)
	graph := dag.New()
	edges := make(map[string][]string)

	queue := make([]workItem, 0, len(requests))
	for _, spec := range requests {
		queue = append(queue, workItem{spec: spec})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		name := item.spec.Name

		if at := slices.Index(item.names, name); at >= 0 {
			cycle := append(slices.Clone(item.names[at:]), name)
			return nil, &CyclicDependencyError{Cycle: cycle}
		}

		req := Requirement{Constraint: item.spec.Constraint, Requirer: item.requirer}
		st, seen := states[name]

		combined := item.spec.Constraint
		if seen {
			var ok bool
			combined, ok = st.constraint.Intersect(item.spec.Constraint)
			if !ok {
				return nil, &VersionConflictError{Package: name, A: st.conflictingWith(req), B: req}
			}
		}

		defs, err := r.catalog.ListVersions(name, r.platform)
		if err != nil {
			return nil, fmt.Errorf("listing versions of %q: %w", name, err)
		}
		if len(defs) == 0 {
			return nil, &PackageNotFoundError{Name: name, Requirer: item.requirer}
		}

		def := newestSatisfying(combined, defs)
		if def == nil {
			return nil, &UnsatisfiableConstraintError{
				Package:    name,
				Constraint: combined,
				Requirer:   item.requirer,
				Available:  availableVersions(defs),
			}
		}

		if seen {
			if !st.selected.Version().Equal(def.Version) {
				return nil, &VersionConflictError{Package: name, A: st.selectedBy, B: req}
			}
			st.constraint = combined
			st.requirements = append(st.requirements, req)
			r.addEdge(graph, edges, item, name)
			r.logger.Debug("requirement already satisfied", "package", name, "version", def.Version, "constraint", combined, "requirer", item.requirer)
			continue
		}

		resolved := pkgdef.Merge(def, r.platform)
		states[name] = &nameState{
			constraint:   combined,
			requirements: []Requirement{req},
			selected:     resolved,
			selectedBy:   req,
		}
		graph.AddNode(name)
		r.addEdge(graph, edges, item, name)
		r.logger.Debug("selected package", "package", name, "version", def.Version, "constraint", combined, "requirer", item.requirer, "variants", resolved.Variants)

		chain := append(slices.Clone(item.requirer.Chain), resolved.ID())
		names := append(slices.Clone(item.names), name)
		for _, dep := range resolved.Requires {
			queue = append(queue, workItem{
				spec:     dep,
				requirer: Requirer{Chain: chain},
				names:    names,
			})
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			// Graph edges point from dependency to dependent; report in requires order.
			cycle := slices.Clone(cycleErr.Cycle)
			slices.Reverse(cycle)
			return nil, &CyclicDependencyError{Cycle: cycle}
		}
		return nil, err
	}

	res := &Resolution{
		Packages: make([]*pkgdef.ResolvedPackage, 0, len(order)),
		Platform: r.platform,
		Requests: slices.Clone(requests),
		Edges:    edges,
	}
	for _, name := range order {
		res.Packages = append(res.Packages, states[name].selected)
	}
	return res, nil
}

func (r *Resolver) addEdge(graph *dag.Graph, edges map[string][]string, item workItem, name string) {
	if len(item.names) == 0 {
		return
	}
	dependent := item.names[len(item.names)-1]
	graph.AddEdge(name, dependent)
	if !slices.Contains(edges[dependent], name) {
		edges[dependent] = append(edges[dependent], name)
	}
}

// conflictingWith picks the earlier requirement to blame for a conflict with req:
// the first one that is incompatible on its own, else the most recent one, whose
// narrowing made the accumulated constraint incompatible.
func (st *nameState) conflictingWith(req Requirement) Requirement {
	for _, prev := range st.requirements {
		if _, ok := prev.Constraint.Intersect(req.Constraint); !ok {
			return prev
		}
	}
	return st.requirements[len(st.requirements)-1]
}

// newestSatisfying returns the highest-versioned def matching c. On equal
// versions the earlier def wins.
func newestSatisfying(c version.Constraint, defs []*pkgdef.PackageDef) *pkgdef.PackageDef {
	var best *pkgdef.PackageDef
	for _, d := range defs {
		if !c.Matches(d.Version) {
			continue
		}
		if best == nil || best.Version.Less(d.Version) {
			best = d
		}
	}
	return best
}

func availableVersions(defs []*pkgdef.PackageDef) []version.Version {
	out := make([]version.Version, 0, len(defs))
	for _, d := range defs {
		if !slices.ContainsFunc(out, d.Version.Equal) {
			out = append(out, d.Version)
		}
	}
	slices.SortFunc(out, func(a, b version.Version) int { return version.Compare(b, a) })
	return out
}

// Names returns the resolved package names in order.
func (res *Resolution) Names() []string {
	names := make([]string, len(res.Packages))
	for i, p := range res.Packages {
		names[i] = p.Name()
	}
	return names
}

// IDs returns the resolved "name-version" identifiers in order.
func (res *Resolution) IDs() []string {
	ids := make([]string, len(res.Packages))
	for i, p := range res.Packages {
		ids[i] = p.ID()
	}
	return ids
}

// Lookup returns the resolved package with the given name.
func (res *Resolution) Lookup(name string) (*pkgdef.ResolvedPackage, bool) {
	for _, p := range res.Packages {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}
