// SPDX-License-Identifier: MPL-2.0

package config

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/anvil-pipeline/anvil/pkg/platform"

	"mvdan.cc/sh/v3/shell"
)

// DefaultPackagePaths are searched when neither the config file nor the
// environment names any package path.
var DefaultPackagePaths = []string{
	"~/packages",
	"~/.local/share/anvil/packages",
	"/opt/packages",
}

// PathOptions controls how search paths are assembled.
type PathOptions struct {
	// Extra paths (from --packages) come first.
	Extra []string
	// Getenv looks up environment variables; nil means os.Getenv.
	Getenv func(string) string
}

// PackagePaths returns the ordered package search paths for platform p:
// extra paths, then $ANVIL_PACKAGES, then the configured paths (or
// DefaultPackagePaths when none are configured), then the platform override.
// Each path has ~ and $VAR references expanded; duplicates keep their first
// position.
func (c *Config) PackagePaths(p platform.Platform, opts PathOptions) ([]string, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var raw []string
	raw = append(raw, opts.Extra...)
	raw = append(raw, filepath.SplitList(getenv(EnvPackages))...)
	if len(c.PackagePaths) > 0 {
		raw = append(raw, c.PackagePaths...)
	} else if len(raw) == 0 {
		raw = append(raw, DefaultPackagePaths...)
	}
	if override, ok := c.Platform[p.String()]; ok {
		raw = append(raw, override.PackagePaths...)
	}

	seen := make(map[string]bool, len(raw))
	paths := make([]string, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		expanded, err := expandPath(entry, getenv)
		if err != nil {
			return nil, err
		}
		if seen[expanded] {
			continue
		}
		seen[expanded] = true
		paths = append(paths, expanded)
	}
	return paths, nil
}

// expandPath expands a leading ~ and any $VAR or ${VAR} references.
func expandPath(path string, getenv func(string) string) (string, error) {
	env := func(name string) string {
		if name == "HOME" {
			if home := getenv("HOME"); home != "" {
				return home
			}
			home, _ := os.UserHomeDir()
			return home
		}
		return getenv(name)
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		path = "${HOME}" + path[1:]
	}
	expanded, err := shell.Expand(path, env)
	if err != nil {
		return "", fmt.Errorf("expanding package path %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// ExpandAliases replaces every request that names an alias with the alias's
// requests. Expansion is one level deep: requests produced by an alias are
// not looked up again. Alias names are matched case-insensitively.
func (c *Config) ExpandAliases(requests []string) []string {
	if len(c.Aliases) == 0 {
		return slices.Clone(requests)
	}
	out := make([]string, 0, len(requests))
	for _, req := range requests {
		if expansion, ok := c.lookupAlias(req); ok {
			out = append(out, expansion...)
			continue
		}
		out = append(out, req)
	}
	return out
}

func (c *Config) lookupAlias(name string) ([]string, bool) {
	if expansion, ok := c.Aliases[name]; ok {
		return expansion, true
	}
	for key, expansion := range c.Aliases {
		if strings.EqualFold(key, name) {
			return expansion, true
		}
	}
	return nil, false
}

func sortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	return slices.Sorted(maps.Keys(m))
}
