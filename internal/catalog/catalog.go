// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

type (
	// Options configures Scan.
	Options struct {
		// Logger receives a warning per diagnostic and a debug line per loaded
		// definition. Nil discards output.
		Logger *log.Logger
	}

	// FS is a catalog loaded from search paths. It is read-only after Scan.
	FS struct {
		Memory
		paths       []string
		diagnostics []Diagnostic
	}
)

// Scan loads every definition under paths. Missing search paths are skipped
// silently; unreadable directories and bad files become diagnostics.
func Scan(paths []string, opts Options) *FS {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &FS{paths: slices.Clone(paths)}
	report := func(d Diagnostic) {
		c.diagnostics = append(c.diagnostics, d)
		kv := []any{"code", d.Code, "path", d.Path}
		if d.Cause != nil {
			kv = append(kv, "error", d.Cause)
		}
		logger.Warn(d.Message, kv...)
	}

	for _, base := range paths {
		logger.Debug("scanning packages", "path", base)
		names, err := os.ReadDir(base)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			report(Diagnostic{Severity: SeverityWarning, Code: CodeSearchPathUnreadable, Message: "cannot read search path", Path: base, Cause: err})
			continue
		}

		for _, nameEntry := range names {
			if !nameEntry.IsDir() || strings.HasPrefix(nameEntry.Name(), ".") {
				continue
			}
			pkgDir := filepath.Join(base, nameEntry.Name())
			versions, err := os.ReadDir(pkgDir)
			if err != nil {
				report(Diagnostic{Severity: SeverityWarning, Code: CodeSearchPathUnreadable, Message: "cannot read package directory", Path: pkgDir, Cause: err})
				continue
			}
			for _, verEntry := range versions {
				if !verEntry.IsDir() {
					continue
				}
				c.loadVersionDir(filepath.Join(pkgDir, verEntry.Name()), nameEntry.Name(), verEntry.Name(), report, logger)
			}
		}
	}

	logger.Debug("catalog loaded", "packages", len(c.Names()), "diagnostics", len(c.diagnostics))
	return c
}

func (c *FS) loadVersionDir(dir, dirName, dirVersion string, report func(Diagnostic), logger *log.Logger) {
	file := filepath.Join(dir, FileName)
	if _, err := os.Stat(file); err != nil {
		return
	}

	def, err := LoadDir(dir)
	if err != nil {
		code := CodeParseFailed
		if errors.Is(err, ErrInvalidDefinition) {
			code = CodeInvalidDefinition
		}
		report(Diagnostic{Severity: SeverityError, Code: code, Message: "skipping package", Path: file, Cause: err})
		return
	}

	if def.Name != dirName {
		report(Diagnostic{
			Severity: SeverityError,
			Code:     CodeLayoutMismatch,
			Message:  fmt.Sprintf("package name %q does not match directory %q", def.Name, dirName),
			Path:     file,
		})
		return
	}
	if dv, err := version.ParseVersion(dirVersion); err != nil || !dv.Equal(def.Version) {
		report(Diagnostic{
			Severity: SeverityError,
			Code:     CodeLayoutMismatch,
			Message:  fmt.Sprintf("package version %q does not match directory %q", def.Version, dirVersion),
			Path:     file,
		})
		return
	}

	if existing, ok := c.Lookup(def.Name, def.Version); ok {
		report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeShadowed,
			Message:  fmt.Sprintf("%s is shadowed by %s", def.ID(), existing.Source),
			Path:     file,
		})
		return
	}

	c.Add(def)
	logger.Debug("loaded package", "id", def.ID(), "root", def.Root)
}

// Paths returns the search paths in scan order.
func (c *FS) Paths() []string {
	return slices.Clone(c.paths)
}

// Diagnostics returns the problems found during Scan.
func (c *FS) Diagnostics() []Diagnostic {
	return slices.Clone(c.diagnostics)
}

var (
	_ pkgdef.Catalog = (*FS)(nil)
	_ pkgdef.Catalog = (*Memory)(nil)
)
