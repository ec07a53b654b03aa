// SPDX-License-Identifier: MPL-2.0

package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

// FormatVersion is the lock file layout written by this package.
const FormatVersion = 1

// DefaultFileName is used by `anvil lock` when no output path is given.
const DefaultFileName = "anvil.lock"

var (
	// ErrInvalidLockFile is the sentinel error wrapped by InvalidLockFileError.
	ErrInvalidLockFile = errors.New("invalid lock file")
	// ErrPlatformMismatch is returned when a lock file is used on another platform.
	ErrPlatformMismatch = errors.New("lock file platform mismatch")
)

type (
	// LockFile is the on-disk record of one resolution.
	LockFile struct {
		Version   int       `toml:"version"`
		Generated time.Time `toml:"generated"`
		Platform  string    `toml:"platform"`
		// Requests are the request strings the resolution was made from.
		Requests []string `toml:"requests"`
		// Packages are in dependency-first order.
		Packages []Package `toml:"packages"`
	}

	// Package is one pinned package.
	Package struct {
		Name     string   `toml:"name"`
		Version  string   `toml:"version"`
		Root     string   `toml:"root,omitempty"`
		Requires []string `toml:"requires,omitempty"`
	}

	// InvalidLockFileError describes why a lock file was rejected.
	InvalidLockFileError struct {
		Path   string
		Reason string
		Cause  error
	}
)

// Error implements the error interface.
func (e *InvalidLockFileError) Error() string {
	msg := "invalid lock file"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns both the sentinel and the cause.
func (e *InvalidLockFileError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidLockFile}
	}
	return []error{ErrInvalidLockFile, e.Cause}
}

// FromResolution builds a lock file from res. The requires of each package are
// the specs after variant merging, so the lock reflects res.Platform only.
func FromResolution(res *resolver.Resolution, generated time.Time) *LockFile {
	lf := &LockFile{
		Version:   FormatVersion,
		Generated: generated.UTC().Truncate(time.Second),
		Platform:  res.Platform.String(),
		Requests:  make([]string, 0, len(res.Requests)),
		Packages:  make([]Package, 0, len(res.Packages)),
	}
	for _, spec := range res.Requests {
		lf.Requests = append(lf.Requests, spec.String())
	}
	for _, rp := range res.Packages {
		pkg := Package{
			Name:    rp.Name(),
			Version: rp.Version().String(),
			Root:    rp.Root(),
		}
		for _, req := range rp.Requires {
			pkg.Requires = append(pkg.Requires, req.String())
		}
		lf.Packages = append(lf.Packages, pkg)
	}
	return lf
}

// Specs returns an exact request for every pinned package, in lock order.
func (lf *LockFile) Specs() ([]version.Spec, error) {
	specs := make([]version.Spec, 0, len(lf.Packages))
	for i, pkg := range lf.Packages {
		if pkg.Name == "" {
			return nil, &InvalidLockFileError{Reason: fmt.Sprintf("packages[%d] has no name", i)}
		}
		v, err := version.ParseVersion(pkg.Version)
		if err != nil {
			return nil, &InvalidLockFileError{Reason: fmt.Sprintf("packages[%d] (%s)", i, pkg.Name), Cause: err}
		}
		specs = append(specs, version.Spec{Name: pkg.Name, Constraint: version.Exact(v)})
	}
	return specs, nil
}

// CheckPlatform returns an error wrapping ErrPlatformMismatch when the lock
// file was written for a platform other than p.
func (lf *LockFile) CheckPlatform(p platform.Platform) error {
	if lf.Platform != p.String() {
		return fmt.Errorf("%w: written for %s, running on %s", ErrPlatformMismatch, lf.Platform, p)
	}
	return nil
}

// Marshal encodes lf as TOML.
func (lf *LockFile) Marshal() ([]byte, error) {
	data, err := toml.Marshal(lf)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock file: %w", err)
	}
	return data, nil
}

// Parse decodes and validates TOML lock file data. path is used in errors only.
func Parse(data []byte, path string) (*LockFile, error) {
	var lf LockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, &InvalidLockFileError{Path: path, Reason: "malformed TOML", Cause: err}
	}
	if lf.Version != FormatVersion {
		return nil, &InvalidLockFileError{Path: path, Reason: fmt.Sprintf("unsupported format version %d", lf.Version)}
	}
	if _, err := platform.Parse(lf.Platform); err != nil {
		return nil, &InvalidLockFileError{Path: path, Reason: "bad platform", Cause: err}
	}
	if _, err := lf.Specs(); err != nil {
		var ile *InvalidLockFileError
		if errors.As(err, &ile) {
			ile.Path = path
		}
		return nil, err
	}
	return &lf, nil
}

// Load reads and validates the lock file at path.
func Load(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}
	return Parse(data, path)
}

// Save writes lf to path, replacing any existing file only once the new
// content is fully written.
func Save(path string, lf *LockFile) error {
	if lf == nil {
		return errors.New("lock file is nil")
	}
	data, err := lf.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".anvil-lock-*")
	if err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}
