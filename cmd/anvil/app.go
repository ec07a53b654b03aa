// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/anvil-pipeline/anvil/internal/catalog"
	"github.com/anvil-pipeline/anvil/internal/compose"
	"github.com/anvil-pipeline/anvil/internal/config"
	"github.com/anvil-pipeline/anvil/internal/issue"
	"github.com/anvil-pipeline/anvil/internal/lockfile"
	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

var (
	// errNoRequest is returned when a command needs packages but got none.
	errNoRequest = errors.New("no packages requested")
	// errLockWithPackages is returned when --lock is combined with package arguments.
	errLockWithPackages = errors.New("packages cannot be combined with --lock")
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler receives
	// an App reference and reads configuration, the process environment and the
	// standard streams through it.
	App struct {
		Config  config.Provider
		Getenv  func(string) string
		Environ func() []string
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Getenv  func(string) string
		Environ func() []string
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// session is the state one invocation loads before resolving: the
	// configuration, the target platform and the scanned catalog.
	session struct {
		cfg      *config.Config
		platform platform.Platform
		paths    []string
		catalog  *catalog.FS
		logger   *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}

	return &App{
		Config:  deps.Config,
		Getenv:  deps.Getenv,
		Environ: deps.Environ,
		stdin:   deps.Stdin,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}, nil
}

// ambient returns a snapshot of the process environment.
func (a *App) ambient() map[string]string {
	env := make(map[string]string)
	for _, kv := range a.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// newLogger builds the logger handed to the catalog scanner and the resolver.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// loadConfig loads the configuration and applies its UI settings to flags.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	if !flags.verbose {
		flags.verbose = cfg.UI.Verbose
	}
	flags.colorScheme = string(cfg.UI.ColorScheme)
	return cfg, nil
}

// newSession loads configuration and scans the package search paths.
func (a *App) newSession(ctx context.Context, flags *rootFlags) (*session, error) {
	return a.openSession(ctx, flags, true)
}

// openSession is newSession with control over whether scan diagnostics are
// logged. Commands that print diagnostics themselves pass false; verbose mode
// logs them regardless.
func (a *App) openSession(ctx context.Context, flags *rootFlags, logDiagnostics bool) (*session, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(flags.verbose)

	p := platform.Current()
	if flags.platform != "" {
		p, err = platform.Parse(flags.platform)
		if err == nil && p.IsWildcard() {
			err = &platform.InvalidPlatformError{Value: flags.platform}
		}
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("select platform").
				WithResource(flags.platform).
				WithIssue(issue.InvalidRequestId).
				WithSuggestion("Use one of: linux, macos, windows").
				Wrap(err).
				BuildError()
		}
	}

	paths, err := cfg.PackagePaths(p, config.PathOptions{Extra: flags.packages, Getenv: a.Getenv})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("expand package paths").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check package_paths in your config and the " + config.EnvPackages + " variable").
			Wrap(err).
			BuildError()
	}
	logger.Debug("search paths", "paths", paths, "platform", p)

	scanLogger := logger
	if !logDiagnostics && !flags.verbose {
		scanLogger = log.New(io.Discard)
	}

	return &session{
		cfg:      cfg,
		platform: p,
		paths:    paths,
		catalog:  catalog.Scan(paths, catalog.Options{Logger: scanLogger}),
		logger:   logger,
	}, nil
}

// parseRequests expands configured aliases and parses the result into specs.
func (s *session) parseRequests(requests []string) ([]version.Spec, error) {
	expanded := s.cfg.ExpandAliases(requests)
	if len(expanded) == 0 {
		return nil, errNoRequest
	}
	if len(expanded) != len(requests) {
		s.logger.Debug("expanded aliases", "requests", requests, "packages", expanded)
	}
	return version.ParseSpecs(expanded)
}

// resolve resolves requests, or the pins of the lock file at lockPath when set.
func (s *session) resolve(requests []string, lockPath string) (*resolver.Resolution, error) {
	var specs []version.Spec
	if lockPath != "" {
		if len(requests) > 0 {
			return nil, errLockWithPackages
		}
		lf, err := lockfile.Load(lockPath)
		if err != nil {
			return nil, err
		}
		if err := lf.CheckPlatform(s.platform); err != nil {
			return nil, err
		}
		if specs, err = lf.Specs(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if specs, err = s.parseRequests(requests); err != nil {
			return nil, err
		}
	}

	return resolver.New(s.catalog, s.platform, resolver.WithLogger(s.logger)).Resolve(specs)
}

// compose resolves and composes in one step.
func (s *session) compose(requests []string, lockPath string, ambient map[string]string) (*compose.Result, error) {
	res, err := s.resolve(requests, lockPath)
	if err != nil {
		return nil, err
	}
	return compose.Compose(res.Packages, compose.Options{Ambient: ambient}), nil
}
