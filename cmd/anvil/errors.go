// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/config"
	"github.com/anvil-pipeline/anvil/internal/issue"
	"github.com/anvil-pipeline/anvil/internal/launch"
	"github.com/anvil-pipeline/anvil/internal/lockfile"
	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

// classifyError maps a failure to the issue catalog entry that explains it.
// Zero means no guide applies.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	switch {
	case errors.Is(err, resolver.ErrPackageNotFound):
		return issue.PackageNotFoundId
	case errors.Is(err, resolver.ErrVersionConflict):
		return issue.VersionConflictId
	case errors.Is(err, resolver.ErrCyclicDependency):
		return issue.DependencyCycleId
	case errors.Is(err, resolver.ErrUnsatisfiableConstraint):
		return issue.UnsatisfiableConstraintId
	case errors.Is(err, version.ErrInvalidSpec),
		errors.Is(err, version.ErrInvalidVersion),
		errors.Is(err, platform.ErrInvalidPlatform),
		errors.Is(err, launch.ErrInvalidFormat),
		errors.Is(err, launch.ErrInvalidAssignment),
		errors.Is(err, errNoRequest),
		errors.Is(err, errLockWithPackages),
		errors.Is(err, errMissingDash):
		return issue.InvalidRequestId
	case errors.Is(err, lockfile.ErrInvalidLockFile),
		errors.Is(err, lockfile.ErrPlatformMismatch):
		return issue.LockFileInvalidId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, launch.ErrNoCommand):
		return issue.CommandFailedId
	default:
		return 0
	}
}

// describeError attaches operation context and suggestions to core errors.
// Errors that are already actionable are returned unchanged.
func describeError(err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ctx := issue.NewErrorContext().Wrap(err)

	var (
		notFound    *resolver.PackageNotFoundError
		unsat       *resolver.UnsatisfiableConstraintError
		conflict    *resolver.VersionConflictError
		cycle       *resolver.CyclicDependencyError
		invalidLock *lockfile.InvalidLockFileError
	)
	switch {
	case errors.As(err, &notFound):
		ctx.WithOperation("resolve packages").
			WithSuggestions(
				"Run 'anvil list' to see available packages",
				"Run 'anvil config show' to check the package search paths",
			)
	case errors.As(err, &unsat):
		ctx.WithOperation("resolve packages").
			WithSuggestion(fmt.Sprintf("Run 'anvil list %s' to see available versions", unsat.Package))
	case errors.As(err, &conflict):
		ctx.WithOperation("resolve packages").
			WithSuggestions(
				"Relax one of the constraints so both requirers accept a common version",
				"Run 'anvil resolve' with fewer packages to find which request introduces the conflict",
			)
	case errors.As(err, &cycle):
		ctx.WithOperation("resolve packages").
			WithSuggestion("Remove one of the requires entries along the cycle")
	case errors.Is(err, version.ErrInvalidSpec), errors.Is(err, version.ErrInvalidVersion):
		ctx.WithOperation("parse package request").
			WithSuggestion("Requests look like 'maya', 'maya-2024', 'maya-2024+', 'maya-2023..2025' or 'maya-2023|2024'")
	case errors.Is(err, errNoRequest), errors.Is(err, errLockWithPackages):
		ctx.WithOperation("parse package request").
			WithSuggestion("Pass package requests as arguments, or a lock file with --lock")
	case errors.As(err, &invalidLock):
		ctx.WithOperation("load lock file").
			WithSuggestion("Regenerate it with 'anvil lock'")
	case errors.Is(err, lockfile.ErrPlatformMismatch):
		ctx.WithOperation("load lock file").
			WithSuggestion("Regenerate the lock file on this platform, or pass the matching --platform")
	case errors.Is(err, fs.ErrNotExist):
		ctx.WithOperation("read file")
	default:
		return err
	}
	return ctx.BuildError()
}

// handleError renders err for the user and converts it into an ExitError.
// Exit statuses of launched commands pass through unchanged and silently.
func handleError(cmd *cobra.Command, stderr io.Writer, flags *rootFlags, err error) error {
	if err == nil {
		return nil
	}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	var launchExit *launch.ExitError
	if errors.As(err, &launchExit) {
		return &ExitError{Code: launchExit.Code, Err: err}
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	err = describeError(err)
	fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, flags.verbose))

	if flags.verbose {
		if id := classifyError(err); id != 0 {
			renderIssue(stderr, id, flags.colorScheme)
		}
	}
	return &ExitError{Code: 1, Err: err}
}

// renderIssue prints the markdown guide for id.
func renderIssue(w io.Writer, id issue.Id, style string) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	if style == "" {
		style = string(config.ColorSchemeAuto)
	}
	rendered, err := entry.Render(style)
	if err != nil {
		log.Warn("failed to render issue guide", "id", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// include their suggestions and, in verbose mode, the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
