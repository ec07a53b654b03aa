// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/catalog"
	"github.com/anvil-pipeline/anvil/internal/issue"
	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

func newValidateCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name]",
		Short: "Check package definitions and their dependencies",
		Long: `Report package files that could not be loaded and check that every
package version (or every version of the named package) resolves on the
target platform.

Exits with status 1 when any problem is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, validatePackages(cmd, app, flags, args))
		},
	}
}

func validatePackages(cmd *cobra.Command, app *App, flags *rootFlags, args []string) error {
	s, err := app.openSession(cmd.Context(), flags, false)
	if err != nil {
		return err
	}
	w := app.stdout
	problems := 0

	loadFailures := 0
	for _, d := range s.catalog.Diagnostics() {
		mark := WarningStyle.Render("!")
		if d.Severity == catalog.SeverityError {
			mark = ErrorStyle.Render("✗")
			loadFailures++
		}
		fmt.Fprintf(w, "%s %s\n", mark, d)
	}
	problems += loadFailures
	if loadFailures > 0 && flags.verbose {
		renderIssue(app.stderr, issue.PackageLoadFailedId, flags.colorScheme)
	}

	var defs []*pkgdef.PackageDef
	if len(args) == 1 {
		defs, _ = s.catalog.ListVersions(args[0], s.platform)
		if len(defs) == 0 {
			return &resolver.PackageNotFoundError{Name: args[0]}
		}
	} else {
		defs = s.catalog.All()
	}

	r := resolver.New(s.catalog, s.platform, resolver.WithLogger(s.logger))
	for _, def := range defs {
		if _, err := r.Resolve([]version.Spec{def.Spec()}); err != nil {
			problems++
			fmt.Fprintf(w, "%s %s: %v\n", ErrorStyle.Render("✗"), def.ID(), err)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), def.ID())
	}

	fmt.Fprintf(w, "\n%d package(s) checked on %s, %d problem(s)\n", len(defs), s.platform, problems)
	if problems > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
