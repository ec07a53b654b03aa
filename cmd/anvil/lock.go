// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/issue"
	"github.com/anvil-pipeline/anvil/internal/lockfile"
	"github.com/anvil-pipeline/anvil/pkg/platform"
)

func newLockCommand(app *App, flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "lock <package>...",
		Short: "Write the resolution to a lock file",
		Long: `Resolve the requested packages and write the selected versions to a lock
file. Pass the file to env, run, shell or resolve with --lock to reproduce
exactly this resolution later, even after newer versions are installed.`,
		Example: `  anvil lock maya-2024 arnold-7.2+
  anvil lock -o shots/sq010.lock maya-2024`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, writeLock(cmd, app, flags, args, output))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", lockfile.DefaultFileName, "lock file to write")

	return cmd
}

func writeLock(cmd *cobra.Command, app *App, flags *rootFlags, requests []string, output string) error {
	if platform.IsWindowsReservedName(filepath.Base(output)) {
		return issue.NewErrorContext().
			WithOperation("write lock file").
			WithResource(output).
			WithSuggestion("Pick a name that is not a Windows device name (CON, NUL, COM1, ...)").
			Wrap(fmt.Errorf("%q is a reserved file name on windows", filepath.Base(output))).
			BuildError()
	}

	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	res, err := s.resolve(requests, "")
	if err != nil {
		return err
	}

	if err := lockfile.Save(output, lockfile.FromResolution(res, time.Now())); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Locked %d package(s) to %s\n", SuccessStyle.Render("✓"), len(res.Packages), output)
	return nil
}
