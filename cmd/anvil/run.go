// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/launch"
)

// errMissingDash is returned when 'anvil run' has no "--" separator.
var errMissingDash = errors.New("separate the command from the packages with --")

func newRunCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		envVars  []string
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "run <package>... -- <command> [args...]",
		Short: "Run a command inside the composed environment",
		Long: `Resolve the requested packages and run a command inside their environment.

When the command name is an alias declared by one of the packages, the alias
template runs in the built-in shell interpreter with the remaining arguments
as $1, $2, ... Otherwise the command is looked up on the composed PATH.

The exit status of the command becomes the exit status of anvil.`,
		Example: `  anvil run maya-2024 -- maya -batch
  anvil run maya-2024 arnold -e ARNOLD_LICENSE=5053@lic -- kick scene.ass
  anvil run --lock anvil.lock -- mayapy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, runInEnv(cmd, app, flags, args, envVars, lockPath))
		},
	}

	cmd.Flags().StringArrayVarP(&envVars, "env", "e", nil, "set an environment variable KEY=VALUE (can be specified multiple times)")
	cmd.Flags().StringVar(&lockPath, "lock", "", "resolve the pins of a lock file instead of package arguments")

	return cmd
}

func runInEnv(cmd *cobra.Command, app *App, flags *rootFlags, args, envVars []string, lockPath string) error {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return errMissingDash
	}
	requests, argv := args[:dash], args[dash:]
	if len(argv) == 0 {
		return launch.ErrNoCommand
	}

	extra, err := launch.ParseAssignments(envVars)
	if err != nil {
		return err
	}

	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	result, err := s.compose(requests, lockPath, app.ambient())
	if err != nil {
		return err
	}

	s.logger.Debug("running command", "argv", argv)
	return launch.Run(cmd.Context(), argv, launch.Options{
		Composition: result,
		Ambient:     app.ambient(),
		Extra:       extra,
		Stdin:       app.stdin,
		Stdout:      app.stdout,
		Stderr:      app.stderr,
	})
}
