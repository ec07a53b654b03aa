// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/launch"
)

func newEnvCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		export   bool
		asJSON   bool
		format   string
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "env <package>...",
		Short: "Print the composed environment",
		Long: `Resolve the requested packages and print the environment they compose.

Only the variables the packages assign are printed. Use --export to get a
script for your shell that can be evaluated directly:

  eval "$(anvil env --export maya-2024 arnold-7.2+)"`,
		Example: `  anvil env maya-2024
  anvil env --json maya-2024+ arnold
  anvil env --format fish maya-2024 | source
  anvil env --lock anvil.lock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := envFormat(app, export, asJSON, format)
			if err == nil {
				err = printEnv(cmd, app, flags, args, lockPath, f)
			}
			return handleError(cmd, app.stderr, flags, err)
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "print a script for the current shell")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON object")
	cmd.Flags().StringVar(&format, "format", "", "output format (plain, export, json, fish, pwsh, cmd)")
	cmd.Flags().StringVar(&lockPath, "lock", "", "resolve the pins of a lock file instead of package arguments")
	cmd.MarkFlagsMutuallyExclusive("export", "json", "format")

	return cmd
}

// envFormat picks the output format from the env flags. --export follows the
// user's shell the same way 'anvil shell' picks one.
func envFormat(app *App, export, asJSON bool, format string) (launch.Format, error) {
	switch {
	case asJSON:
		return launch.FormatJSON, nil
	case export:
		return launch.FormatForShell(launch.DetectShell(app.Getenv)), nil
	default:
		return launch.ParseFormat(format)
	}
}

func printEnv(cmd *cobra.Command, app *App, flags *rootFlags, requests []string, lockPath string, f launch.Format) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	result, err := s.compose(requests, lockPath, app.ambient())
	if err != nil {
		return err
	}
	return launch.Render(app.stdout, result.Env, f)
}
