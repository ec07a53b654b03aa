// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/anvil-pipeline/anvil/internal/issue"
	"github.com/anvil-pipeline/anvil/internal/launch"
)

func newShellCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		shell    string
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "shell <package>...",
		Short: "Start an interactive shell inside the composed environment",
		Long: `Resolve the requested packages and start an interactive shell in their
environment. The prompt is prefixed with "` + launch.PromptPrefix + `".

The shell is taken from --shell, then default_shell in the config, then $SHELL.`,
		Example: `  anvil shell maya-2024 arnold
  anvil shell --shell zsh maya-2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, startShell(cmd, app, flags, args, shell, lockPath))
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "", "shell to start")
	cmd.Flags().StringVar(&lockPath, "lock", "", "resolve the pins of a lock file instead of package arguments")

	return cmd
}

func startShell(cmd *cobra.Command, app *App, flags *rootFlags, requests []string, shell, lockPath string) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	result, err := s.compose(requests, lockPath, app.ambient())
	if err != nil {
		return err
	}

	if shell == "" {
		shell = s.cfg.DefaultShell
	}
	if shell == "" {
		shell = launch.DetectShell(app.Getenv)
	}

	opts := launch.Options{
		Composition: result,
		Ambient:     app.ambient(),
		Stdin:       app.stdin,
		Stdout:      app.stdout,
		Stderr:      app.stderr,
	}
	if _, err := interp.LookPathDir(".", expand.ListEnviron(opts.Environ()...), shell); err != nil {
		return issue.NewErrorContext().
			WithOperation("find shell").
			WithResource(shell).
			WithIssue(issue.ShellNotFoundId).
			WithSuggestions(
				"Install the shell or pass another one with --shell",
				"Set default_shell in the config with 'anvil config init'",
			).
			Wrap(err).
			BuildError()
	}

	s.logger.Debug("starting shell", "shell", shell)
	err = launch.Shell(cmd.Context(), shell, opts)
	var exitErr *launch.ExitError
	if errors.As(err, &exitErr) {
		// The last command typed decides a shell's status; it is not a failure of anvil.
		return &ExitError{Code: exitErr.Code, Err: fmt.Errorf("shell exited: %w", err)}
	}
	return err
}
