// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
	platform   string
	packages   []string

	// colorScheme is taken from the loaded config and selects the glamour style
	// used for issue guides.
	colorScheme string
}

// NewRootCommand builds the anvil command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "anvil",
		Short: "Resolve packages and compose pipeline environments",
		Long: TitleStyle.Render("anvil") + SubtitleStyle.Render(" - Resolve packages and compose pipeline environments") + `

anvil finds package definitions on the configured search paths, resolves a
request such as 'maya-2024 arnold-7.2' into a consistent set of package
versions and composes the environment those packages declare.

` + SubtitleStyle.Render("Examples:") + `
  anvil env maya-2024 arnold-7.2+     Print the composed environment
  anvil run maya-2024 -- maya         Launch maya inside the environment
  anvil shell maya-2024               Start a shell inside the environment
  anvil list                          List available packages
  anvil config show                   Show current configuration`,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <config dir>/anvil/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.platform, "platform", "", "resolve for another platform (linux, macos, windows)")
	rootCmd.PersistentFlags().StringArrayVar(&flags.packages, "packages", nil, "extra package search path (can be specified multiple times)")

	rootCmd.AddCommand(newEnvCommand(app, flags))
	rootCmd.AddCommand(newRunCommand(app, flags))
	rootCmd.AddCommand(newShellCommand(app, flags))
	rootCmd.AddCommand(newResolveCommand(app, flags))
	rootCmd.AddCommand(newListCommand(app, flags))
	rootCmd.AddCommand(newInfoCommand(app, flags))
	rootCmd.AddCommand(newValidateCommand(app, flags))
	rootCmd.AddCommand(newLockCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version is passed explicitly.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
