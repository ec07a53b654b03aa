// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/config"
	"github.com/anvil-pipeline/anvil/pkg/platform"
)

// newConfigCommand creates the `anvil config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage anvil configuration",
		Long: `Manage anvil configuration.

Configuration is stored in:
  - Linux: ~/.config/anvil/config.cue
  - macOS: ~/Library/Application Support/anvil/config.cue
  - Windows: %APPDATA%\anvil\config.cue

Set ` + config.EnvConfig + ` or pass --config to use another file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, showConfig(cmd, app, flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, initConfig(app, flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, showConfigPath(app, flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return handleError(cmd, app.stderr, flags, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlags) error {
	cfg, err := app.loadConfig(cmd.Context(), flags)
	if err != nil {
		return err
	}
	w := app.stdout

	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, headerStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	cfgPath, err := config.ConfigPath(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err == nil && fileExistsCheck(cfgPath) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("package_paths"))
	writeList(w, cfg.PackagePaths, valueStyle.Render)

	p := platform.Current()
	if flags.platform != "" {
		if parsed, err := platform.Parse(flags.platform); err == nil && !parsed.IsWildcard() {
			p = parsed
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s:\n", keyStyle.Render("search paths"), SubtitleStyle.Render("("+p.String()+")"))
	paths, err := cfg.PackagePaths(p, config.PathOptions{Extra: flags.packages, Getenv: app.Getenv})
	if err != nil {
		fmt.Fprintf(w, "  %s\n", ErrorStyle.Render(err.Error()))
	} else {
		writeList(w, paths, valueStyle.Render)
	}

	fmt.Fprintln(w)
	shell := cfg.DefaultShell
	if shell == "" {
		shell = SubtitleStyle.Render("(detect from $SHELL)")
	} else {
		shell = valueStyle.Render(shell)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("default_shell"), shell)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("aliases"))
	if len(cfg.Aliases) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Aliases)) {
		fmt.Fprintf(w, "  %s: %s\n", name, valueStyle.Render(strings.Join(cfg.Aliases[name], " ")))
	}

	if len(cfg.Platform) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render("platform"))
		for _, key := range slices.Sorted(maps.Keys(cfg.Platform)) {
			fmt.Fprintf(w, "  %s.package_paths: %s\n", key, valueStyle.Render(strings.Join(cfg.Platform[key].PackagePaths, ", ")))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func writeList(w io.Writer, items []string, render func(...string) string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", render(item))
	}
}

func initConfig(app *App, flags *rootFlags) error {
	cfgPath, created, err := config.CreateDefaultConfig(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), cfgPath)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(app *App, flags *rootFlags) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
	return nil
}

func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
