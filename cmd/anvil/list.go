// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/resolver"
)

func newListCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list [name]",
		Short: "List available packages",
		Long: `List the packages found on the search paths with their versions, newest
first. With a name, list the versions of that package and their descriptions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, listPackages(cmd, app, flags, args))
		},
	}
}

func listPackages(cmd *cobra.Command, app *App, flags *rootFlags, args []string) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	w := app.stdout

	if len(args) == 1 {
		name := args[0]
		defs, _ := s.catalog.ListVersions(name, s.platform)
		if len(defs) == 0 {
			return &resolver.PackageNotFoundError{Name: name}
		}
		fmt.Fprintln(w, packageStyle.Render(name))
		for _, def := range defs {
			line := "  " + CmdStyle.Render(def.Version.String())
			if def.Description != "" {
				line += "  " + def.Description
			}
			fmt.Fprintln(w, line)
		}
		return nil
	}

	names := s.catalog.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No packages found. Search paths:"))
		for _, p := range s.paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
		return nil
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	for _, name := range names {
		versions := s.catalog.Versions(name)
		texts := make([]string, len(versions))
		for i, v := range versions {
			texts[i] = v.String()
		}
		pad := strings.Repeat(" ", width-len(name))
		fmt.Fprintf(w, "%s%s  %s\n", packageStyle.Render(name), pad, CmdStyle.Render(strings.Join(texts, ", ")))
	}
	return nil
}
