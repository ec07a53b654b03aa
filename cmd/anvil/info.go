// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/resolver"
	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

func newInfoCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <package>",
		Short: "Show the definition of a package",
		Long: `Show the newest definition matching a package request. Requires and
environment are shown with the variants of the target platform merged in.`,
		Example: `  anvil info maya
  anvil info --platform windows python-3.11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, showInfo(cmd, app, flags, args[0]))
		},
	}
}

func showInfo(cmd *cobra.Command, app *App, flags *rootFlags, request string) error {
	spec, err := version.ParseSpec(request)
	if err != nil {
		return err
	}
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}

	def, ok := s.catalog.Find(spec)
	if !ok {
		available := s.catalog.Versions(spec.Name)
		if len(available) == 0 {
			return &resolver.PackageNotFoundError{Name: spec.Name}
		}
		return &resolver.UnsatisfiableConstraintError{Package: spec.Name, Constraint: spec.Constraint, Available: available}
	}

	writeInfo(app.stdout, pkgdef.Merge(def, s.platform))
	return nil
}

func writeInfo(w io.Writer, rp *pkgdef.ResolvedPackage) {
	def := rp.Def
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s%s\n", labelStyle.Render(label), value)
		}
	}

	fmt.Fprintf(w, "%s %s\n", packageStyle.Render(def.Name), CmdStyle.Render(def.Version.String()))
	field("Description", def.Description)
	field("Root", def.Root)
	field("Source", def.Source)

	requires := make([]string, len(rp.Requires))
	for i, r := range rp.Requires {
		requires[i] = r.String()
	}
	field("Requires", strings.Join(requires, ", "))

	variants := make([]string, len(def.Variants))
	for i, v := range def.Variants {
		variants[i] = v.Platform.String()
	}
	field("Variants", strings.Join(variants, ", "))

	writeTemplates(w, "Environment", rp.Environment)
	writeTemplates(w, "Commands", rp.Commands)
}

func writeTemplates(w io.Writer, label string, m *envmap.Map) {
	if m.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", labelStyle.Render(label))
	for k, v := range m.All() {
		fmt.Fprintf(w, "    %s = %s\n", CmdStyle.Render(k), v)
	}
}
