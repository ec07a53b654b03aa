// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-pipeline/anvil/internal/resolver"
)

type (
	// resolutionJSON is the --json shape of 'anvil resolve'.
	resolutionJSON struct {
		Platform string         `json:"platform"`
		Requests []string       `json:"requests"`
		Packages []resolvedJSON `json:"packages"`
	}

	resolvedJSON struct {
		Name     string   `json:"name"`
		Version  string   `json:"version"`
		Root     string   `json:"root,omitempty"`
		Requires []string `json:"requires"`
		Variants []string `json:"variants,omitempty"`
	}
)

func newResolveCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		asJSON   bool
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Show the resolved packages in dependency order",
		Long: `Resolve the requested packages and print the selected versions in the
order their environments are applied, together with what each one requires.`,
		Example: `  anvil resolve maya-2024 arnold
  anvil resolve --platform windows --json maya-2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleError(cmd, app.stderr, flags, showResolution(cmd, app, flags, args, lockPath, asJSON))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolution as JSON")
	cmd.Flags().StringVar(&lockPath, "lock", "", "resolve the pins of a lock file instead of package arguments")

	return cmd
}

func showResolution(cmd *cobra.Command, app *App, flags *rootFlags, requests []string, lockPath string, asJSON bool) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	res, err := s.resolve(requests, lockPath)
	if err != nil {
		return err
	}

	if asJSON {
		return writeResolutionJSON(app.stdout, res)
	}
	writeResolution(app.stdout, res)
	return nil
}

func writeResolution(w io.Writer, res *resolver.Resolution) {
	requests := make([]string, len(res.Requests))
	for i, r := range res.Requests {
		requests[i] = r.String()
	}
	fmt.Fprintf(w, "%s %s %s\n\n", TitleStyle.Render("Resolved"), strings.Join(requests, " "), SubtitleStyle.Render("("+res.Platform.String()+")"))

	width := len(fmt.Sprint(len(res.Packages)))
	for i, rp := range res.Packages {
		line := fmt.Sprintf("  %*d. %s %s", width, i+1, packageStyle.Render(rp.Name()), CmdStyle.Render(rp.Version().String()))
		if deps := res.Edges[rp.Name()]; len(deps) > 0 {
			line += SubtitleStyle.Render("  requires " + strings.Join(deps, ", "))
		}
		fmt.Fprintln(w, line)
	}
}

func writeResolutionJSON(w io.Writer, res *resolver.Resolution) error {
	out := resolutionJSON{
		Platform: res.Platform.String(),
		Requests: make([]string, len(res.Requests)),
		Packages: make([]resolvedJSON, len(res.Packages)),
	}
	for i, r := range res.Requests {
		out.Requests[i] = r.String()
	}
	for i, rp := range res.Packages {
		pkg := resolvedJSON{
			Name:     rp.Name(),
			Version:  rp.Version().String(),
			Root:     rp.Root(),
			Requires: append([]string{}, res.Edges[rp.Name()]...),
		}
		for _, v := range rp.Variants {
			pkg.Variants = append(pkg.Variants, v.String())
		}
		out.Packages[i] = pkg
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
