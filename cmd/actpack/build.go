package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/example/actpack/internal/archive"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type buildOutput struct {
	Action  string `json:"action"`
	Kind    string `json:"kind"`
	Archive string `json:"archive"`
	Digest  string `json:"digest"`
}

func newBuildCommand(opts *projectOptions) *cobra.Command {
	var quiet bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "build [FILTER...]",
		Short: "Build zip archives for the actions in the manifest",
		Long: `Build classifies every selected action, bundles single-file actions, and
writes one zip archive per action under <dist>/actions.

A FILTER is either an action name of the default package or <package>/<action>.
Without filters every action is built. The first failing action stops the build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet && jsonOut {
				return fmt.Errorf("--quiet and --json are mutually exclusive")
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			results, err := p.builder.Run(cmd.Context(), p.cfg, args)
			if err != nil {
				if jsonOut {
					raw, _ := json.Marshal(map[string]any{
						"success": false,
						"error":   err.Error(),
					})
					fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				}
				return err
			}
			if len(results) == 0 && !jsonOut {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no actions matched")
			}

			out := make([]buildOutput, 0, len(results))
			for _, r := range results {
				d, err := archive.Digest(r.Archive)
				if err != nil {
					return err
				}
				out = append(out, buildOutput{
					Action:  r.Target.Name(),
					Kind:    r.Source.Kind.String(),
					Archive: r.Archive,
					Digest:  d.String(),
				})
			}
			switch {
			case jsonOut:
				raw, _ := json.Marshal(out)
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			case quiet:
				for _, o := range out {
					fmt.Fprintln(cmd.OutOrStdout(), o.Archive)
				}
			default:
				name := color.New(color.FgGreen, color.Bold)
				if !isTerminalWriter(cmd.OutOrStdout()) {
					name.DisableColor()
				}
				for _, o := range out {
					rel, err := filepath.Rel(p.cfg.Root, o.Archive)
					if err != nil {
						rel = o.Archive
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Built %s (%s) -> %s %s\n", name.Sprint(o.Action), o.Kind, rel, o.Digest)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Print only the archive paths")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON output")
	cmd.Example = `  # Build everything
  actpack build

  # Build the default package's "action" and print only the archive path
  actpack build action --quiet

  # Use a different bundler wrapper
  actpack build --bundler "node scripts/bundle.js"`
	return cmd
}
