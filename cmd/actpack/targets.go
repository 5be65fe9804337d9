package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type targetOutput struct {
	Action  string `json:"action"`
	Kind    string `json:"kind,omitempty"`
	Source  string `json:"source"`
	TempDir string `json:"tempDir"`
	Archive string `json:"archive"`
	Error   string `json:"error,omitempty"`
}

func newTargetsCommand(opts *projectOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "targets [FILTER...]",
		Short: "List the actions a build would produce, in build order",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			plan, err := p.builder.Plan(p.cfg, args)
			if err != nil {
				return err
			}
			out := make([]targetOutput, 0, len(plan))
			for _, pl := range plan {
				o := targetOutput{
					Action:  pl.Target.Name(),
					Source:  rel(p.cfg.Root, pl.Target.Source),
					TempDir: rel(p.cfg.Root, pl.TempDir),
					Archive: rel(p.cfg.Root, pl.Archive),
				}
				if pl.Err != nil {
					o.Error = pl.Err.Error()
				} else {
					o.Kind = pl.Source.Kind.String()
				}
				out = append(out, o)
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			bad := color.New(color.FgRed)
			if !isTerminalWriter(cmd.OutOrStdout()) {
				bad.DisableColor()
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTION\tKIND\tSOURCE\tARCHIVE")
			for _, o := range out {
				kind := o.Kind
				if o.Error != "" {
					kind = bad.Sprint("invalid")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Action, kind, o.Source, o.Archive)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, o := range out {
				if o.Error != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", o.Action, o.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON output")
	return cmd
}

func rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}
