package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/actpack/internal/actions"
	"github.com/example/actpack/internal/bundler"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

func newConfigCommand(opts *projectOptions) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "config ACTION",
		Short: "Print the bundler config composed for a single-file action",
		Long: `Config prints the JSON document the bundler receives for ACTION.
With --diff it prints a unified diff between the project defaults and the
composed config, showing what the discovered override changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			targets, err := actions.Targets(p.cfg, args)
			if err != nil {
				return err
			}
			if len(targets) != 1 {
				return fmt.Errorf("no action matches %q", args[0])
			}
			comp, err := p.builder.ComposeFor(cmd.Context(), p.cfg, targets[0])
			if err != nil {
				return err
			}
			after, err := renderConfig(comp.Config)
			if err != nil {
				return err
			}
			if !diff {
				fmt.Fprint(cmd.OutOrStdout(), after)
				return nil
			}
			before, err := renderConfig(bundler.Compose(comp.Defaults, nil))
			if err != nil {
				return err
			}
			source := "no override"
			if comp.Override != nil {
				source = rel(p.cfg.Root, comp.Override.Path)
			}
			text := renderUnifiedDiff(before, after, "defaults", source)
			if text == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "no override changes")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "Show the changes the override makes to the defaults")
	return cmd
}

func renderConfig(cfg *bundler.Config) (string, error) {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundler config: %w", err)
	}
	return string(raw) + "\n", nil
}

func renderUnifiedDiff(before, after, fromName, toName string) string {
	before = strings.TrimRight(before, "\n")
	after = strings.TrimRight(after, "\n")
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before + "\n"),
		B:        difflib.SplitLines(after + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}
