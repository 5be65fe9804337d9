// main.go bootstraps actpack: it builds the root Cobra command and executes it with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &projectOptions{logLevel: "info"}
	cmd := &cobra.Command{
		Use:           "actpack",
		Short:         "Package serverless actions declared in a manifest into zip archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Project root (defaults to the nearest directory holding .actpack.yaml, manifest.yml or .git)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level (debug, info, warn, error)")
	opts.bindBuildFlags(cmd.PersistentFlags())

	buildCmd := newBuildCommand(opts)
	targetsCmd := newTargetsCommand(opts)
	configCmd := newConfigCommand(opts)
	cmd.AddCommand(buildCmd, targetsCmd, configCmd, newVersionCommand())
	cmd.Example = `  # Build every action in the manifest
  actpack build

  # Build one action of the default package and one of another package
  actpack build action-zip extrapkg/thumbnail

  # Show what would be built and where the archives land
  actpack targets

  # Show the bundler config composed for an action, and what the override changed
  actpack config action --diff`
	bindViper(cmd, buildCmd, targetsCmd, configCmd)
	return cmd
}

// bindViper lets ACTPACK_* environment variables and the file named by
// ACTPACK_CONFIG fill flags the user did not set.
func bindViper(commands ...*cobra.Command) {
	if len(commands) == 0 {
		return
	}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("ACTPACK")
	v.AutomaticEnv()
	configFile := os.Getenv("ACTPACK_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	cobra.OnInitialize(func() {
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
			if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if configFile != "" {
			cobra.CheckErr(v.ReadInConfig())
		}
		for _, cmd := range commands {
			flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()}
			for _, fs := range flagSets {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Changed {
						return
					}
					if !v.IsSet(f.Name) {
						return
					}
					val := fmt.Sprintf("%v", v.Get(f.Name))
					if val != "" {
						_ = f.Value.Set(val)
					}
				})
			}
		}
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	if errors.Is(err, context.Canceled) {
		message = fmt.Sprintf("%s\nHint: the build was interrupted; rerun to rebuild the remaining actions.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
