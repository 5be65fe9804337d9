package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/actpack/internal/actions"
	"github.com/example/actpack/internal/appconfig"
	"github.com/example/actpack/internal/bundler"
	"github.com/example/actpack/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

type projectOptions struct {
	root        string
	logLevel    string
	manifest    string
	dist        string
	actionsRoot string
	pkg         string
	env         string
	bundler     string
}

func (o *projectOptions) bindBuildFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.manifest, "manifest", "", "Manifest file (default manifest.yml under the project root)")
	fs.StringVar(&o.dist, "dist", "", "Output directory (default dist under the project root)")
	fs.StringVar(&o.actionsRoot, "actions-root", "", "Shared directory searched for a bundler override (default actions)")
	fs.StringVar(&o.pkg, "package", "", "Deployed name of the default package (default <name>-<version> from package.json)")
	fs.StringVar(&o.env, "env", "", "Value injected as process.env.ACTPACK_ENV (default prod)")
	fs.StringVar(&o.bundler, "bundler", "", "Bundler command (default \""+bundler.DefaultCommand+"\")")
}

type project struct {
	cfg     actions.Config
	builder *actions.Builder
}

// loadProject merges the config files with the flags the user set and
// wires a Builder for the resulting project.
func loadProject(cmd *cobra.Command, o *projectOptions) (*project, error) {
	root := strings.TrimSpace(o.root)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working dir: %w", err)
		}
		root = appconfig.FindRepoRoot(wd)
		if root == "" {
			root = wd
		}
	}
	fileCfg, err := appconfig.Load(cmd.Context(), appconfig.DefaultGlobalPath(), appconfig.DefaultRepoPath(root))
	if err != nil {
		return nil, err
	}
	level := o.logLevel
	if f := cmd.Flags().Lookup("log-level"); (f == nil || !f.Changed) && fileCfg.LogLevel != "" {
		level = fileCfg.LogLevel
	}
	log, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	bc := fileCfg.Build
	for _, f := range []struct {
		dst *string
		val string
	}{
		{&bc.Manifest, o.manifest},
		{&bc.Dist, o.dist},
		{&bc.ActionsRoot, o.actionsRoot},
		{&bc.Package, o.pkg},
		{&bc.Env, o.env},
		{&bc.Bundler, o.bundler},
	} {
		if v := strings.TrimSpace(f.val); v != "" {
			*f.dst = v
		}
	}
	cfg, err := actions.LoadConfig(root, bc)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("project loaded", "root", cfg.Root, "dist", cfg.Dist, "package", cfg.PackageName, "hasBackend", cfg.HasBackend)

	b := actions.New(actions.Dependencies{
		Bundler: bundler.NewExecBundler(bc.Bundler, cfg.Root, log.WithName("bundler")),
		Logger:  log,
	})
	return &project{cfg: cfg, builder: b}, nil
}

func isTerminalWriter(w io.Writer) bool {
	type fdProvider interface {
		Fd() uintptr
	}
	if v, ok := w.(fdProvider); ok {
		return term.IsTerminal(int(v.Fd()))
	}
	return false
}
