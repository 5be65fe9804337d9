package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/actpack/internal/appconfig"
	"github.com/example/actpack/internal/manifest"
)

// Config is everything one build invocation needs to know about the project.
type Config struct {
	// Root is the absolute project root; function paths and include globs
	// resolve against it.
	Root     string
	Manifest *manifest.Manifest
	Dist     string
	// ActionsRoot is the shared directory searched for a bundler override
	// after the action's own directory.
	ActionsRoot string
	// PackageName is the deployed name of the default package. When empty
	// the default package keeps the manifest sentinel as its name.
	PackageName string
	HasBackend  bool
	Env         string
}

// LoadConfig resolves bc against root and loads the manifest it names. A
// missing manifest means the project has no backend unless bc says
// otherwise.
func LoadConfig(root string, bc appconfig.BuildConfig) (Config, error) {
	absRoot, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return Config{}, err
	}
	bc = bc.WithDefaults(absRoot)
	cfg := Config{
		Root:        absRoot,
		Dist:        bc.Dist,
		ActionsRoot: bc.ActionsRoot,
		PackageName: strings.TrimSpace(bc.Package),
		Env:         bc.Env,
	}

	present := true
	if _, err := os.Stat(bc.Manifest); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("stat manifest: %w", err)
		}
		present = false
	}
	if present {
		m, err := manifest.Load(bc.Manifest)
		if err != nil {
			return Config{}, err
		}
		cfg.Manifest = m
	}
	cfg.HasBackend = present
	if bc.HasBackend != nil {
		cfg.HasBackend = *bc.HasBackend
	}

	if cfg.PackageName == "" {
		d, err := manifest.ReadDescriptor(absRoot)
		switch {
		case err == nil:
			cfg.PackageName = d.PackageName()
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, err
		}
	}
	if cfg.Manifest != nil && cfg.PackageName != "" && cfg.PackageName != manifest.DefaultPackage {
		if _, ok := cfg.Manifest.Package(cfg.PackageName); ok {
			return Config{}, &ConfigurationError{Reason: fmt.Sprintf("default package name %q collides with a package declared in the manifest", cfg.PackageName)}
		}
	}
	return cfg, nil
}

func (c Config) defaultPackageName() string {
	if c.PackageName != "" {
		return c.PackageName
	}
	return manifest.DefaultPackage
}
