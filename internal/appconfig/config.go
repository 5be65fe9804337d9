// Package appconfig loads actpack project settings from the global and
// per-repository config files.
package appconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	RepoFileName      = ".actpack.yaml"
	DefaultManifest   = "manifest.yml"
	DefaultDist       = "dist"
	DefaultActionsDir = "actions"
	DefaultEnv        = "prod"
)

type BuildConfig struct {
	Manifest    string `yaml:"manifest,omitempty"`
	Dist        string `yaml:"dist,omitempty"`
	ActionsRoot string `yaml:"actionsRoot,omitempty"`
	Package     string `yaml:"package,omitempty"`
	Env         string `yaml:"env,omitempty"`
	Bundler     string `yaml:"bundler,omitempty"`
	HasBackend  *bool  `yaml:"hasBackend,omitempty"`
}

type Config struct {
	LogLevel string      `yaml:"logLevel,omitempty"`
	Build    BuildConfig `yaml:"build,omitempty"`
}

func DefaultGlobalPath() string {
	home, _ := homedir.Dir()
	if strings.TrimSpace(home) == "" {
		return ""
	}
	return filepath.Join(home, ".actpack", "config.yaml")
}

func DefaultRepoPath(repoRoot string) string {
	repoRoot = strings.TrimSpace(repoRoot)
	if repoRoot == "" {
		return ""
	}
	return filepath.Join(repoRoot, RepoFileName)
}

// Load merges the global config with the repository config; repository
// values win field by field. Missing files are not an error.
func Load(ctx context.Context, globalPath, repoPath string) (Config, error) {
	_ = ctx
	cfg := Config{}
	if strings.TrimSpace(globalPath) != "" {
		if c, err := loadOne(globalPath); err != nil {
			return Config{}, fmt.Errorf("load global config: %w", err)
		} else {
			cfg = merge(cfg, c)
		}
	}
	if strings.TrimSpace(repoPath) != "" {
		if c, err := loadOne(repoPath); err != nil {
			return Config{}, fmt.Errorf("load repo config: %w", err)
		} else {
			cfg = merge(cfg, c)
		}
	}
	return cfg, nil
}

func loadOne(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return Config{}, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, p := range []*string{&cfg.Build.Manifest, &cfg.Build.Dist, &cfg.Build.ActionsRoot} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		*p = expanded
	}
	return cfg, nil
}

func merge(a, b Config) Config {
	out := a
	if b.LogLevel != "" {
		out.LogLevel = b.LogLevel
	}
	out.Build = mergeBuild(a.Build, b.Build)
	return out
}

func mergeBuild(a, b BuildConfig) BuildConfig {
	out := a
	if b.Manifest != "" {
		out.Manifest = b.Manifest
	}
	if b.Dist != "" {
		out.Dist = b.Dist
	}
	if b.ActionsRoot != "" {
		out.ActionsRoot = b.ActionsRoot
	}
	if b.Package != "" {
		out.Package = b.Package
	}
	if b.Env != "" {
		out.Env = b.Env
	}
	if b.Bundler != "" {
		out.Bundler = b.Bundler
	}
	if b.HasBackend != nil {
		out.HasBackend = b.HasBackend
	}
	return out
}

// WithDefaults fills unset build paths relative to root.
func (c BuildConfig) WithDefaults(root string) BuildConfig {
	out := c
	if out.Manifest == "" {
		out.Manifest = DefaultManifest
	}
	if out.Dist == "" {
		out.Dist = DefaultDist
	}
	if out.ActionsRoot == "" {
		out.ActionsRoot = DefaultActionsDir
	}
	if out.Env == "" {
		out.Env = DefaultEnv
	}
	out.Manifest = resolve(root, out.Manifest)
	out.Dist = resolve(root, out.Dist)
	out.ActionsRoot = resolve(root, out.ActionsRoot)
	return out
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
