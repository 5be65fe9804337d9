// File: internal/actions/targets.go
// Brief: Manifest traversal and filter tokens.

package actions

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/actpack/internal/manifest"
)

// Target is one action selected for building.
type Target struct {
	// Package is the deployed package name; for the default package this is
	// Config.PackageName or the manifest sentinel.
	Package string
	Action  string
	// Source is the absolute function path.
	Source  string
	Default bool
	Include []manifest.Include
}

// Name returns "<package>/<action>".
func (t Target) Name() string { return t.Package + "/" + t.Action }

// Targets lists the actions to build. Non-default packages come first in
// manifest order, then the default package; actions within a package are
// sorted by name. A filter token "name" selects an action of the default
// package and "pkg/name" selects one of pkg. No filters selects everything.
func Targets(cfg Config, filters []string) ([]Target, error) {
	if !cfg.HasBackend {
		return nil, ErrNoBackend
	}
	if cfg.Manifest == nil {
		return nil, nil
	}
	defaultName := cfg.defaultPackageName()
	want := filterSet(filters, defaultName)

	var out []Target
	for _, pkg := range cfg.Manifest.Packages {
		if !pkg.IsDefault() {
			out = appendPackage(out, cfg, pkg, pkg.Name, want)
		}
	}
	for _, pkg := range cfg.Manifest.Packages {
		if pkg.IsDefault() {
			out = appendPackage(out, cfg, pkg, defaultName, want)
		}
	}
	return out, nil
}

func appendPackage(out []Target, cfg Config, pkg manifest.Package, name string, want map[string]struct{}) []Target {
	if len(pkg.Actions) == 0 {
		return out
	}
	names := make([]string, 0, len(pkg.Actions))
	for action := range pkg.Actions {
		names = append(names, action)
	}
	sort.Strings(names)
	for _, action := range names {
		t := Target{
			Package: name,
			Action:  action,
			Default: pkg.IsDefault(),
		}
		if want != nil {
			if _, ok := want[filterKey(t)]; !ok {
				continue
			}
		}
		spec := pkg.Actions[action]
		t.Source = resolvePath(cfg.Root, spec.Function)
		t.Include = append([]manifest.Include(nil), spec.Include...)
		out = append(out, t)
	}
	return out
}

// filterSet normalizes filter tokens to keys comparable with filterKey. The
// default package is keyed by the manifest sentinel so a bare token never
// selects a declared package that shares its deployed name. It returns nil
// when no token remains.
func filterSet(filters []string, defaultName string) map[string]struct{} {
	tokens := normalizeStrings(filters)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		pkg, action, ok := strings.Cut(tok, "/")
		if !ok || pkg == defaultName {
			pkg = manifest.DefaultPackage
		}
		set[pkg+"/"+action] = struct{}{}
	}
	return set
}

func filterKey(t Target) string {
	if t.Default {
		return manifest.DefaultPackage + "/" + t.Action
	}
	return t.Name()
}

func normalizeStrings(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func resolvePath(root, p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) || root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
