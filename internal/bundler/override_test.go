package bundler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadOverrideYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions", "bundler-config.yaml")
	writeFile(t, path, `
entry:
  - ./polyfill.js
  - /abs/setup.js
mode: development
output:
  libraryTarget: umd
resolve:
  extensions: [".ts"]
  alias:
    "@": ./src
optimization:
  minimize: true
plugins:
  - name: BannerPlugin
devtool: source-map
`)
	ov, err := LoadOverride(path)
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	want := &Override{
		Path:         path,
		Entry:        []string{filepath.Join(dir, "actions", "polyfill.js"), "/abs/setup.js"},
		Mode:         "development",
		Output:       map[string]any{"libraryTarget": "umd"},
		Resolve:      ResolveOverride{Extensions: []string{".ts"}, Extra: map[string]any{"alias": map[string]any{"@": "./src"}}},
		Optimization: map[string]any{"minimize": true},
		Plugins:      []any{map[string]any{"name": "BannerPlugin"}},
		Extra:        map[string]any{"devtool": "source-map"},
	}
	if diff := cmp.Diff(want, ov); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrideJSONSingleEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundler-config.json")
	writeFile(t, path, `{"entry": "lib/a.js"}`)
	ov, err := LoadOverride(path)
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "lib", "a.js")}, ov.Entry); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrideRejectsInvalidShapes(t *testing.T) {
	cases := map[string]string{
		"entry object":         "entry:\n  main: ./a.js\n",
		"mode list":            "mode: [a]\n",
		"output scalar":        "output: dist\n",
		"libraryTarget object": "output:\n  libraryTarget: {type: umd}\n",
		"extensions scalar":    "resolve:\n  extensions: .ts\n",
		"minimize string":      "optimization:\n  minimize: 'yes'\n",
		"plugins object":       "plugins:\n  a: b\n",
		"not yaml":             "entry: [unterminated\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bundler-config.yaml")
			writeFile(t, path, body)
			_, err := LoadOverride(path)
			var oe *OverrideError
			if !errors.As(err, &oe) {
				t.Fatalf("expected OverrideError, got %v", err)
			}
			if oe.Path != path {
				t.Fatalf("error path = %q", oe.Path)
			}
		})
	}
}

func TestFileLocator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z-bundler-config.yaml"), "{}")
	writeFile(t, filepath.Join(dir, "a-bundler-config.json"), "{}")
	writeFile(t, filepath.Join(dir, "nested", "0-bundler-config.yaml"), "{}")
	writeFile(t, filepath.Join(dir, "webpack.config.js"), "")

	loc := NewFileLocator(nil)
	got, err := loc.Locate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if want := filepath.Join(dir, "a-bundler-config.json"); got != want {
		t.Fatalf("Locate = %q, want %q", got, want)
	}

	got, err = loc.Locate(context.Background(), filepath.Join(dir, "missing"))
	if err != nil || got != "" {
		t.Fatalf("Locate(missing) = %q, %v", got, err)
	}
}

func TestFindOverridePrefersActionDir(t *testing.T) {
	root := t.TempDir()
	actionsRoot := filepath.Join(root, "actions")
	actionDir := filepath.Join(actionsRoot, "thumb")
	writeFile(t, filepath.Join(actionsRoot, "bundler-config.yaml"), "mode: shared\n")
	writeFile(t, filepath.Join(actionDir, "bundler-config.yaml"), "mode: local\n")
	writeFile(t, filepath.Join(actionsRoot, "other", "index.js"), "")

	loc := NewFileLocator(nil)
	ov, err := FindOverride(context.Background(), loc, actionDir, actionsRoot)
	if err != nil {
		t.Fatalf("FindOverride: %v", err)
	}
	if ov == nil || ov.Mode != "local" {
		t.Fatalf("expected local override, got %#v", ov)
	}

	ov, err = FindOverride(context.Background(), loc, filepath.Join(actionsRoot, "other"), actionsRoot)
	if err != nil {
		t.Fatalf("FindOverride: %v", err)
	}
	if ov == nil || ov.Mode != "shared" {
		t.Fatalf("expected shared override, got %#v", ov)
	}

	ov, err = FindOverride(context.Background(), loc, filepath.Join(root, "elsewhere"), filepath.Join(root, "none"))
	if err != nil || ov != nil {
		t.Fatalf("expected no override, got %#v, %v", ov, err)
	}
}
