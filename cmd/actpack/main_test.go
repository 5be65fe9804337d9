package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"package.json":                    `{"name":"sample-app","version":"1.0.0"}`,
		"actions/action.js":               "module.exports.main = () => ({})",
		"actions/action-zip/index.js":     "module.exports.main = () => ({})",
		"actions/action-zip/package.json": `{"main":"index.js"}`,
		"manifest.yml": `packages:
  __APP_PACKAGE__:
    actions:
      action:
        function: actions/action.js
      action-zip:
        function: actions/action-zip
  extrapkg:
    actions:
      thumb:
        function: actions/action-zip
`,
	})
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildQuietPrintsArchivePaths(t *testing.T) {
	root := sampleProject(t)
	stdout, stderr, err := run(t, "build", "--root", root, "--quiet", "action-zip", "extrapkg/thumb")
	if err != nil {
		t.Fatalf("build: %v\nstderr:\n%s", err, stderr)
	}
	want := []string{
		filepath.Join(root, "dist", "actions", "extrapkg", "thumb.zip"),
		filepath.Join(root, "dist", "actions", "action-zip.zip"),
	}
	got := strings.Split(strings.TrimSpace(stdout), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("archive %s missing: %v", p, err)
		}
	}
}

func TestBuildJSONWithBundlerCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	root := sampleProject(t)
	stdout, stderr, err := run(t, "build", "--root", root, "--json", "--bundler", `sh -c 'echo "{}"'`, "action")
	if err != nil {
		t.Fatalf("build: %v\nstderr:\n%s", err, stderr)
	}
	var out []buildOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if len(out) != 1 || out[0].Action != "sample-app-1.0.0/action" || out[0].Kind != "bundle-file" {
		t.Fatalf("unexpected output %#v", out)
	}
	if !strings.HasPrefix(out[0].Digest, "sha256:") {
		t.Fatalf("digest = %q", out[0].Digest)
	}
}

func TestBuildRejectsQuietWithJSON(t *testing.T) {
	if _, _, err := run(t, "build", "--quiet", "--json"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildWithoutBackend(t *testing.T) {
	root := writeProject(t, map[string]string{"package.json": `{"name":"web-only"}`})
	_, _, err := run(t, "build", "--root", root)
	if err == nil || err.Error() != "cannot build actions, app has no backend" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBuildReportsLayoutError(t *testing.T) {
	root := writeProject(t, map[string]string{
		"actions/action-zip/readme.md": "",
		"manifest.yml":                 "packages:\n  __APP_PACKAGE__:\n    actions:\n      action-zip:\n        function: actions/action-zip\n",
	})
	_, _, err := run(t, "build", "--root", root)
	if err == nil || !strings.Contains(err.Error(), "the directory actions/action-zip must contain either a package.json with a 'main' flag or an index.js file at its root") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTargetsJSON(t *testing.T) {
	root := sampleProject(t)
	stdout, stderr, err := run(t, "targets", "--root", root, "--json")
	if err != nil {
		t.Fatalf("targets: %v\nstderr:\n%s", err, stderr)
	}
	var out []targetOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, o := range out {
		names = append(names, o.Action+"="+o.Archive)
	}
	want := "extrapkg/thumb=dist/actions/extrapkg/thumb.zip,sample-app-1.0.0/action=dist/actions/action.zip,sample-app-1.0.0/action-zip=dist/actions/action-zip.zip"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("targets = %s, want %s", got, want)
	}
}

func TestConfigDiffShowsOverride(t *testing.T) {
	root := sampleProject(t)
	if err := os.WriteFile(filepath.Join(root, "actions", "bundler-config.yaml"), []byte("mode: development\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, stderr, err := run(t, "config", "--root", root, "action")
	if err != nil {
		t.Fatalf("config: %v\nstderr:\n%s", err, stderr)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("config output is not JSON: %v", err)
	}
	if doc["mode"] != "development" || doc["target"] != "node" {
		t.Fatalf("unexpected config %v", doc)
	}

	stdout, _, err = run(t, "config", "--root", root, "--diff", "action")
	if err != nil {
		t.Fatalf("config --diff: %v", err)
	}
	for _, want := range []string{`-  "mode": "production",`, `+  "mode": "development",`, "+++ actions/bundler-config.yaml"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("diff missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigRejectsFolderAction(t *testing.T) {
	root := sampleProject(t)
	if _, _, err := run(t, "config", "--root", root, "action-zip"); err == nil {
		t.Fatal("expected error for folder action")
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout, "actpack dev") {
		t.Fatalf("stdout = %q", stdout)
	}
}
