package actions

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	const layoutMsg = "the directory actions/action-zip must contain either a package.json with a 'main' flag or an index.js file at its root"
	tests := []struct {
		name      string
		files     map[string]string
		source    string
		wantKind  SourceKind
		wantEntry string
		wantErr   string
	}{
		{
			name:      "main field",
			files:     map[string]string{"actions/action-zip/package.json": `{"main":"action.js"}`, "actions/action-zip/action.js": ""},
			source:    "actions/action-zip",
			wantKind:  KindZipFolder,
			wantEntry: "actions/action-zip/action.js",
		},
		{
			name: "main wins over index.js",
			files: map[string]string{
				"actions/action-zip/package.json": `{"main":"lib/main.js"}`,
				"actions/action-zip/lib/main.js":  "",
				"actions/action-zip/index.js":     "",
			},
			source:    "actions/action-zip",
			wantKind:  KindZipFolder,
			wantEntry: "actions/action-zip/lib/main.js",
		},
		{
			name:      "index.js without descriptor",
			files:     map[string]string{"actions/action-zip/index.js": ""},
			source:    "actions/action-zip",
			wantKind:  KindZipFolder,
			wantEntry: "actions/action-zip/index.js",
		},
		{
			name:      "missing main target falls back to index.js",
			files:     map[string]string{"actions/action-zip/package.json": `{"main":"gone.js"}`, "actions/action-zip/index.js": ""},
			source:    "actions/action-zip",
			wantKind:  KindZipFolder,
			wantEntry: "actions/action-zip/index.js",
		},
		{
			name:      "unreadable descriptor falls back to index.js",
			files:     map[string]string{"actions/action-zip/package.json": `{not json`, "actions/action-zip/index.js": ""},
			source:    "actions/action-zip",
			wantKind:  KindZipFolder,
			wantEntry: "actions/action-zip/index.js",
		},
		{
			name:    "descriptor without main and no index.js",
			files:   map[string]string{"actions/action-zip/package.json": `{"name":"x"}`, "actions/action-zip/other.js": ""},
			source:  "actions/action-zip",
			wantErr: layoutMsg,
		},
		{
			name:    "main points to missing file and no index.js",
			files:   map[string]string{"actions/action-zip/package.json": `{"main":"action.js"}`},
			source:  "actions/action-zip",
			wantErr: layoutMsg,
		},
		{
			name:    "main escaping the directory",
			files:   map[string]string{"actions/action-zip/package.json": `{"main":"../action.js"}`, "actions/action.js": ""},
			source:  "actions/action-zip",
			wantErr: layoutMsg,
		},
		{
			name:      "single file",
			files:     map[string]string{"actions/action.js": ""},
			source:    "actions/action.js",
			wantKind:  KindBundleFile,
			wantEntry: "actions/action.js",
		},
		{
			name:    "missing file",
			files:   map[string]string{"actions/other.js": ""},
			source:  "actions/action.js",
			wantErr: "actions/action.js is not a valid file or directory",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tc.files)
			target := Target{Package: "p", Action: "a", Source: filepath.Join(root, filepath.FromSlash(tc.source))}
			src, err := Classify(root, target)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("Classify error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if src.Kind != tc.wantKind {
				t.Fatalf("kind = %s, want %s", src.Kind, tc.wantKind)
			}
			if want := filepath.Join(root, filepath.FromSlash(tc.wantEntry)); src.Entry != want {
				t.Fatalf("entry = %s, want %s", src.Entry, want)
			}
		})
	}
}

func TestClassifyErrorTypes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"actions/empty/readme.md": ""})

	_, err := Classify(root, Target{Source: filepath.Join(root, "actions", "nope.js")})
	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %T", err)
	}
	if missing.Path != "actions/nope.js" || missing.Unwrap() == nil {
		t.Fatalf("unexpected error %#v", missing)
	}

	_, err = Classify(root, Target{Source: filepath.Join(root, "actions", "empty")})
	var layout *InvalidLayoutError
	if !errors.As(err, &layout) || layout.Dir != "actions/empty" {
		t.Fatalf("expected InvalidLayoutError for actions/empty, got %v", err)
	}
}
