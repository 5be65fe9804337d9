package actions

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/example/actpack/internal/manifest"
)

// SourceKind is the on-disk layout of an action.
type SourceKind int

const (
	// KindZipFolder is a directory archived as is.
	KindZipFolder SourceKind = iota + 1
	// KindBundleFile is a single entry file compiled by the bundler.
	KindBundleFile
)

func (k SourceKind) String() string {
	switch k {
	case KindZipFolder:
		return "zip-folder"
	case KindBundleFile:
		return "bundle-file"
	default:
		return "unknown"
	}
}

// Source is a classified action source.
type Source struct {
	Kind SourceKind
	// Entry is the absolute entry file.
	Entry string
	// Dir is the action directory for folders and the entry file's
	// directory for bundle files.
	Dir string
}

// Classify decides how t is packaged. A directory needs a package.json
// whose main names an existing file inside it, or a root index.js; main
// wins when both resolve.
func Classify(root string, t Target) (Source, error) {
	info, err := os.Stat(t.Source)
	if err != nil {
		return Source{}, &MissingSourceError{Path: relTo(root, t.Source), Err: err}
	}
	if !info.IsDir() {
		return Source{Kind: KindBundleFile, Entry: t.Source, Dir: filepath.Dir(t.Source)}, nil
	}
	dir := t.Source
	if entry := descriptorEntry(dir); entry != "" {
		return Source{Kind: KindZipFolder, Entry: entry, Dir: dir}, nil
	}
	index := filepath.Join(dir, "index.js")
	if isFile(index) {
		return Source{Kind: KindZipFolder, Entry: index, Dir: dir}, nil
	}
	return Source{}, &InvalidLayoutError{Dir: relTo(root, dir)}
}

// descriptorEntry returns the file named by dir/package.json's main field
// when it exists inside dir.
func descriptorEntry(dir string) string {
	d, err := manifest.ReadDescriptor(dir)
	if err != nil {
		return ""
	}
	main := strings.TrimSpace(d.Main)
	if main == "" {
		return ""
	}
	entry := filepath.Join(dir, filepath.FromSlash(main))
	if rel, err := filepath.Rel(dir, entry); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	if !isFile(entry) {
		return ""
	}
	return entry
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func relTo(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
