package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DescriptorFile is the project descriptor looked up in action folders and
// at the project root.
const DescriptorFile = "package.json"

// Descriptor holds the package.json fields actpack reads.
type Descriptor struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Main    string `json:"main,omitempty"`
}

// ReadDescriptor parses dir/package.json.
func ReadDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &d, nil
}

// PackageName returns the "<name>-<version>" deployment package name, or ""
// when the descriptor has no name.
func (d *Descriptor) PackageName() string {
	if d == nil {
		return ""
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ""
	}
	// scoped npm names are not valid package names
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if v := strings.TrimSpace(d.Version); v != "" {
		return name + "-" + v
	}
	return name
}
