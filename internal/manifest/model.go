// File: internal/manifest/model.go
// Brief: Manifest, package, and action declarations.

// Package manifest models the packages/actions manifest consumed by the
// action builder. Package declaration order is preserved.
package manifest

// DefaultPackage is the reserved package key for the application's own package.
const DefaultPackage = "__APP_PACKAGE__"

// Manifest is the flattened packages view of a project manifest.
type Manifest struct {
	Packages []Package
}

// Package groups actions under one name. Actions is nil when the package
// declares none.
type Package struct {
	Name    string
	Actions map[string]ActionSpec
}

// ActionSpec is one action declaration.
type ActionSpec struct {
	Function string    `yaml:"function,omitempty" json:"function,omitempty"`
	Include  []Include `yaml:"include,omitempty" json:"include,omitempty"`
}

// Include copies files matching Pattern (relative to the project root) into
// Dest inside the action's build output.
type Include struct {
	Pattern string `json:"pattern"`
	Dest    string `json:"dest,omitempty"`
}

// Package returns the package with the given name.
func (m *Manifest) Package(name string) (Package, bool) {
	if m == nil {
		return Package{}, false
	}
	for _, p := range m.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// IsDefault reports whether p is the application's default package.
func (p Package) IsDefault() bool {
	return p.Name == DefaultPackage
}
