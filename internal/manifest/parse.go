package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest YAML content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest YAML: %w", err)
	}
	return &m, nil
}

type packageBody struct {
	Actions map[string]ActionSpec `yaml:"actions,omitempty"`
}

// UnmarshalYAML keeps packages in declaration order.
func (m *Manifest) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Packages yaml.Node `yaml:"packages"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	node := raw.Packages
	if node.Kind == 0 || node.Tag == "!!null" {
		m.Packages = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: packages must be a mapping", node.Line)
	}
	seen := make(map[string]struct{}, len(node.Content)/2)
	pkgs := make([]Package, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if name == "" {
			return fmt.Errorf("line %d: package name is empty", key.Line)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("line %d: duplicate package %q", key.Line, name)
		}
		seen[name] = struct{}{}
		var body packageBody
		if err := val.Decode(&body); err != nil {
			return fmt.Errorf("package %s: %w", name, err)
		}
		for action, spec := range body.Actions {
			if strings.TrimSpace(action) == "" {
				return fmt.Errorf("package %s: action name is empty", name)
			}
			if strings.TrimSpace(spec.Function) == "" {
				return fmt.Errorf("package %s: action %s: function is required", name, action)
			}
		}
		pkgs = append(pkgs, Package{Name: name, Actions: body.Actions})
	}
	m.Packages = pkgs
	return nil
}

// UnmarshalYAML accepts a [pattern, dest] pair; dest may be omitted.
func (in *Include) UnmarshalYAML(value *yaml.Node) error {
	var parts []string
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("line %d: include entries must be [glob, destination] pairs", value.Line)
	}
	if len(parts) == 0 || len(parts) > 2 || strings.TrimSpace(parts[0]) == "" {
		return fmt.Errorf("line %d: include entries must be [glob, destination] pairs", value.Line)
	}
	in.Pattern = parts[0]
	if len(parts) == 2 {
		in.Dest = parts[1]
	}
	return nil
}
