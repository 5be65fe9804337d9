// File: internal/bundler/config.go
// Brief: Composed bundler configuration handed to the bundler command.

// Package bundler composes bundler configurations for single-file actions,
// loads user overrides, and drives the external bundler command.
package bundler

import (
	"encoding/json"
)

const (
	DefaultMode          = "production"
	DefaultFilename      = "index.js"
	DefaultLibraryTarget = "commonjs2"
	// Target is the only execution environment bundles are built for.
	Target = "node"
	// EnvDefine is the constant injected by the define plugin.
	EnvDefine = "process.env.ACTPACK_ENV"
)

var (
	DefaultExtensions = []string{".js", ".json"}
	DefaultMainFields = []string{"main"}
)

// Config is a fully composed bundler configuration. Keys an override sets
// that actpack does not interpret are kept in the Extra maps and flattened
// back into the JSON document.
type Config struct {
	Entry        []string
	Mode         string
	Output       Output
	Resolve      Resolve
	Optimization Optimization
	Plugins      []any
	Target       string
	Extra        map[string]any
}

type Output struct {
	Path          string
	Filename      string
	LibraryTarget string
	Extra         map[string]any
}

type Resolve struct {
	Extensions []string
	MainFields []string
	Extra      map[string]any
}

type Optimization struct {
	Minimize bool
	Extra    map[string]any
}

func (c Config) MarshalJSON() ([]byte, error) {
	doc := flatten(c.Extra)
	entry := c.Entry
	if entry == nil {
		entry = []string{}
	}
	plugins := c.Plugins
	if plugins == nil {
		plugins = []any{}
	}
	doc["entry"] = entry
	doc["mode"] = c.Mode
	doc["output"] = c.Output
	doc["resolve"] = c.Resolve
	doc["optimization"] = c.Optimization
	doc["plugins"] = plugins
	doc["target"] = c.Target
	return json.Marshal(doc)
}

func (o Output) MarshalJSON() ([]byte, error) {
	doc := flatten(o.Extra)
	doc["path"] = o.Path
	doc["filename"] = o.Filename
	doc["libraryTarget"] = o.LibraryTarget
	return json.Marshal(doc)
}

func (r Resolve) MarshalJSON() ([]byte, error) {
	doc := flatten(r.Extra)
	doc["extensions"] = nonNil(r.Extensions)
	doc["mainFields"] = nonNil(r.MainFields)
	return json.Marshal(doc)
}

func (o Optimization) MarshalJSON() ([]byte, error) {
	doc := flatten(o.Extra)
	doc["minimize"] = o.Minimize
	return json.Marshal(doc)
}

func flatten(extra map[string]any) map[string]any {
	doc := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
