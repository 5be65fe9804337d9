// File: internal/bundler/compose.go
// Brief: Field-by-field merge of project defaults and a user override.

package bundler

import (
	"strconv"
)

// Defaults are the per-action inputs every composed config starts from.
type Defaults struct {
	// Entry is the action's own entry file; it is always the last entry.
	Entry string
	// OutputPath is the directory the bundle is written to.
	OutputPath string
	// Env is the value injected as EnvDefine.
	Env string
}

// Compose folds o into the project defaults. o may be nil. Compose never
// mutates its inputs and returns equal configs for equal inputs.
func Compose(d Defaults, o *Override) *Config {
	cfg := &Config{
		Entry: []string{d.Entry},
		Mode:  DefaultMode,
		Output: Output{
			Path:          d.OutputPath,
			Filename:      DefaultFilename,
			LibraryTarget: DefaultLibraryTarget,
		},
		Resolve: Resolve{
			Extensions: append([]string(nil), DefaultExtensions...),
			MainFields: append([]string(nil), DefaultMainFields...),
		},
		Plugins: []any{DefinePlugin(d.Env)},
		Target:  Target,
	}
	if o == nil {
		return cfg
	}

	if len(o.Entry) > 0 {
		cfg.Entry = append(append([]string(nil), o.Entry...), d.Entry)
	}
	if o.Mode != "" {
		cfg.Mode = o.Mode
	}
	mergeOutput(&cfg.Output, o.Output)
	mergeResolve(&cfg.Resolve, o.Resolve)
	mergeOptimization(&cfg.Optimization, o.Optimization)
	if len(o.Plugins) > 0 {
		plugins := make([]any, 0, len(o.Plugins)+1)
		for _, p := range o.Plugins {
			plugins = append(plugins, cloneValue(p))
		}
		cfg.Plugins = append(plugins, DefinePlugin(d.Env))
	}
	if len(o.Extra) > 0 {
		cfg.Extra = cloneMap(o.Extra)
		// target is pinned; an override never moves it
		delete(cfg.Extra, "target")
	}
	return cfg
}

// DefinePlugin is the plugin entry that defines EnvDefine for env.
func DefinePlugin(env string) map[string]any {
	return map[string]any{
		"name": "DefinePlugin",
		"definitions": map[string]any{
			EnvDefine: strconv.Quote(env),
		},
	}
}

// PinnedOutputKeys returns the sorted output keys set by o that Compose
// ignores because the build pins them.
func PinnedOutputKeys(o *Override) []string {
	if o == nil {
		return nil
	}
	var keys []string
	for _, k := range []string{"filename", "path"} {
		if _, ok := o.Output[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func mergeOutput(dst *Output, src map[string]any) {
	for k, v := range src {
		switch k {
		case "path", "filename":
			// fixed
		case "libraryTarget":
			if s, ok := v.(string); ok {
				dst.LibraryTarget = s
			}
		default:
			if dst.Extra == nil {
				dst.Extra = map[string]any{}
			}
			dst.Extra[k] = cloneValue(v)
		}
	}
}

func mergeResolve(dst *Resolve, src ResolveOverride) {
	if len(src.Extensions) > 0 {
		dst.Extensions = append(append([]string(nil), src.Extensions...), DefaultExtensions...)
	}
	if len(src.MainFields) > 0 {
		dst.MainFields = append(append([]string(nil), src.MainFields...), DefaultMainFields...)
	}
	if len(src.Extra) > 0 {
		dst.Extra = cloneMap(src.Extra)
	}
}

func mergeOptimization(dst *Optimization, src map[string]any) {
	for k, v := range src {
		if k == "minimize" {
			if b, ok := v.(bool); ok {
				dst.Minimize = b
			}
			continue
		}
		if dst.Extra == nil {
			dst.Extra = map[string]any{}
		}
		dst.Extra[k] = cloneValue(v)
	}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
