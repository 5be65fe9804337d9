package bundler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/actpack/internal/fsmatch"
	"sigs.k8s.io/yaml"
)

// OverridePatterns name the files a Locator accepts as bundler overrides.
var OverridePatterns = []string{
	"*bundler-config.yaml",
	"*bundler-config.yml",
	"*bundler-config.json",
}

// Override is a validated user override. It is plain data; nothing in it
// is ever executed.
type Override struct {
	// Path is the file the override was loaded from.
	Path string
	// Entry holds absolute entry paths resolved against the override's directory.
	Entry        []string
	Mode         string
	Output       map[string]any
	Resolve      ResolveOverride
	Optimization map[string]any
	Plugins      []any
	// Extra holds top-level keys passed through unchanged.
	Extra map[string]any
}

type ResolveOverride struct {
	Extensions []string
	MainFields []string
	Extra      map[string]any
}

// OverrideError reports an override file that cannot be used.
type OverrideError struct {
	Path  string
	Field string
	Err   error
}

func (e *OverrideError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid bundler config %s: %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid bundler config %s: %v", e.Path, e.Err)
}

func (e *OverrideError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LoadOverride reads a YAML or JSON override file and validates it.
func LoadOverride(path string) (*Override, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &OverrideError{Path: path, Err: err}
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &OverrideError{Path: path, Err: err}
	}
	return decodeOverride(path, doc)
}

func decodeOverride(path string, doc map[string]any) (*Override, error) {
	ov := &Override{Path: path}
	fail := func(field, format string, args ...any) error {
		return &OverrideError{Path: path, Field: field, Err: fmt.Errorf(format, args...)}
	}
	base := filepath.Dir(path)
	for key, val := range doc {
		switch key {
		case "entry":
			entries, err := stringOrList(val)
			if err != nil {
				return nil, fail(key, "%v", err)
			}
			for _, e := range entries {
				if strings.TrimSpace(e) == "" {
					return nil, fail(key, "entries must not be empty")
				}
				if !filepath.IsAbs(e) {
					e = filepath.Join(base, e)
				}
				ov.Entry = append(ov.Entry, filepath.Clean(e))
			}
		case "mode":
			s, ok := val.(string)
			if !ok {
				return nil, fail(key, "must be a string")
			}
			ov.Mode = s
		case "output":
			m, ok := val.(map[string]any)
			if !ok {
				return nil, fail(key, "must be an object")
			}
			if lt, ok := m["libraryTarget"]; ok {
				if _, isString := lt.(string); !isString {
					return nil, fail("output.libraryTarget", "must be a string")
				}
			}
			ov.Output = m
		case "resolve":
			m, ok := val.(map[string]any)
			if !ok {
				return nil, fail(key, "must be an object")
			}
			for rk, rv := range m {
				switch rk {
				case "extensions", "mainFields":
					list, err := stringList(rv)
					if err != nil {
						return nil, fail("resolve."+rk, "%v", err)
					}
					if rk == "extensions" {
						ov.Resolve.Extensions = list
					} else {
						ov.Resolve.MainFields = list
					}
				default:
					if ov.Resolve.Extra == nil {
						ov.Resolve.Extra = map[string]any{}
					}
					ov.Resolve.Extra[rk] = rv
				}
			}
		case "optimization":
			m, ok := val.(map[string]any)
			if !ok {
				return nil, fail(key, "must be an object")
			}
			if v, ok := m["minimize"]; ok {
				if _, isBool := v.(bool); !isBool {
					return nil, fail("optimization.minimize", "must be a boolean")
				}
			}
			ov.Optimization = m
		case "plugins":
			list, ok := val.([]any)
			if !ok {
				return nil, fail(key, "must be a list")
			}
			ov.Plugins = list
		default:
			if ov.Extra == nil {
				ov.Extra = map[string]any{}
			}
			ov.Extra[key] = val
		}
	}
	return ov, nil
}

func stringOrList(v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	return stringList(v)
}

func stringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New("must be a list of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New("must be a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// Locator finds the override file for a directory, returning "" when there
// is none.
type Locator interface {
	Locate(ctx context.Context, dir string) (string, error)
}

// Matcher is the subset of fsmatch.Matcher used by FileLocator.
type Matcher interface {
	Match(ctx context.Context, root string, patterns ...string) ([]string, error)
}

// FileLocator looks for OverridePatterns directly inside a directory. When
// several files match, the lexicographically first wins.
type FileLocator struct {
	matcher Matcher
}

func NewFileLocator(m Matcher) *FileLocator {
	if m == nil {
		m = fsmatch.New()
	}
	return &FileLocator{matcher: m}
}

func (l *FileLocator) Locate(ctx context.Context, dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(absDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if !info.IsDir() {
		return "", nil
	}
	matches, err := l.matcher.Match(ctx, absDir, OverridePatterns...)
	if err != nil {
		return "", fmt.Errorf("locate bundler config in %s: %w", absDir, err)
	}
	for _, m := range matches {
		if filepath.Dir(m) == absDir {
			return m, nil
		}
	}
	return "", nil
}

// FindOverride searches actionDir, then actionsRoot, and loads the first
// override found. It returns nil when neither directory has one.
func FindOverride(ctx context.Context, loc Locator, actionDir, actionsRoot string) (*Override, error) {
	if loc == nil {
		return nil, nil
	}
	dirs := []string{actionDir}
	if actionsRoot != "" && filepath.Clean(actionsRoot) != filepath.Clean(actionDir) {
		dirs = append(dirs, actionsRoot)
	}
	for _, dir := range dirs {
		path, err := loc.Locate(ctx, dir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			return LoadOverride(path)
		}
	}
	return nil, nil
}
