// Package fsmatch resolves glob patterns against the filesystem.
package fsmatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moby/patternmatcher"
)

// Matcher walks the filesystem and returns files matching glob patterns.
// Patterns use the .dockerignore grammar: '*' and '?' stay within one path
// segment, '**' spans segments, and a leading '!' excludes matches.
type Matcher struct{}

// New returns a Matcher.
func New() *Matcher { return &Matcher{} }

// Match returns the absolute, sorted, de-duplicated paths of regular files
// matching any of patterns. Relative patterns are resolved against root. A
// pattern matching a directory matches every file below it. No match is not
// an error.
func (m *Matcher) Match(ctx context.Context, root string, patterns ...string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var includes, excludes []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "!") {
			excludes = append(excludes, strings.TrimPrefix(p, "!"))
			continue
		}
		includes = append(includes, p)
	}
	var exclude *patternmatcher.PatternMatcher
	if len(excludes) > 0 {
		rel := make([]string, 0, len(excludes))
		for _, e := range excludes {
			rel = append(rel, relativePattern(absRoot, e))
		}
		exclude, err = patternmatcher.New(rel)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, p := range includes {
		matches, err := matchOne(ctx, absRoot, p)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			if exclude != nil {
				rel, err := filepath.Rel(absRoot, match)
				if err == nil {
					skip, err := exclude.MatchesOrParentMatches(rel)
					if err != nil {
						return nil, err
					}
					if skip {
						continue
					}
				}
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out, nil
}

func matchOne(ctx context.Context, absRoot, pattern string) ([]string, error) {
	full := filepath.FromSlash(pattern)
	if !filepath.IsAbs(full) {
		full = filepath.Join(absRoot, full)
	}
	full = filepath.Clean(full)
	base, rest := splitStatic(full)

	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if rest == "" {
		if !info.IsDir() {
			return []string{base}, nil
		}
		rest = "**"
	}
	if !info.IsDir() {
		return nil, nil
	}

	pm, err := patternmatcher.New([]string{rest})
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	maxDepth := -1
	if !strings.Contains(rest, "**") {
		maxDepth = strings.Count(rest, string(filepath.Separator)) + 1
	}

	infos := map[string]patternmatcher.MatchInfo{}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == base {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		matched, info, err := pm.MatchesUsingParentResults(rel, infos[filepath.Dir(rel)])
		if err != nil {
			return err
		}
		if d.IsDir() {
			// below maxDepth only files of matched directories can match
			if !matched && maxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 >= maxDepth {
				return fs.SkipDir
			}
			infos[rel] = info
			return nil
		}
		if matched && d.Type().IsRegular() {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// splitStatic splits a cleaned absolute pattern into its longest leading
// directory without glob metacharacters and the remaining pattern.
func splitStatic(full string) (string, string) {
	parts := strings.Split(full, string(filepath.Separator))
	i := 0
	for ; i < len(parts); i++ {
		if hasMeta(parts[i]) {
			break
		}
	}
	base := strings.Join(parts[:i], string(filepath.Separator))
	if base == "" {
		base = string(filepath.Separator)
	}
	return base, strings.Join(parts[i:], string(filepath.Separator))
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, `*?[\`)
}

func relativePattern(absRoot, p string) string {
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	rel, err := filepath.Rel(absRoot, p)
	if err != nil {
		return filepath.Clean(p)
	}
	return rel
}
