package storage

import (
	"path/filepath"
	"strings"
)

type patternKind int

const (
	matchBase     patternKind = iota // *.tmp
	matchDir                         // .git/
	matchAnyDepth                    // **/cache/*
	matchPath                        // build/*
)

type excludePattern struct {
	kind patternKind
	glob string
}

// Excluder matches root-relative paths against exclude patterns:
//   - basename globs: *.tmp, *.log
//   - directories: .git/, node_modules/
//   - path globs: build/*, **/cache/*
//
// Paths are compared with forward slashes on every platform.
type Excluder struct {
	patterns []excludePattern
}

// NewExcluder compiles patterns. Empty patterns are ignored.
func NewExcluder(patterns []string) *Excluder {
	e := &Excluder{}
	for _, raw := range patterns {
		if raw == "" {
			continue
		}
		p := filepath.ToSlash(raw)

		switch {
		case strings.HasSuffix(p, "/"):
			e.patterns = append(e.patterns, excludePattern{matchDir, strings.TrimSuffix(p, "/")})
		case strings.HasPrefix(p, "**/"):
			e.patterns = append(e.patterns, excludePattern{matchAnyDepth, strings.TrimPrefix(p, "**/")})
		case strings.Contains(p, "**"):
			// only a leading **/ is understood
			continue
		case strings.Contains(p, "/"):
			e.patterns = append(e.patterns, excludePattern{matchPath, p})
		default:
			e.patterns = append(e.patterns, excludePattern{matchBase, p})
		}
	}
	return e
}

// Match reports whether relativePath is excluded
func (e *Excluder) Match(relativePath string) bool {
	if len(e.patterns) == 0 {
		return false
	}

	path := filepath.ToSlash(relativePath)
	base := filepath.Base(relativePath)

	for _, p := range e.patterns {
		switch p.kind {
		case matchDir:
			if path == p.glob ||
				strings.HasPrefix(path, p.glob+"/") ||
				strings.Contains(path, "/"+p.glob+"/") {
				return true
			}
		case matchAnyDepth:
			if globMatch(p.glob, base) ||
				path == p.glob || strings.HasSuffix(path, "/"+p.glob) ||
				anySegmentMatches(path, p.glob) {
				return true
			}
		case matchPath:
			if globMatch(p.glob, path) || strings.HasSuffix(path, p.glob) {
				return true
			}
		case matchBase:
			if globMatch(p.glob, base) {
				return true
			}
		}
	}

	return false
}

func globMatch(pattern, name string) bool {
	matched, _ := filepath.Match(pattern, name)
	return matched
}

func anySegmentMatches(path, pattern string) bool {
	for _, segment := range strings.Split(path, "/") {
		if globMatch(pattern, segment) {
			return true
		}
	}
	return false
}
