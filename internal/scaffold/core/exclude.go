package core

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ExcludeMatcher matches paths inside a template against gitignore-style
// patterns. A nil matcher excludes nothing.
type ExcludeMatcher struct {
	patterns []string
	ignorer  *ignore.GitIgnore
}

// NewExcludeMatcher compiles patterns. Blank patterns are dropped and an
// empty list yields a nil matcher.
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	var kept []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ExcludeMatcher{
		patterns: kept,
		ignorer:  ignore.CompileIgnoreLines(kept...),
	}
}

// Patterns returns the compiled patterns
func (m *ExcludeMatcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// Excluded reports whether relPath (relative to the template root) is excluded.
func (m *ExcludeMatcher) Excluded(relPath string, isDir bool) bool {
	if m == nil || m.ignorer == nil {
		return false
	}

	relPath = filepath.ToSlash(relPath)
	if relPath == "." || relPath == "" || strings.HasPrefix(relPath, "../") {
		return false
	}

	if m.ignorer.MatchesPath(relPath) {
		return true
	}

	// Directory-only patterns such as "node_modules/"
	if isDir && m.ignorer.MatchesPath(relPath+"/") {
		return true
	}

	return false
}
