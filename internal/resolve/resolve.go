// Package resolve expands section header patterns into audio file paths.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions lists the audio containers kiln can tag.
var DefaultExtensions = []string{".mp3"}

// Resolver expands a pattern into an ordered, duplicate-free list of files.
type Resolver interface {
	Resolve(pattern string) ([]string, error)
}

// Error reports a pattern that could not be expanded.
type Error struct {
	Pattern string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Pattern, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Glob resolves patterns with filepath.Glob and keeps regular files whose
// extension is in Extensions (case-insensitive).
type Glob struct {
	Extensions []string
}

// NewGlob returns a Glob for extensions, falling back to DefaultExtensions.
func NewGlob(extensions ...string) *Glob {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &Glob{Extensions: normalized}
}

// Resolve implements Resolver. Matches come back in lexical order.
func (g *Glob) Resolve(pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, &Error{Pattern: pattern, Err: fmt.Errorf("empty pattern")}
	}
	matches, err := filepath.Glob(ExpandHome(pattern))
	if err != nil {
		return nil, &Error{Pattern: pattern, Err: err}
	}

	files := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if !g.supported(match) {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			return nil, &Error{Pattern: pattern, Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		clean := filepath.Clean(match)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}
	return files, nil
}

func (g *Glob) supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range g.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading "~" with the user's home directory. Other
// paths, and paths when the home directory is unknown, are returned as is.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
