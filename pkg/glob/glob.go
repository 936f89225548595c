// Package glob matches repository paths against shell-style glob patterns.
//
// Matching is case-insensitive, uses '/' as the only separator, lets '**'
// span any number of directories and never treats a leading '.' specially,
// so "app/**" matches both "APP/Models/foo.rb" and "app/.env".
package glob

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchAll is the pattern that matches every path without being compiled.
const MatchAll = "*"

// Match reports whether path matches pattern.
// Malformed patterns never match; use Validate to report them.
func Match(pattern, path string) bool {
	if pattern == MatchAll {
		return true
	}

	ok, err := doublestar.Match(normalize(pattern), normalize(path))
	if err != nil {
		return false
	}
	return ok
}

// Validate returns an error if pattern is not a well-formed glob.
func Validate(pattern string) error {
	if pattern == MatchAll {
		return nil
	}
	if !doublestar.ValidatePattern(normalize(pattern)) {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(filepath.ToSlash(s))
}
