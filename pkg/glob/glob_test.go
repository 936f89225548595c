package glob

import (
	"errors"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"star matches everything", "*", "app/models/foo.rb", true},
		{"star matches dotfiles", "*", ".github/workflows/ci.yml", true},
		{"recursive", "app/**", "app/models/foo.rb", true},
		{"recursive ignores case", "app/**", "APP/MODELS/FOO.rb", true},
		{"recursive includes dot segments", "app/**", "app/.env", true},
		{"double star prefix", "**/*.rb", "lib/deep/nested/thing.rb", true},
		{"double star prefix root file", "**/*", "README.md", true},
		{"single star does not cross separators", "app/*.rb", "app/models/foo.rb", false},
		{"extension mismatch", "app/models/*.h", "app/models/main.rb", false},
		{"exact path", "Gemfile.lock", "gemfile.lock", true},
		{"other directory", "app/**", "lib/app/foo.rb", false},
		{"braces", "src/**/*.{ts,tsx}", "src/components/Button.tsx", true},
		{"malformed never matches", "app/[", "app/[", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.pattern, tt.path); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	for _, pattern := range []string{"*", "**/*", "app/**", "src/**/*.{go,mod}", "[abc]*.txt"} {
		if err := Validate(pattern); err != nil {
			t.Errorf("Validate(%q) unexpected error: %v", pattern, err)
		}
	}

	err := Validate("app/[")
	if err == nil {
		t.Fatal("Validate(\"app/[\") expected error")
	}
	if !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("expected ErrBadPattern, got %v", err)
	}
}
