package nitpick

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func files(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.File)
	}
	return out
}

func TestMatchingFilePaths(t *testing.T) {
	mixed := []Change{
		{File: "app/models/old.rb", ChangeType: ChangeEdit},
		{File: "app/models/new.rb", ChangeType: ChangeAdd},
		{File: "app/models/deleted.rb", ChangeType: ChangeDelete},
	}

	tests := []struct {
		name    string
		filters []string
		changes []Change
		want    []string
	}{
		{
			name:    "star matches everything",
			filters: []string{"*"},
			changes: []Change{
				{File: "app/models/foo.rb", ChangeType: ChangeEdit},
				{File: ".github/CODEOWNERS", ChangeType: ChangeAdd},
				{File: "DOCS/README.MD", ChangeType: ChangeDelete},
			},
			want: []string{"app/models/foo.rb", ".github/CODEOWNERS", "DOCS/README.MD"},
		},
		{
			name:    "matches recursively",
			filters: []string{"app/**"},
			changes: []Change{{File: "app/models/foo.rb", ChangeType: ChangeEdit}},
			want:    []string{"app/models/foo.rb"},
		},
		{
			name:    "ignores case",
			filters: []string{"app/**"},
			changes: []Change{{File: "APP/MODELS/FOO.rb", ChangeType: ChangeEdit}},
			want:    []string{"APP/MODELS/FOO.rb"},
		},
		{
			name:    "exclusion removes match",
			filters: []string{"app/**", "!app/models/*.h"},
			changes: []Change{{File: "app/models/main.h", ChangeType: ChangeEdit}},
			want:    nil,
		},
		{
			name:    "exclusion only applies to matching paths",
			filters: []string{"app/**", "!app/models/*.h"},
			changes: []Change{
				{File: "app/models/main.h", ChangeType: ChangeEdit},
				{File: "app/models/main.rb", ChangeType: ChangeEdit},
			},
			want: []string{"app/models/main.rb"},
		},
		{
			name:    "exclusion order does not matter",
			filters: []string{"!app/models/*.h", "app/**"},
			changes: []Change{{File: "app/models/main.h", ChangeType: ChangeEdit}},
			want:    nil,
		},
		{
			name:    "added files only",
			filters: []string{"+app/**"},
			changes: mixed,
			want:    []string{"app/models/new.rb"},
		},
		{
			name:    "deleted files only",
			filters: []string{"-app/**"},
			changes: mixed,
			want:    []string{"app/models/deleted.rb"},
		},
		{
			name:    "edited files only",
			filters: []string{"~app/**"},
			changes: mixed,
			want:    []string{"app/models/old.rb"},
		},
		{
			name:    "any inclusion satisfying its type constraint selects the file",
			filters: []string{"app/**", "+app/**"},
			changes: mixed,
			want:    []string{"app/models/old.rb", "app/models/new.rb", "app/models/deleted.rb"},
		},
		{
			name:    "later failing type constraint does not undo an earlier match",
			filters: []string{"~app/**", "+app/**"},
			changes: mixed,
			want:    []string{"app/models/old.rb", "app/models/new.rb"},
		},
		{
			name:    "no inclusions selects nothing",
			filters: []string{"!app/**"},
			changes: mixed,
			want:    nil,
		},
		{
			name:    "preserves input order",
			filters: []string{"**/*.rb", "docs/**"},
			changes: []Change{
				{File: "docs/intro.md", ChangeType: ChangeEdit},
				{File: "lib/a.rb", ChangeType: ChangeEdit},
				{File: "lib/b.go", ChangeType: ChangeEdit},
				{File: "docs/usage.md", ChangeType: ChangeAdd},
			},
			want: []string{"docs/intro.md", "lib/a.rb", "docs/usage.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchingFilePaths(Rule{PathFilter: tt.filters, Markdown: "m"}, tt.changes)
			if err != nil {
				t.Fatalf("MatchingFilePaths() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, files(got), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("MatchingFilePaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchingFilePaths_KeepsChangeDetails(t *testing.T) {
	changes := []Change{{File: "app/x.rb", ChangeType: ChangeAdd, Patch: "@@ -0,0 +1 @@\n+puts 1"}}

	got, err := MatchingFilePaths(Rule{PathFilter: []string{"*"}}, changes)
	if err != nil {
		t.Fatalf("MatchingFilePaths() error = %v", err)
	}
	if diff := cmp.Diff(changes, got); diff != "" {
		t.Errorf("MatchingFilePaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchingFilePaths_MultipleModifiers(t *testing.T) {
	for _, filter := range []string{"!~app/**", "+-app/**", "!!app/**", "~+app/**"} {
		t.Run(filter, func(t *testing.T) {
			rule := Rule{PathFilter: []string{"app/**", filter}}
			got, err := MatchingFilePaths(rule, []Change{{File: "app/models/foo.rb", ChangeType: ChangeEdit}})
			if err == nil {
				t.Fatalf("expected error, got result %v", got)
			}
			if got != nil {
				t.Errorf("expected no result on error, got %v", got)
			}
			if !errors.Is(err, ErrMultipleModifiers) {
				t.Errorf("expected ErrMultipleModifiers, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Filter != filter {
				t.Errorf("ConfigError.Filter = %q, want %q", cfgErr.Filter, filter)
			}
		})
	}
}

func TestValidatePathFilters(t *testing.T) {
	if err := ValidatePathFilters([]string{"**/*", "!vendor/**", "+db/migrate/*.rb", "-*.lock", "~src/**"}); err != nil {
		t.Errorf("ValidatePathFilters() unexpected error: %v", err)
	}

	if err := ValidatePathFilters([]string{"!~app/**"}); !errors.Is(err, ErrMultipleModifiers) {
		t.Errorf("expected ErrMultipleModifiers, got %v", err)
	}

	err := ValidatePathFilters([]string{"+app/[models"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError for bad glob, got %v", err)
	}
	if cfgErr.Filter != "+app/[models" {
		t.Errorf("ConfigError.Filter = %q", cfgErr.Filter)
	}
}
