package nitpick

import (
	"github.com/ethanis/nitpicker/pkg/glob"
)

const (
	modExclude = '!'
	modAdd     = '+'
	modDelete  = '-'
	modEdit    = '~'
)

func isModifier(b byte) bool {
	switch b {
	case modExclude, modAdd, modDelete, modEdit:
		return true
	}
	return false
}

// pathFilter is a parsed entry of Rule.PathFilter.
type pathFilter struct {
	pattern    string
	changeType ChangeType
	exclude    bool
}

// parsePathFilter splits the modifier off a filter string.
func parsePathFilter(raw string) (pathFilter, error) {
	if raw == "" || !isModifier(raw[0]) {
		return pathFilter{pattern: raw, changeType: ChangeAny}, nil
	}
	if len(raw) > 1 && isModifier(raw[1]) {
		return pathFilter{}, &ConfigError{Filter: raw, Err: ErrMultipleModifiers}
	}

	f := pathFilter{pattern: raw[1:], changeType: ChangeAny}
	switch raw[0] {
	case modExclude:
		f.exclude = true
	case modAdd:
		f.changeType = ChangeAdd
	case modDelete:
		f.changeType = ChangeDelete
	case modEdit:
		f.changeType = ChangeEdit
	}
	return f, nil
}

// parsePathFilters validates every filter of a rule and splits them into
// inclusions and exclusions, preserving order.
func parsePathFilters(filters []string) (inclusions, exclusions []pathFilter, err error) {
	for _, raw := range filters {
		f, err := parsePathFilter(raw)
		if err != nil {
			return nil, nil, err
		}
		if f.exclude {
			exclusions = append(exclusions, f)
		} else {
			inclusions = append(inclusions, f)
		}
	}
	return inclusions, exclusions, nil
}

// ValidatePathFilters checks modifiers and glob syntax of every filter.
func ValidatePathFilters(filters []string) error {
	for _, raw := range filters {
		f, err := parsePathFilter(raw)
		if err != nil {
			return err
		}
		if err := glob.Validate(f.pattern); err != nil {
			return &ConfigError{Filter: raw, Err: err}
		}
	}
	return nil
}

// allows reports whether a change of type t satisfies the filter's type constraint.
func (f pathFilter) allows(t ChangeType) bool {
	switch f.changeType {
	case ChangeAdd:
		return t == ChangeAdd
	case ChangeDelete:
		return t == ChangeDelete
	case ChangeEdit:
		return t != ChangeAdd && t != ChangeDelete
	default:
		return true
	}
}

func (f pathFilter) matches(c Change) bool {
	return glob.Match(f.pattern, c.File) && f.allows(c.ChangeType)
}

// MatchingFilePaths returns the changes selected by the rule's path filters,
// in input order. A change is selected when any inclusion matches both its
// path and its change type, and no exclusion matches its path.
func MatchingFilePaths(rule Rule, changes []Change) ([]Change, error) {
	inclusions, exclusions, err := parsePathFilters(rule.PathFilter)
	if err != nil {
		return nil, err
	}

	var result []Change
	for _, change := range changes {
		if !anyMatch(inclusions, change) {
			continue
		}
		if excluded(exclusions, change) {
			continue
		}
		result = append(result, change)
	}
	return result, nil
}

func anyMatch(inclusions []pathFilter, c Change) bool {
	for _, f := range inclusions {
		if f.matches(c) {
			return true
		}
	}
	return false
}

func excluded(exclusions []pathFilter, c Change) bool {
	for _, f := range exclusions {
		if glob.Match(f.pattern, c.File) {
			return true
		}
	}
	return false
}
