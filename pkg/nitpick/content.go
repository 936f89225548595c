package nitpick

import (
	"time"

	"github.com/dlclark/regexp2"
)

// regexTimeout bounds a single content filter evaluation against one patch.
const regexTimeout = 5 * time.Second

// compileContentFilter compiles a filter with JavaScript regular expression
// semantics, which is what rule files are written against.
func compileContentFilter(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, &PatternError{Expr: expr, Err: err}
	}
	re.MatchTimeout = regexTimeout
	return re, nil
}

// ValidateContentFilters reports the first filter that does not compile.
func ValidateContentFilters(filters []string) error {
	for _, expr := range filters {
		if _, err := compileContentFilter(expr); err != nil {
			return err
		}
	}
	return nil
}

// MatchingContentChanges narrows changes to those whose patch matches at
// least one of the rule's content filters. Without content filters the input
// is returned as is. Each change appears at most once in the result.
func MatchingContentChanges(rule Rule, changes []Change) ([]Change, error) {
	if rule.ContentFilter == nil {
		return changes, nil
	}

	filters := make([]*regexp2.Regexp, 0, len(rule.ContentFilter))
	for _, expr := range rule.ContentFilter {
		re, err := compileContentFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, re)
	}

	var result []Change
	for _, change := range changes {
		if change.Patch == "" {
			continue
		}
		for i, re := range filters {
			ok, err := re.MatchString(change.Patch)
			if err != nil {
				return nil, &PatternError{Expr: rule.ContentFilter[i], Err: err}
			}
			if ok {
				result = append(result, change)
				break
			}
		}
	}
	return result, nil
}
