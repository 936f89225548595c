package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// ErrRulesNotFound is returned when the rules file does not exist.
var ErrRulesNotFound = errors.New("rules file does not exist")

// DefaultPathFilter applies to rules that do not set a path filter.
var DefaultPathFilter = []string{"**/*"}

// ruleDocument is the on-disk form of a rule. ContentFilter is a pointer so
// an absent key can be told apart from an empty list.
type ruleDocument struct {
	PathFilter    []string  `yaml:"pathFilter"`
	ContentFilter *[]string `yaml:"contentFilter"`
	Markdown      string    `yaml:"markdown"`
	Blocking      bool      `yaml:"blocking"`
}

// LoadRules reads and validates the rules file at path.
func LoadRules(path string) ([]nitpick.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, path)
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML (or JSON) list of rules. Rules without markdown
// are discarded, blocking rules get the blocking notice appended, and every
// filter is validated.
func ParseRules(data []byte) ([]nitpick.Rule, error) {
	var docs []ruleDocument
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := make([]nitpick.Rule, 0, len(docs))
	for i, doc := range docs {
		if doc.Markdown == "" {
			continue
		}

		rule := nitpick.Rule{
			PathFilter: doc.PathFilter,
			Markdown:   doc.Markdown,
			Blocking:   doc.Blocking,
		}
		if len(rule.PathFilter) == 0 {
			rule.PathFilter = append([]string(nil), DefaultPathFilter...)
		}
		if doc.ContentFilter != nil {
			rule.ContentFilter = append([]string{}, *doc.ContentFilter...)
		}
		if rule.Blocking {
			rule.Markdown += nitpick.BlockingText
		}

		if err := nitpick.ValidatePathFilters(rule.PathFilter); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := nitpick.ValidateContentFilters(rule.ContentFilter); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		rules = append(rules, rule)
	}
	return rules, nil
}
