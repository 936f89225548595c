package nitpick

import (
	"errors"
	"fmt"
)

// ErrMultipleModifiers is returned when a path filter stacks modifiers, e.g. "!~app/**".
var ErrMultipleModifiers = errors.New("multiple path modifiers are not supported")

// ConfigError reports a rule that cannot be evaluated as configured.
type ConfigError struct {
	Filter string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid path filter %q: %v", e.Filter, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PatternError reports a content filter that is not a valid regular expression.
type PatternError struct {
	Expr string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("unable to parse regex expression %q: %v", e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
