package nitpick

// ChangeType describes how a file was modified in the evaluated change set.
type ChangeType int

const (
	ChangeAdd ChangeType = iota
	ChangeEdit
	ChangeDelete
	ChangeAny
)

// String returns the lower-case name used in change files and logs.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeEdit:
		return "edit"
	case ChangeDelete:
		return "delete"
	case ChangeAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseChangeType converts a change type name back to a ChangeType.
// Unknown names are treated as edits, matching how GitHub statuses other
// than added/removed are classified.
func ParseChangeType(s string) ChangeType {
	switch s {
	case "add", "added":
		return ChangeAdd
	case "delete", "deleted", "removed":
		return ChangeDelete
	case "any":
		return ChangeAny
	default:
		return ChangeEdit
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChangeType) UnmarshalText(text []byte) error {
	*c = ParseChangeType(string(text))
	return nil
}

// Change is one modified file of a pull request or push.
type Change struct {
	File       string     `json:"file" yaml:"file"`
	ChangeType ChangeType `json:"changeType" yaml:"changeType"`
	Patch      string     `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Rule is a configured nitpick.
type Rule struct {
	// PathFilter is an ordered list of globs, each optionally prefixed with
	// one of the modifiers '!', '+', '-' or '~'.
	PathFilter []string `json:"pathFilter" yaml:"pathFilter"`

	// ContentFilter holds regular expressions tested against a change's
	// patch. A nil slice matches any content.
	ContentFilter []string `json:"contentFilter,omitempty" yaml:"contentFilter,omitempty"`

	// Markdown is the comment body. Blocking rules already carry BlockingText.
	Markdown string `json:"markdown" yaml:"markdown"`

	// Blocking fails the run whenever the rule applies.
	Blocking bool `json:"blocking,omitempty" yaml:"blocking,omitempty"`
}

// Prefix returns the text every comment posted for this rule starts with.
func (r Rule) Prefix() string {
	return r.Markdown + CannedTextSeparator
}

// PullRequestComment is a comment previously posted on the pull request.
type PullRequestComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Reactions Reactions `json:"reactions"`
}

// MatchResult pairs a rule or comment with the files that justify acting on it.
type MatchResult[T any] struct {
	Comment T        `json:"comment"`
	Matches []string `json:"matches"`
}

// Conclusion is the overall outcome of a run.
type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
)

// TargetState is the set of comment actions needed to bring the pull request
// in line with the configured rules.
type TargetState struct {
	CommentsToAdd        []MatchResult[Rule]               `json:"commentsToAdd"`
	CommentsToUpdate     []MatchResult[PullRequestComment] `json:"commentsToUpdate"`
	CommentsToResolve    []MatchResult[PullRequestComment] `json:"commentsToResolve"`
	CommentsToReactivate []MatchResult[PullRequestComment] `json:"commentsToReactivate"`
	Conclusion           Conclusion                        `json:"conclusion"`
}

// Empty reports whether the state carries no comment actions.
func (s TargetState) Empty() bool {
	return len(s.CommentsToAdd) == 0 &&
		len(s.CommentsToUpdate) == 0 &&
		len(s.CommentsToResolve) == 0 &&
		len(s.CommentsToReactivate) == 0
}
