package nitpick

import (
	"strings"
)

const (
	// Author is the default login comments are posted under.
	Author = "github-actions[bot]"

	// BlockingText is appended to the markdown of blocking rules at load time.
	BlockingText = "\n__note__: this is a [blocking](https://github.com/ethanis/nitpicker#blocking-comments) comment.\n"

	// CannedTextSeparator divides a rule's markdown from the generated footer.
	// Ownership of existing comments is decided by this exact byte sequence.
	CannedTextSeparator = "\n--------------\n_Caused by:_\n"

	// ResolvedText replaces the footer once a comment no longer applies.
	ResolvedText = "\n--------------\n_Resolved_\n"
)

// Reaction is one of the reaction kinds GitHub allows on a comment.
type Reaction string

const (
	ReactionPlusOne  Reaction = "+1"
	ReactionMinusOne Reaction = "-1"
	ReactionLaugh    Reaction = "laugh"
	ReactionConfused Reaction = "confused"
	ReactionHeart    Reaction = "heart"
	ReactionHooray   Reaction = "hooray"
	ReactionRocket   Reaction = "rocket"
	ReactionEyes     Reaction = "eyes"
)

var (
	// ActiveReactions must all be present for a comment to be active.
	ActiveReactions = []Reaction{ReactionEyes}

	// ClosedReactions must all be absent for a comment to be active.
	ClosedReactions = []Reaction{ReactionHooray, ReactionHeart}
)

// Reactions holds the reaction counts of a comment.
type Reactions struct {
	PlusOne  int `json:"+1"`
	MinusOne int `json:"-1"`
	Laugh    int `json:"laugh"`
	Confused int `json:"confused"`
	Heart    int `json:"heart"`
	Hooray   int `json:"hooray"`
	Rocket   int `json:"rocket"`
	Eyes     int `json:"eyes"`
}

// Count returns the number of reactions of kind r.
func (r Reactions) Count(kind Reaction) int {
	switch kind {
	case ReactionPlusOne:
		return r.PlusOne
	case ReactionMinusOne:
		return r.MinusOne
	case ReactionLaugh:
		return r.Laugh
	case ReactionConfused:
		return r.Confused
	case ReactionHeart:
		return r.Heart
	case ReactionHooray:
		return r.Hooray
	case ReactionRocket:
		return r.Rocket
	case ReactionEyes:
		return r.Eyes
	default:
		return 0
	}
}

// IsActive reports whether a human has left the comment open: every active
// reaction is present and no closing reaction is.
func (c PullRequestComment) IsActive() bool {
	for _, r := range ActiveReactions {
		if c.Reactions.Count(r) == 0 {
			return false
		}
	}
	for _, r := range ClosedReactions {
		if c.Reactions.Count(r) > 0 {
			return false
		}
	}
	return true
}

// OwnedBy reports whether the comment was posted for rule.
func (c PullRequestComment) OwnedBy(rule Rule) bool {
	return strings.HasPrefix(c.Body, rule.Prefix())
}

// Markdown returns the rule text of a posted comment, without its footer.
func (c PullRequestComment) Markdown() string {
	if i := strings.Index(c.Body, CannedTextSeparator); i >= 0 {
		return c.Body[:i]
	}
	if i := strings.Index(c.Body, ResolvedText); i >= 0 {
		return c.Body[:i]
	}
	return c.Body
}

// Link is a file reference rendered in a comment footer.
type Link struct {
	Path string
	URL  string
}

// RenderBody renders the full body of an applicable comment.
func RenderBody(markdown string, links []Link) string {
	var sb strings.Builder
	sb.WriteString(markdown)
	sb.WriteString(CannedTextSeparator)
	for _, l := range links {
		sb.WriteString(" - [")
		sb.WriteString(l.Path)
		sb.WriteString("](")
		sb.WriteString(l.URL)
		sb.WriteString(")\n")
	}
	return sb.String()
}

// RenderResolved renders the body of a comment that no longer applies.
func RenderResolved(markdown string) string {
	return markdown + ResolvedText
}
