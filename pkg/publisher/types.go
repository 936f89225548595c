package publisher

import (
	"context"
	"time"

	"github.com/ethanis/nitpicker/pkg/github"
	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// Action types recorded in a PublishResult.
const (
	ActionAddComment        = "added_comment"
	ActionUpdateComment     = "updated_comment"
	ActionResolveComment    = "resolved_comment"
	ActionReactivateComment = "reactivated_comment"
	ActionRenderPlan        = "rendered_plan"
	ActionSkipped           = "skipped"
)

// PublishRequest contains the input parameters for a publish operation.
type PublishRequest struct {
	// Target is a human readable destination, e.g. "octo/app#5"
	Target string

	// Event is the pull request or push the state was computed for.
	Event *github.Event

	// State holds the comment actions to carry out.
	State nitpick.TargetState

	// BotLogin is the identity whose reactions may be removed.
	BotLogin string

	// Concurrency bounds concurrent writes; zero or less means one at a time.
	Concurrency int
}

// PublishAction represents a single action taken during publishing.
type PublishAction struct {
	// Type is the kind of action performed, one of the Action* constants
	Type string `json:"type"`

	// Description provides human-readable details about the action
	Description string `json:"description"`

	// Metadata contains additional action-specific information
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PublishError represents an error that occurred during publishing.
type PublishError struct {
	// Message is the error message
	Message string `json:"message"`

	// Action is the action that failed (if applicable)
	Action string `json:"action,omitempty"`

	// Details contains additional error context
	Details map[string]string `json:"details,omitempty"`
}

// PublishResult contains the outcome of a publish operation.
type PublishResult struct {
	// Provider is the name of the publisher that handled this request
	Provider string `json:"provider"`

	// Target is the destination that was published to
	Target string `json:"target"`

	// Conclusion is the conclusion of the published state
	Conclusion nitpick.Conclusion `json:"conclusion"`

	// PublishedAt is the timestamp when publishing completed
	PublishedAt time.Time `json:"published_at"`

	// Actions is a list of actions taken during publishing
	Actions []PublishAction `json:"actions"`

	// Errors contains any errors that occurred during publishing
	Errors []PublishError `json:"errors,omitempty"`

	// Success indicates whether every action succeeded
	Success bool `json:"success"`
}

// Publisher carries a target state out to an external system.
type Publisher interface {
	// Publish applies the request's target state.
	// It returns a PublishResult describing what actions were taken and any errors.
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)

	// Name returns the provider name (e.g., "github", "console")
	Name() string

	// Validate checks if the request is valid for this publisher.
	// Returns nil if valid, or an error describing what's invalid.
	Validate(req PublishRequest) error
}
