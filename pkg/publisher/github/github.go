package github

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	hghelper "github.com/ethanis/nitpicker/pkg/github"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
)

const (
	// BotLoginEnv is the environment variable for the bot's GitHub login
	BotLoginEnv = "NITPICKER_BOT_LOGIN"

	// DefaultBotLogin is the login comments are posted under by default
	DefaultBotLogin = nitpick.Author
)

// CommentWriter is the part of the GitHub API the publisher writes through.
// *hghelper.Client satisfies it.
type CommentWriter interface {
	CreateComment(ctx context.Context, ev *hghelper.Event, body string) (int64, error)
	EditComment(ctx context.Context, ev *hghelper.Event, commentID int64, body string) error
	AddReaction(ctx context.Context, ev *hghelper.Event, commentID int64, reaction nitpick.Reaction) error
	RemoveReactions(ctx context.Context, ev *hghelper.Event, commentID int64, kinds []nitpick.Reaction, botLogin string) error
}

// GitHubPublisher applies a target state to a pull request's comments.
type GitHubPublisher struct {
	client CommentWriter
}

// NewGitHubPublisher creates a new GitHub publisher writing through client.
func NewGitHubPublisher(client CommentWriter) *GitHubPublisher {
	return &GitHubPublisher{client: client}
}

// Name returns the provider name.
func (g *GitHubPublisher) Name() string {
	return "github"
}

// Validate checks if the request is valid for this publisher.
func (g *GitHubPublisher) Validate(req publisher.PublishRequest) error {
	if g.client == nil {
		return fmt.Errorf("github publisher has no client")
	}
	if req.Event == nil {
		return fmt.Errorf("missing event")
	}
	if req.Event.Owner == "" || req.Event.Repo == "" {
		return fmt.Errorf("incomplete repository: owner=%s, repo=%s", req.Event.Owner, req.Event.Repo)
	}
	if req.Event.IsPullRequest() && req.Event.HTMLURL == "" {
		return fmt.Errorf("pull request #%d has no html url", req.Event.Number)
	}
	return nil
}

// step is one write against a single comment. It returns the action to
// record, or nil when nothing needed doing.
type step func(ctx context.Context) (*publisher.PublishAction, error)

// job is the ordered list of steps touching one comment.
type job struct {
	name  string
	steps []step
}

// Publish creates, edits and reacts to comments until the pull request
// matches req.State. Writes to different comments run concurrently; writes
// to the same comment run in order.
func (g *GitHubPublisher) Publish(ctx context.Context, req publisher.PublishRequest) (publisher.PublishResult, error) {
	result := publisher.PublishResult{
		Provider:   g.Name(),
		Target:     req.Target,
		Conclusion: req.State.Conclusion,
		Actions:    []publisher.PublishAction{},
		Errors:     []publisher.PublishError{},
		Success:    true,
	}

	if err := g.Validate(req); err != nil {
		return result, err
	}

	if !req.Event.IsPullRequest() {
		result.Actions = append(result.Actions, publisher.NewAction(publisher.ActionSkipped, "No pull request to comment on"))
		return result, nil
	}

	botLogin := req.BotLogin
	if botLogin == "" {
		botLogin = DefaultBotLogin
	}

	jobs := g.plan(req.Event, req.State, botLogin)

	type outcome struct {
		actions []publisher.PublishAction
		err     *publisher.PublishError
	}
	outcomes := make([]outcome, len(jobs))

	var eg errgroup.Group
	eg.SetLimit(max(1, req.Concurrency))
	for i, j := range jobs {
		eg.Go(func() error {
			for _, s := range j.steps {
				action, err := s(ctx)
				if err != nil {
					log.FromContext(ctx).Warn("comment write failed", "job", j.name, "error", err)
					outcomes[i].err = &publisher.PublishError{
						Message: err.Error(),
						Action:  j.name,
					}
					return nil
				}
				if action != nil {
					outcomes[i].actions = append(outcomes[i].actions, *action)
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	for _, o := range outcomes {
		result.Actions = append(result.Actions, o.actions...)
		if o.err != nil {
			result.Errors = append(result.Errors, *o.err)
			result.Success = false
		}
	}

	return result, nil
}

// plan turns a target state into jobs, one per new comment and one per
// existing comment ID.
func (g *GitHubPublisher) plan(ev *hghelper.Event, state nitpick.TargetState, botLogin string) []job {
	var jobs []job
	byID := make(map[int64]int)

	existing := func(id int64, s step) {
		i, ok := byID[id]
		if !ok {
			i = len(jobs)
			byID[id] = i
			jobs = append(jobs, job{name: "comment " + strconv.FormatInt(id, 10)})
		}
		jobs[i].steps = append(jobs[i].steps, s)
	}

	for i, add := range state.CommentsToAdd {
		jobs = append(jobs, job{
			name:  fmt.Sprintf("add comment %d", i),
			steps: []step{g.addStep(ev, add)},
		})
	}
	for _, c := range state.CommentsToUpdate {
		existing(c.Comment.ID, g.updateStep(ev, c))
	}
	for _, c := range state.CommentsToResolve {
		existing(c.Comment.ID, g.resolveStep(ev, c, botLogin))
	}
	for _, c := range state.CommentsToReactivate {
		existing(c.Comment.ID, g.reactivateStep(ev, c, botLogin))
	}
	return jobs
}

func links(ev *hghelper.Event, matches []string) []nitpick.Link {
	out := make([]nitpick.Link, 0, len(matches))
	for _, path := range matches {
		out = append(out, nitpick.Link{Path: path, URL: ev.FileLink(path)})
	}
	return out
}

func commentAction(actionType string, id int64, description string, matches []string) *publisher.PublishAction {
	action := publisher.NewAction(actionType, description)
	action.AddMetadata("comment_id", strconv.FormatInt(id, 10))
	action.AddMetadata("files", strconv.Itoa(len(matches)))
	return &action
}

func (g *GitHubPublisher) addStep(ev *hghelper.Event, add nitpick.MatchResult[nitpick.Rule]) step {
	return func(ctx context.Context) (*publisher.PublishAction, error) {
		body := nitpick.RenderBody(add.Comment.Markdown, links(ev, add.Matches))
		id, err := g.client.CreateComment(ctx, ev, body)
		if err != nil {
			return nil, err
		}
		for _, r := range nitpick.ActiveReactions {
			if err := g.client.AddReaction(ctx, ev, id, r); err != nil {
				return nil, err
			}
		}
		return commentAction(publisher.ActionAddComment, id, fmt.Sprintf("Added comment %d on #%d", id, ev.Number), add.Matches), nil
	}
}

// editIfChanged rewrites a comment body unless it already reads body.
func (g *GitHubPublisher) editIfChanged(ctx context.Context, ev *hghelper.Event, c nitpick.PullRequestComment, body string) (bool, error) {
	if c.Body == body {
		return false, nil
	}
	if err := g.client.EditComment(ctx, ev, c.ID, body); err != nil {
		return false, err
	}
	return true, nil
}

func (g *GitHubPublisher) updateStep(ev *hghelper.Event, c nitpick.MatchResult[nitpick.PullRequestComment]) step {
	return func(ctx context.Context) (*publisher.PublishAction, error) {
		body := nitpick.RenderBody(c.Comment.Markdown(), links(ev, c.Matches))
		edited, err := g.editIfChanged(ctx, ev, c.Comment, body)
		if err != nil {
			return nil, err
		}
		action := commentAction(publisher.ActionUpdateComment, c.Comment.ID, fmt.Sprintf("Updated comment %d", c.Comment.ID), c.Matches)
		action.AddMetadata("edited", strconv.FormatBool(edited))
		return action, nil
	}
}

func (g *GitHubPublisher) resolveStep(ev *hghelper.Event, c nitpick.MatchResult[nitpick.PullRequestComment], botLogin string) step {
	return func(ctx context.Context) (*publisher.PublishAction, error) {
		if _, err := g.editIfChanged(ctx, ev, c.Comment, nitpick.RenderResolved(c.Comment.Markdown())); err != nil {
			return nil, err
		}
		for _, r := range nitpick.ClosedReactions {
			if err := g.client.AddReaction(ctx, ev, c.Comment.ID, r); err != nil {
				return nil, err
			}
		}
		if err := g.client.RemoveReactions(ctx, ev, c.Comment.ID, nitpick.ActiveReactions, botLogin); err != nil {
			return nil, err
		}
		return commentAction(publisher.ActionResolveComment, c.Comment.ID, fmt.Sprintf("Resolved comment %d", c.Comment.ID), c.Matches), nil
	}
}

func (g *GitHubPublisher) reactivateStep(ev *hghelper.Event, c nitpick.MatchResult[nitpick.PullRequestComment], botLogin string) step {
	return func(ctx context.Context) (*publisher.PublishAction, error) {
		body := nitpick.RenderBody(c.Comment.Markdown(), links(ev, c.Matches))
		if _, err := g.editIfChanged(ctx, ev, c.Comment, body); err != nil {
			return nil, err
		}
		for _, r := range nitpick.ActiveReactions {
			if err := g.client.AddReaction(ctx, ev, c.Comment.ID, r); err != nil {
				return nil, err
			}
		}
		if err := g.client.RemoveReactions(ctx, ev, c.Comment.ID, nitpick.ClosedReactions, botLogin); err != nil {
			return nil, err
		}
		return commentAction(publisher.ActionReactivateComment, c.Comment.ID, fmt.Sprintf("Reactivated comment %d", c.Comment.ID), c.Matches), nil
	}
}
