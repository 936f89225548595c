package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// maxSummaryLength is the checks API limit on output.summary.
const maxSummaryLength = 65535

// ListChanges returns the files changed by the event: the pull request's
// files, the compared range of a push, or the pushed commit when the push
// created its branch.
func (c *Client) ListChanges(ctx context.Context, ev *Event) ([]nitpick.Change, error) {
	switch {
	case ev.IsPullRequest():
		return c.listPullRequestChanges(ctx, ev)
	case ev.CreatesBranch():
		return c.listCommitChanges(ctx, ev)
	case ev.Name == EventPush:
		return c.listPushChanges(ctx, ev)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Name)
	}
}

func (c *Client) listPullRequestChanges(ctx context.Context, ev *Event) ([]nitpick.Change, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var changes []nitpick.Change
	for {
		page, err := retryWithBackoff(ctx, c.retryConfig, "list pull request files", func() (pageOf[*github.CommitFile], error) {
			files, resp, err := c.GitHubClient().PullRequests.ListFiles(ctx, ev.Owner, ev.Repo, ev.Number, opts)
			return pageOf[*github.CommitFile]{items: files, resp: resp}, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list pull request files: %w", err)
		}

		changes = append(changes, convertCommitFiles(page.items)...)

		if page.resp == nil || page.resp.NextPage == 0 {
			break
		}
		opts.Page = page.resp.NextPage
	}
	return changes, nil
}

func (c *Client) listPushChanges(ctx context.Context, ev *Event) ([]nitpick.Change, error) {
	comparison, err := retryWithBackoff(ctx, c.retryConfig, "compare commits", func() (*github.CommitsComparison, error) {
		cmp, _, err := c.GitHubClient().Repositories.CompareCommits(ctx, ev.Owner, ev.Repo, ev.Before, ev.After, &github.ListOptions{PerPage: perPage})
		return cmp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s: %w", ev.Before, ev.After, err)
	}
	return convertCommitFiles(comparison.Files), nil
}

func (c *Client) listCommitChanges(ctx context.Context, ev *Event) ([]nitpick.Change, error) {
	commit, err := retryWithBackoff(ctx, c.retryConfig, "get commit", func() (*github.RepositoryCommit, error) {
		rc, _, err := c.GitHubClient().Repositories.GetCommit(ctx, ev.Owner, ev.Repo, ev.After, &github.ListOptions{PerPage: perPage})
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", ev.After, err)
	}
	return convertCommitFiles(commit.Files), nil
}

// pageOf carries one page of a paginated listing through retryWithBackoff.
type pageOf[T any] struct {
	items []T
	resp  *github.Response
}

func convertCommitFiles(files []*github.CommitFile) []nitpick.Change {
	changes := make([]nitpick.Change, 0, len(files))
	for _, f := range files {
		changes = append(changes, nitpick.Change{
			File:       f.GetFilename(),
			ChangeType: changeTypeFromStatus(f.GetStatus()),
			Patch:      f.GetPatch(),
		})
	}
	return changes
}

// ExistingComments returns the pull request's issue comments authored by
// botLogin, with their reaction counts.
func (c *Client) ExistingComments(ctx context.Context, ev *Event, botLogin string) ([]nitpick.PullRequestComment, error) {
	if !ev.IsPullRequest() {
		return nil, nil
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var comments []nitpick.PullRequestComment
	for {
		page, err := retryWithBackoff(ctx, c.retryConfig, "list issue comments", func() (pageOf[*github.IssueComment], error) {
			items, resp, err := c.GitHubClient().Issues.ListComments(ctx, ev.Owner, ev.Repo, ev.Number, opts)
			return pageOf[*github.IssueComment]{items: items, resp: resp}, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issue comments: %w", err)
		}

		for _, comment := range page.items {
			if comment.GetUser().GetLogin() != botLogin {
				continue
			}
			comments = append(comments, convertFromGitHubIssueComment(comment))
		}

		if page.resp == nil || page.resp.NextPage == 0 {
			break
		}
		opts.Page = page.resp.NextPage
	}
	return comments, nil
}

// convertFromGitHubIssueComment converts a github.IssueComment to a PullRequestComment
func convertFromGitHubIssueComment(comment *github.IssueComment) nitpick.PullRequestComment {
	r := comment.GetReactions()
	return nitpick.PullRequestComment{
		ID:     comment.GetID(),
		Body:   comment.GetBody(),
		Author: comment.GetUser().GetLogin(),
		Reactions: nitpick.Reactions{
			PlusOne:  r.GetPlusOne(),
			MinusOne: r.GetMinusOne(),
			Laugh:    r.GetLaugh(),
			Confused: r.GetConfused(),
			Heart:    r.GetHeart(),
			Hooray:   r.GetHooray(),
			Rocket:   r.GetRocket(),
			Eyes:     r.GetEyes(),
		},
	}
}

// CreateComment posts a new comment on the pull request and returns its ID.
func (c *Client) CreateComment(ctx context.Context, ev *Event, body string) (int64, error) {
	comment, _, err := c.GitHubClient().Issues.CreateComment(ctx, ev.Owner, ev.Repo, ev.Number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment.GetID(), nil
}

// EditComment replaces the body of an existing comment.
func (c *Client) EditComment(ctx context.Context, ev *Event, commentID int64, body string) error {
	_, err := retryWithBackoff(ctx, c.retryConfig, "edit comment", func() (*github.IssueComment, error) {
		comment, _, err := c.GitHubClient().Issues.EditComment(ctx, ev.Owner, ev.Repo, commentID, &github.IssueComment{Body: github.Ptr(body)})
		return comment, err
	})
	if err != nil {
		return fmt.Errorf("failed to edit comment %d: %w", commentID, err)
	}
	return nil
}

// AddReaction reacts to a comment. Adding a reaction the caller already left
// is a no-op on GitHub's side.
func (c *Client) AddReaction(ctx context.Context, ev *Event, commentID int64, reaction nitpick.Reaction) error {
	_, err := retryWithBackoff(ctx, c.retryConfig, "add reaction", func() (*github.Reaction, error) {
		r, _, err := c.GitHubClient().Reactions.CreateIssueCommentReaction(ctx, ev.Owner, ev.Repo, commentID, string(reaction))
		return r, err
	})
	if err != nil {
		return fmt.Errorf("failed to add %s reaction to comment %d: %w", reaction, commentID, err)
	}
	return nil
}

// RemoveReactions deletes the reactions of the given kinds that botLogin left
// on a comment. Reactions from other users are never touched.
func (c *Client) RemoveReactions(ctx context.Context, ev *Event, commentID int64, kinds []nitpick.Reaction, botLogin string) error {
	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[string(k)] = true
	}

	opts := &github.ListOptions{PerPage: perPage}
	var doomed []int64
	for {
		page, err := retryWithBackoff(ctx, c.retryConfig, "list reactions", func() (pageOf[*github.Reaction], error) {
			items, resp, err := c.GitHubClient().Reactions.ListIssueCommentReactions(ctx, ev.Owner, ev.Repo, commentID, opts)
			return pageOf[*github.Reaction]{items: items, resp: resp}, err
		})
		if err != nil {
			return fmt.Errorf("failed to list reactions on comment %d: %w", commentID, err)
		}

		for _, r := range page.items {
			if wanted[r.GetContent()] && r.GetUser().GetLogin() == botLogin {
				doomed = append(doomed, r.GetID())
			}
		}

		if page.resp == nil || page.resp.NextPage == 0 {
			break
		}
		opts.Page = page.resp.NextPage
	}

	for _, id := range doomed {
		_, err := retryWithBackoff(ctx, c.retryConfig, "delete reaction", func() (*github.Response, error) {
			return c.GitHubClient().Reactions.DeleteIssueCommentReaction(ctx, ev.Owner, ev.Repo, commentID, id)
		})
		if err != nil && !IsNotFoundError(err) {
			return fmt.Errorf("failed to delete reaction %d on comment %d: %w", id, commentID, err)
		}
	}
	return nil
}

// StartCheck creates an in-progress check run on the event's head commit.
func (c *Client) StartCheck(ctx context.Context, ev *Event, name string) (*CheckRun, error) {
	opts := github.CreateCheckRunOptions{
		Name:    name,
		HeadSHA: ev.HeadSHA,
		Status:  github.Ptr(checkStatusInProgress),
	}

	run, _, err := c.GitHubClient().Checks.CreateCheckRun(ctx, ev.Owner, ev.Repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create check run: %w", err)
	}

	return &CheckRun{
		ID:        run.GetID(),
		Name:      run.GetName(),
		Status:    run.GetStatus(),
		HTMLURL:   run.GetHTMLURL(),
		StartedAt: run.GetStartedAt().Time,
	}, nil
}

// CompleteCheck marks a check run completed with the given conclusion.
func (c *Client) CompleteCheck(ctx context.Context, ev *Event, run *CheckRun, conclusion nitpick.Conclusion, output CheckOutput) error {
	summary := output.Summary
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}

	opts := github.UpdateCheckRunOptions{
		Name:        run.Name,
		Status:      github.Ptr(checkStatusCompleted),
		Conclusion:  github.Ptr(string(conclusion)),
		CompletedAt: &github.Timestamp{Time: time.Now()},
	}
	if output.Title != "" || summary != "" {
		opts.Output = &github.CheckRunOutput{
			Title:   github.Ptr(output.Title),
			Summary: github.Ptr(summary),
		}
	}

	_, err := retryWithBackoff(ctx, c.retryConfig, "update check run", func() (*github.CheckRun, error) {
		cr, _, err := c.GitHubClient().Checks.UpdateCheckRun(ctx, ev.Owner, ev.Repo, run.ID, opts)
		return cr, err
	})
	if err != nil {
		return fmt.Errorf("failed to complete check run %d: %w", run.ID, err)
	}
	return nil
}
