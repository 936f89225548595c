package nitpick

import (
	"context"
	"fmt"
)

// CommentSource supplies the comments already posted on the pull request.
type CommentSource interface {
	ExistingComments(ctx context.Context) ([]PullRequestComment, error)
}

// CommentSourceFunc adapts a function to CommentSource.
type CommentSourceFunc func(ctx context.Context) ([]PullRequestComment, error)

func (f CommentSourceFunc) ExistingComments(ctx context.Context) ([]PullRequestComment, error) {
	return f(ctx)
}

// StaticComments is a CommentSource over a fixed snapshot.
type StaticComments []PullRequestComment

func (s StaticComments) ExistingComments(context.Context) ([]PullRequestComment, error) {
	return s, nil
}

// TargetStateFrom reads existing comments from source once and reconciles
// them against rules and changes.
func TargetStateFrom(ctx context.Context, source CommentSource, rules []Rule, changes []Change) (TargetState, error) {
	existing, err := source.ExistingComments(ctx)
	if err != nil {
		return TargetState{}, fmt.Errorf("failed to load existing comments: %w", err)
	}
	return Reconcile(rules, changes, existing)
}

// Matches returns the paths of the changes the rule applies to.
func Matches(rule Rule, changes []Change) ([]string, error) {
	byPath, err := MatchingFilePaths(rule, changes)
	if err != nil {
		return nil, err
	}
	byContent, err := MatchingContentChanges(rule, byPath)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(byContent))
	for _, c := range byContent {
		matches = append(matches, c.File)
	}
	return matches, nil
}

// Reconcile computes the comment actions and conclusion for one run.
// It returns an error without a partial state if any rule cannot be evaluated.
func Reconcile(rules []Rule, changes []Change, existing []PullRequestComment) (TargetState, error) {
	state := TargetState{Conclusion: ConclusionSuccess}

	for i, rule := range rules {
		matches, err := Matches(rule, changes)
		if err != nil {
			return TargetState{}, fmt.Errorf("rule %d: %w", i, err)
		}
		applicable := len(matches) > 0

		if rule.Blocking && applicable {
			state.Conclusion = ConclusionFailure
		}

		owned := ownedComments(rule, existing)
		if len(owned) == 0 && applicable {
			state.CommentsToAdd = append(state.CommentsToAdd, MatchResult[Rule]{
				Comment: rule,
				Matches: matches,
			})
		}

		for _, comment := range owned {
			result := MatchResult[PullRequestComment]{Comment: comment, Matches: matches}
			active := comment.IsActive()

			switch {
			case !applicable && active:
				state.CommentsToResolve = append(state.CommentsToResolve, result)
			case applicable && !active && rule.Blocking:
				state.CommentsToReactivate = append(state.CommentsToReactivate, result)
			case applicable:
				state.CommentsToUpdate = append(state.CommentsToUpdate, result)
			}
		}
	}

	return state, nil
}

func ownedComments(rule Rule, existing []PullRequestComment) []PullRequestComment {
	var owned []PullRequestComment
	for _, c := range existing {
		if c.OwnedBy(rule) {
			owned = append(owned, c)
		}
	}
	return owned
}
