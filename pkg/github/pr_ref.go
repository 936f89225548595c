package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PullRequestRef identifies a pull request outside of a workflow run.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

var (
	prURLPattern    = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)/?$`)
	shortRefPattern = regexp.MustCompile(`^([^/]+)/([^/]+)#(\d+)$`)
	numericPattern  = regexp.MustCompile(`^(\d+)$`)
)

// ParsePullRequestRef parses a pull request reference.
// Supported formats:
//   - https://github.com/<owner>/<repo>/pull/<n>
//   - <owner>/<repo>#<n>
//   - #<n> or <n> (requires defaultRepo)
func ParsePullRequestRef(ref string, defaultRepo string) (*PullRequestRef, error) {
	ref = strings.TrimSpace(ref)

	for _, pattern := range []*regexp.Regexp{prURLPattern, shortRefPattern} {
		if matches := pattern.FindStringSubmatch(ref); matches != nil {
			num, _ := strconv.Atoi(matches[3])
			return &PullRequestRef{Owner: matches[1], Repo: matches[2], Number: num}, nil
		}
	}

	if defaultRepo == "" {
		return nil, fmt.Errorf("ambiguous reference '%s' requires --repo flag (e.g., --repo owner/repo)", ref)
	}

	if matches := numericPattern.FindStringSubmatch(strings.TrimPrefix(ref, "#")); matches != nil {
		owner, repo, ok := strings.Cut(defaultRepo, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, fmt.Errorf("invalid --repo format: %s (expected owner/repo)", defaultRepo)
		}
		num, _ := strconv.Atoi(matches[1])
		return &PullRequestRef{Owner: owner, Repo: repo, Number: num}, nil
	}

	return nil, fmt.Errorf("invalid pull request reference: %s (supported: PR URLs, owner/repo#123, or #123 with --repo)", ref)
}

// String returns owner/repo#number.
func (r *PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// URL returns the pull request's web URL.
func (r *PullRequestRef) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.Owner, r.Repo, r.Number)
}

// PullRequestEvent builds the Event a pull_request workflow run would carry
// for ref, so a pull request can be checked from outside Actions.
func (c *Client) PullRequestEvent(ctx context.Context, ref *PullRequestRef) (*Event, error) {
	pr, _, err := c.GitHubClient().PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %s: %w", ref, err)
	}

	htmlURL := pr.GetHTMLURL()
	if htmlURL == "" {
		htmlURL = ref.URL()
	}
	return &Event{
		Name:    EventPullRequest,
		Owner:   ref.Owner,
		Repo:    ref.Repo,
		Number:  ref.Number,
		HTMLURL: htmlURL,
		HeadSHA: pr.GetHead().GetSHA(),
	}, nil
}
