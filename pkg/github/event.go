package github

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v68/github"
)

// Workflow event names nitpicker acts on.
const (
	EventPullRequest       = "pull_request"
	EventPullRequestTarget = "pull_request_target"
	EventPush              = "push"

	// DefaultServerURL is the web host used for blob links.
	DefaultServerURL = "https://github.com"
)

// zeroSHA is the "before" of a push that created a branch.
const zeroSHA = "0000000000000000000000000000000000000000"

// Event is the subset of a workflow event payload nitpicker needs.
type Event struct {
	Name  string
	Owner string
	Repo  string

	// Number and HTMLURL are set for pull request events.
	Number  int
	HTMLURL string

	// HeadSHA is the commit check runs are attached to.
	HeadSHA string

	// Before and After delimit a push.
	Before string
	After  string

	ServerURL string
}

// IsPullRequest reports whether the event concerns a pull request.
func (e *Event) IsPullRequest() bool {
	return e.Number > 0
}

// FullName returns owner/repo.
func (e *Event) FullName() string {
	return e.Owner + "/" + e.Repo
}

// FileLink returns the URL a comment footer links a changed file to: the
// file's anchor in the pull request diff, or the file at the pushed commit.
func (e *Event) FileLink(path string) string {
	if e.IsPullRequest() {
		sum := sha256.Sum256([]byte(path))
		return e.HTMLURL + "/files#diff-" + hex.EncodeToString(sum[:])
	}

	server := e.ServerURL
	if server == "" {
		server = DefaultServerURL
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/blob/%s/%s", strings.TrimSuffix(server, "/"), e.Owner, e.Repo, e.HeadSHA, strings.Join(segments, "/"))
}

// LoadEvent decodes the workflow event payload at path. repository
// (owner/repo) and sha come from the runner environment. repository wins
// over the payload; sha only fills in a missing head commit.
func LoadEvent(name, path, repository, sha string) (*Event, error) {
	switch name {
	case EventPullRequest, EventPullRequestTarget, EventPush:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}
	return ParseEvent(name, data, repository, sha)
}

// ParseEvent decodes an event payload already read into memory.
func ParseEvent(name string, payload []byte, repository, sha string) (*Event, error) {
	ev := &Event{Name: name}

	switch name {
	case EventPullRequest, EventPullRequestTarget:
		var pe github.PullRequestEvent
		if err := json.Unmarshal(payload, &pe); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
		}
		pr := pe.GetPullRequest()
		if pr == nil {
			return nil, fmt.Errorf("%s payload has no pull_request", name)
		}
		ev.Number = pr.GetNumber()
		if ev.Number == 0 {
			ev.Number = pe.GetNumber()
		}
		ev.HTMLURL = pr.GetHTMLURL()
		ev.HeadSHA = pr.GetHead().GetSHA()
		if repository == "" {
			repository = pe.GetRepo().GetFullName()
		}

	case EventPush:
		var pe github.PushEvent
		if err := json.Unmarshal(payload, &pe); err != nil {
			return nil, fmt.Errorf("failed to parse push payload: %w", err)
		}
		ev.Before = pe.GetBefore()
		ev.After = pe.GetAfter()
		ev.HeadSHA = ev.After
		if repository == "" {
			repository = pe.GetRepo().GetFullName()
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}

	if sha != "" && ev.HeadSHA == "" {
		ev.HeadSHA = sha
	}

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q (expected owner/repo)", repository)
	}
	ev.Owner, ev.Repo = owner, repo

	return ev, nil
}

// CreatesBranch reports whether a push event created its branch, in which
// case there is no base revision to compare against.
func (e *Event) CreatesBranch() bool {
	return e.Name == EventPush && (e.Before == "" || e.Before == zeroSHA)
}
