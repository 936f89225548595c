package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// setupTestClient creates a test client with VCR recording
func setupTestClient(t *testing.T, fixtureName string) (*Client, *Recorder) {
	t.Helper()

	fixturesDir := filepath.Join("testdata", "fixtures")
	if _, err := os.Stat(fixturesDir); os.IsNotExist(err) {
		t.Skipf("fixtures directory not found. To record fixtures, run: NITPICKER_VCR_MODE=record GITHUB_TOKEN=your_token go test ./pkg/github/...")
	}

	rec, err := NewRecorder(t, fixtureName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.Skipf("fixture %q not found. To record it, run: NITPICKER_VCR_MODE=record GITHUB_TOKEN=your_token go test -v ./pkg/github/ -run %s", fixtureName, t.Name())
		}
		t.Fatalf("failed to create recorder: %v", err)
	}

	// Use a real token when recording, dummy token when replaying
	var token string
	if rec.IsRecording() {
		token = os.Getenv("GITHUB_TOKEN")
		if token == "" {
			t.Fatal("GITHUB_TOKEN environment variable must be set when recording fixtures")
		}
	} else {
		token = "test-token"
	}

	testClient := NewClient(token,
		WithTimeout(10*time.Second),
		WithHTTPClient(rec.HTTPClient()),
	)

	return testClient, rec
}

// newMockClient starts a mock GitHub API backed by mux and returns a client
// pointed at it.
func newMockClient(t *testing.T, mux *http.ServeMux, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseURL(server.URL)}, opts...)
	return NewClient("test-token", opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

var testPR = &Event{
	Name:    EventPullRequest,
	Owner:   "octo",
	Repo:    "app",
	Number:  5,
	HTMLURL: "https://github.com/octo/app/pull/5",
	HeadSHA: "head",
}

func TestListChanges_PullRequestPaginates(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("GET /repos/octo/app/pulls/5/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, []map[string]any{
				{"filename": "README.md", "status": "renamed"},
			})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/app/pulls/5/files?page=2>; rel="next"`, serverURL))
		writeJSON(t, w, []map[string]any{
			{"filename": "app/new.rb", "status": "added", "patch": "@@ -0,0 +1 @@\n+x"},
			{"filename": "app/old.rb", "status": "removed"},
			{"filename": "app/edit.rb", "status": "modified", "patch": "@@ -1 +1 @@\n-a\n+b"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	serverURL = server.URL

	client := NewClient("test-token", WithBaseURL(server.URL))
	got, err := client.ListChanges(context.Background(), testPR)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}

	want := []nitpick.Change{
		{File: "app/new.rb", ChangeType: nitpick.ChangeAdd, Patch: "@@ -0,0 +1 @@\n+x"},
		{File: "app/old.rb", ChangeType: nitpick.ChangeDelete},
		{File: "app/edit.rb", ChangeType: nitpick.ChangeEdit, Patch: "@@ -1 +1 @@\n-a\n+b"},
		{File: "README.md", ChangeType: nitpick.ChangeEdit},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListChanges() mismatch (-want +got):\n%s", diff)
	}
}

func TestListChanges_Push(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/app/compare/aaa...bbb", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"files": []map[string]any{{"filename": "db/schema.rb", "status": "modified"}},
		})
	})
	mux.HandleFunc("GET /repos/octo/app/commits/ccc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"sha":   "ccc",
			"files": []map[string]any{{"filename": "new/file.go", "status": "added"}},
		})
	})
	client := newMockClient(t, mux)

	push := &Event{Name: EventPush, Owner: "octo", Repo: "app", Before: "aaa", After: "bbb", HeadSHA: "bbb"}
	got, err := client.ListChanges(context.Background(), push)
	if err != nil {
		t.Fatalf("ListChanges(push) error = %v", err)
	}
	if len(got) != 1 || got[0].File != "db/schema.rb" {
		t.Errorf("ListChanges(push) = %+v", got)
	}

	created := &Event{Name: EventPush, Owner: "octo", Repo: "app", Before: zeroSHA, After: "ccc", HeadSHA: "ccc"}
	got, err = client.ListChanges(context.Background(), created)
	if err != nil {
		t.Fatalf("ListChanges(new branch) error = %v", err)
	}
	if len(got) != 1 || got[0].ChangeType != nitpick.ChangeAdd {
		t.Errorf("ListChanges(new branch) = %+v", got)
	}
}

func TestExistingComments_FiltersByAuthor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/app/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{
				"id":        11,
				"body":      "bot comment",
				"user":      map[string]any{"login": nitpick.Author},
				"reactions": map[string]any{"eyes": 1, "hooray": 2, "+1": 3},
			},
			{
				"id":   12,
				"body": "human comment",
				"user": map[string]any{"login": "octocat"},
			},
		})
	})
	client := newMockClient(t, mux)

	got, err := client.ExistingComments(context.Background(), testPR, nitpick.Author)
	if err != nil {
		t.Fatalf("ExistingComments() error = %v", err)
	}

	want := []nitpick.PullRequestComment{{
		ID:        11,
		Body:      "bot comment",
		Author:    nitpick.Author,
		Reactions: nitpick.Reactions{Eyes: 1, Hooray: 2, PlusOne: 3},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExistingComments() mismatch (-want +got):\n%s", diff)
	}
}

func TestExistingComments_PushHasNone(t *testing.T) {
	client := newMockClient(t, http.NewServeMux())
	got, err := client.ExistingComments(context.Background(), &Event{Name: EventPush, Owner: "o", Repo: "r"}, nitpick.Author)
	if err != nil || got != nil {
		t.Errorf("ExistingComments(push) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestCommentWrites(t *testing.T) {
	var created, edited map[string]any
	var reacted []string
	var deleted []string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/app/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&created)
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 99})
	})
	mux.HandleFunc("PATCH /repos/octo/app/issues/comments/99", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&edited)
		writeJSON(t, w, map[string]any{"id": 99})
	})
	mux.HandleFunc("POST /repos/octo/app/issues/comments/99/reactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		reacted = append(reacted, body["content"])
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 1, "content": body["content"]})
	})
	mux.HandleFunc("GET /repos/octo/app/issues/comments/99/reactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 1, "content": "eyes", "user": map[string]any{"login": nitpick.Author}},
			{"id": 2, "content": "eyes", "user": map[string]any{"login": "octocat"}},
			{"id": 3, "content": "rocket", "user": map[string]any{"login": nitpick.Author}},
			{"id": 4, "content": "hooray", "user": map[string]any{"login": nitpick.Author}},
		})
	})
	mux.HandleFunc("DELETE /repos/octo/app/issues/comments/99/reactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	client := newMockClient(t, mux)
	ctx := context.Background()

	id, err := client.CreateComment(ctx, testPR, "hello")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if id != 99 || created["body"] != "hello" {
		t.Errorf("CreateComment() = %d, body %v", id, created["body"])
	}

	if err := client.EditComment(ctx, testPR, 99, "updated"); err != nil {
		t.Fatalf("EditComment() error = %v", err)
	}
	if edited["body"] != "updated" {
		t.Errorf("EditComment() sent body %v", edited["body"])
	}

	if err := client.AddReaction(ctx, testPR, 99, nitpick.ReactionEyes); err != nil {
		t.Fatalf("AddReaction() error = %v", err)
	}
	if diff := cmp.Diff([]string{"eyes"}, reacted); diff != "" {
		t.Errorf("AddReaction() mismatch (-want +got):\n%s", diff)
	}

	if err := client.RemoveReactions(ctx, testPR, 99, []nitpick.Reaction{nitpick.ReactionEyes, nitpick.ReactionHooray}, nitpick.Author); err != nil {
		t.Fatalf("RemoveReactions() error = %v", err)
	}
	if diff := cmp.Diff([]string{"1", "4"}, deleted); diff != "" {
		t.Errorf("RemoveReactions() deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckRunLifecycle(t *testing.T) {
	var createReq, updateReq map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/app/check-runs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&createReq)
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 321, "name": "nitpicker", "status": "in_progress"})
	})
	mux.HandleFunc("PATCH /repos/octo/app/check-runs/321", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&updateReq)
		writeJSON(t, w, map[string]any{"id": 321, "status": "completed"})
	})
	client := newMockClient(t, mux)
	ctx := context.Background()

	run, err := client.StartCheck(ctx, testPR, "nitpicker")
	if err != nil {
		t.Fatalf("StartCheck() error = %v", err)
	}
	if run.ID != 321 || createReq["head_sha"] != "head" || createReq["status"] != "in_progress" {
		t.Errorf("StartCheck() run=%+v request=%v", run, createReq)
	}

	err = client.CompleteCheck(ctx, testPR, run, nitpick.ConclusionFailure, CheckOutput{Title: "1 blocking rule", Summary: "details"})
	if err != nil {
		t.Fatalf("CompleteCheck() error = %v", err)
	}
	if updateReq["conclusion"] != "failure" || updateReq["status"] != "completed" {
		t.Errorf("CompleteCheck() request = %v", updateReq)
	}
	output, _ := updateReq["output"].(map[string]any)
	if output["title"] != "1 blocking rule" || output["summary"] != "details" {
		t.Errorf("CompleteCheck() output = %v", output)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/octo/app/issues/comments/1", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message": "bad gateway"}`))
			return
		}
		writeJSON(t, w, map[string]any{"id": 1})
	})
	client := newMockClient(t, mux, WithRetryConfig(&RetryConfig{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}))

	if err := client.EditComment(context.Background(), testPR, 1, "x"); err != nil {
		t.Fatalf("EditComment() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/octo/app/issues/comments/1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	})
	client := newMockClient(t, mux, WithRetryConfig(&RetryConfig{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}))

	err := client.EditComment(context.Background(), testPR, 1, "x")
	if !IsNotFoundError(err) {
		t.Errorf("expected not found error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestDo_RateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "API rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))
	req, err := client.NewRequest(context.Background(), http.MethodGet, server.URL+"/rate", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Do(req, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.RateLimit == nil || apiErr.RateLimit.Limit != 60 || apiErr.RateLimit.Reset != 1700000000 {
		t.Errorf("RateLimit = %+v", apiErr.RateLimit)
	}
	if !IsRateLimitError(err) || !IsRetryableError(err) {
		t.Error("rate limit error should be retryable")
	}
	if IsAuthenticationError(err) {
		t.Error("rate limit error is not an authentication error")
	}
}

// TestListChanges_Recorded replays a recorded pull request listing.
func TestListChanges_Recorded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client, rec := setupTestClient(t, "list_pull_request_files")
	defer rec.Stop()

	ev := &Event{Name: EventPullRequest, Owner: "ethanis", Repo: "nitpicker", Number: 1}
	changes, err := client.ListChanges(context.Background(), ev)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("ListChanges() returned %d changes, want 2", len(changes))
	}
	for _, c := range changes {
		if c.File == "" {
			t.Error("change without file name")
		}
	}
	if changes[1].File != ".github/nitpicks.yml" || changes[1].ChangeType != nitpick.ChangeAdd {
		t.Errorf("second change = %+v", changes[1])
	}
}
