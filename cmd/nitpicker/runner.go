package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethanis/nitpicker/pkg/github"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/metrics"
	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
	"github.com/ethanis/nitpicker/pkg/publisher/console"
	publishergithub "github.com/ethanis/nitpicker/pkg/publisher/github"
)

// GitHubAPI is the GitHub surface a run needs.
// This allows for easy mocking in tests
type GitHubAPI interface {
	publishergithub.CommentWriter

	ListChanges(ctx context.Context, ev *github.Event) ([]nitpick.Change, error)
	ExistingComments(ctx context.Context, ev *github.Event, botLogin string) ([]nitpick.PullRequestComment, error)
	StartCheck(ctx context.Context, ev *github.Event, name string) (*github.CheckRun, error)
	CompleteCheck(ctx context.Context, ev *github.Event, run *github.CheckRun, conclusion nitpick.Conclusion, output github.CheckOutput) error
}

// ErrBlocking is returned by the run command when --fail-on-blocking is set
// and a blocking rule applies.
var ErrBlocking = errors.New("blocking nitpicks apply")

// RunnerConfig holds the configuration for the Run function
type RunnerConfig struct {
	Rules       []nitpick.Rule
	Event       *github.Event
	BotLogin    string
	CheckName   string
	Concurrency int

	// DryRun prints the plan without touching comments or check runs.
	DryRun bool

	// OutputFile receives step outputs ($GITHUB_OUTPUT). Optional.
	OutputFile string
	// ResultDir receives nitpicker-result.json. Optional.
	ResultDir string
	// MetricsFile receives Prometheus metrics in textfile format. Optional.
	MetricsFile string
}

// RunResult summarizes a completed run.
type RunResult struct {
	State   nitpick.TargetState
	Publish publisher.PublishResult
}

// Runner encapsulates the dependencies needed for one reconciliation pass
type Runner struct {
	api GitHubAPI
	out io.Writer
}

// NewRunner creates a new Runner writing its plan to out.
func NewRunner(api GitHubAPI, out io.Writer) *Runner {
	return &Runner{api: api, out: out}
}

// Run reconciles the event's comments with the configured rules and reports
// the conclusion on a check run.
func (r *Runner) Run(ctx context.Context, cfg RunnerConfig) (*RunResult, error) {
	if cfg.Event == nil {
		return nil, fmt.Errorf("missing event")
	}
	ev := cfg.Event
	logger := log.FromContext(ctx).With("repository", ev.FullName(), "event", ev.Name)

	var check *github.CheckRun
	if !cfg.DryRun {
		var err error
		check, err = r.api.StartCheck(ctx, ev, cfg.CheckName)
		if err != nil {
			return nil, err
		}
		logger.Info("check run started", "check_run", check.ID, "head_sha", ev.HeadSHA)
	}

	rec := metrics.NewRecorder()
	result, plan, err := r.reconcile(ctx, cfg, rec)
	if err == nil && !result.Publish.Success {
		for _, e := range result.Publish.Errors {
			logger.Warn("publish error", "action", e.Action, "error", e.Message)
		}
		if cfg.ResultDir != "" {
			if werr := publisher.WriteResult(cfg.ResultDir, result.Publish); werr != nil {
				logger.Warn("failed to write publish result", "error", werr)
			}
		}
		err = fmt.Errorf("%d comment actions failed", len(result.Publish.Errors))
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		if check != nil {
			output := github.CheckOutput{Title: "nitpicker failed", Summary: err.Error()}
			if cerr := r.api.CompleteCheck(ctx, ev, check, nitpick.ConclusionFailure, output); cerr != nil {
				logger.Warn("failed to complete check run", "error", cerr)
			}
		}
		return nil, err
	}

	rec.ObserveConclusion(result.State.Conclusion)
	rec.ObserveResult(result.Publish)

	if check != nil {
		output := github.CheckOutput{
			Title:   checkTitle(result.State),
			Summary: checkSummary(ev, result.State, plan),
		}
		if err := r.api.CompleteCheck(ctx, ev, check, result.State.Conclusion, output); err != nil {
			return nil, err
		}
		logger.Info("check run completed", "check_run", check.ID, "conclusion", result.State.Conclusion)
	}

	if cfg.OutputFile != "" {
		if err := writeOutputs(cfg.OutputFile, stepOutputs(result)); err != nil {
			return nil, err
		}
	}
	if cfg.ResultDir != "" {
		if err := publisher.WriteResult(cfg.ResultDir, result.Publish); err != nil {
			return nil, err
		}
	}
	if cfg.MetricsFile != "" {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// reconcile computes the target state and publishes it. It returns the
// rendered plan alongside the result; failed comment writes are recorded in
// the result, not returned.
func (r *Runner) reconcile(ctx context.Context, cfg RunnerConfig, rec *metrics.Recorder) (*RunResult, string, error) {
	ev := cfg.Event

	changes, err := r.api.ListChanges(ctx, ev)
	if err != nil {
		return nil, "", err
	}
	log.FromContext(ctx).Info("changes listed", "count", len(changes))

	source := nitpick.CommentSourceFunc(func(ctx context.Context) ([]nitpick.PullRequestComment, error) {
		return r.api.ExistingComments(ctx, ev, cfg.BotLogin)
	})
	state, err := nitpick.TargetStateFrom(ctx, source, cfg.Rules, changes)
	if err != nil {
		return nil, "", err
	}

	applicable, err := countApplicable(cfg.Rules, changes)
	if err != nil {
		return nil, "", err
	}
	rec.ObserveRules(len(cfg.Rules), applicable)

	req := publisher.PublishRequest{
		Target:      target(ev),
		Event:       ev,
		State:       state,
		BotLogin:    cfg.BotLogin,
		Concurrency: cfg.Concurrency,
	}

	var plan bytes.Buffer
	result, err := console.NewConsolePublisher(&plan).Publish(ctx, req)
	if err != nil {
		return nil, "", err
	}
	_, _ = io.Copy(r.out, bytes.NewReader(plan.Bytes()))

	if !cfg.DryRun {
		gh, err := publishergithub.NewGitHubPublisher(r.api).Publish(ctx, req)
		if err != nil {
			return nil, "", err
		}
		gh.Merge(result)
		result = gh
	}

	return &RunResult{State: state, Publish: result}, plan.String(), nil
}

func countApplicable(rules []nitpick.Rule, changes []nitpick.Change) (int, error) {
	n := 0
	for i, rule := range rules {
		matches, err := nitpick.Matches(rule, changes)
		if err != nil {
			return 0, fmt.Errorf("rule %d: %w", i, err)
		}
		if len(matches) > 0 {
			n++
		}
	}
	return n, nil
}

func target(ev *github.Event) string {
	if ev.IsPullRequest() {
		return fmt.Sprintf("%s#%d", ev.FullName(), ev.Number)
	}
	return fmt.Sprintf("%s@%s", ev.FullName(), ev.HeadSHA)
}

func checkTitle(state nitpick.TargetState) string {
	if state.Conclusion == nitpick.ConclusionFailure {
		return "Blocking nitpicks apply"
	}
	if state.Empty() {
		return "No nitpicks"
	}
	return "Nitpicks updated"
}

// checkSummary renders the check run body. Pushes have no pull request to
// carry the comments, so their matched files are listed with blob links.
func checkSummary(ev *github.Event, state nitpick.TargetState, plan string) string {
	var sb strings.Builder
	sb.WriteString(plan)

	if ev.IsPullRequest() || len(state.CommentsToAdd) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	for _, add := range state.CommentsToAdd {
		links := make([]nitpick.Link, 0, len(add.Matches))
		for _, path := range add.Matches {
			links = append(links, nitpick.Link{Path: path, URL: ev.FileLink(path)})
		}
		sb.WriteString(nitpick.RenderBody(add.Comment.Markdown, links))
		sb.WriteString("\n")
	}
	return sb.String()
}
