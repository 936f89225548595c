package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethanis/nitpicker/pkg/config"
	"github.com/ethanis/nitpicker/pkg/github"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
	"github.com/ethanis/nitpicker/pkg/publisher/console"
)

var (
	evalRulesPath      string
	evalChangesPath    string
	evalCommentsPath   string
	evalFormat         string
	evalFailOnBlocking bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate rules against a change list without calling GitHub",
	Long: `Evaluate rules against a change list read from a YAML or JSON file and
print the comment actions a run would take.

A change list is a sequence of {file, changeType, patch} entries where
changeType is add, edit or delete. Existing comments may be given with
--comments as a sequence of {id, body, reactions} entries.

Examples:
  nitpicker evaluate --changes changes.yml
  nitpicker evaluate --rules .github/nitpicks.yml --changes changes.yml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRulesFlag(evalRulesPath)
		if err != nil {
			return err
		}

		var changes []nitpick.Change
		if err := readDocument(evalChangesPath, &changes); err != nil {
			return fmt.Errorf("failed to read changes: %w", err)
		}

		var existing []nitpick.PullRequestComment
		if evalCommentsPath != "" {
			if err := readDocument(evalCommentsPath, &existing); err != nil {
				return fmt.Errorf("failed to read comments: %w", err)
			}
		}

		state, err := plan(cmd.Context(), cmd.OutOrStdout(), evalFormat, rules, changes, existing)
		if err != nil {
			return err
		}
		if evalFailOnBlocking && state.Conclusion == nitpick.ConclusionFailure {
			return ErrBlocking
		}
		return nil
	},
}

// loadRulesFlag loads rules from path, falling back to the project config
// and the default location.
func loadRulesFlag(path string) ([]nitpick.Rule, error) {
	project, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, err
	}
	resolved, source := project.ResolveRules(path)
	log.Debug("loading rules", "path", resolved, "source", source)
	return config.LoadRules(resolved)
}

func readDocument(path string, v any) error {
	if path == "" {
		return fmt.Errorf("no file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// plan reconciles and prints the resulting state as a table or as JSON.
func plan(ctx context.Context, out io.Writer, format string, rules []nitpick.Rule, changes []nitpick.Change, existing []nitpick.PullRequestComment) (nitpick.TargetState, error) {
	state, err := nitpick.TargetStateFrom(ctx, nitpick.StaticComments(existing), rules, changes)
	if err != nil {
		return nitpick.TargetState{}, err
	}

	switch format {
	case "", "table":
		_, err := console.NewConsolePublisher(out).Publish(ctx, publisher.PublishRequest{
			Target: "local",
			Event:  &github.Event{},
			State:  state,
		})
		if err != nil {
			return nitpick.TargetState{}, err
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return nitpick.TargetState{}, err
		}
	default:
		return nitpick.TargetState{}, fmt.Errorf("unknown format %q (expected table or json)", format)
	}
	return state, nil
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalRulesPath, "rules", "r", "", "Path to the rules file")
	evaluateCmd.Flags().StringVarP(&evalChangesPath, "changes", "c", "", "Path to the change list (required)")
	evaluateCmd.Flags().StringVar(&evalCommentsPath, "comments", "", "Path to existing comments")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "table", "Output format: table or json")
	evaluateCmd.Flags().BoolVar(&evalFailOnBlocking, "fail-on-blocking", false, "Exit non-zero when a blocking rule applies")
	_ = evaluateCmd.MarkFlagRequired("changes")
	rootCmd.AddCommand(evaluateCmd)
}
