package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethanis/nitpicker/pkg/config"
	"github.com/ethanis/nitpicker/pkg/github"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
	publishergithub "github.com/ethanis/nitpicker/pkg/publisher/github"
)

var (
	runRulesPath      string
	runPRRef          string
	runRepo           string
	runBotLogin       string
	runCheckName      string
	runConcurrency    int
	runResultDir      string
	runMetricsFile    string
	runDryRun         bool
	runFailOnBlocking bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile nitpick comments for the current workflow event",
	Long: `Reconcile nitpick comments for a pull request or push.

Inside GitHub Actions the event is read from GITHUB_EVENT_NAME and
GITHUB_EVENT_PATH and the rules file and token from the action inputs.
Use --pr to check a pull request from anywhere else.

Examples:
  nitpicker run
  nitpicker run --pr ethanis/nitpicker#12 --dry-run
  nitpicker run --pr 12 --repo ethanis/nitpicker --rules nitpicks.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inputs, err := config.LoadInputs(ctx)
		if err != nil {
			return err
		}
		project, err := config.LoadFromCurrentDir()
		if err != nil {
			return err
		}

		rulesPath, source := project.ResolveRules(firstNonEmpty(runRulesPath, inputs.NitpickerFile))
		log.Info("loading rules", "path", rulesPath, "source", source)
		rules, err := config.LoadRules(rulesPath)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			log.Info("no comments are configured")
			return nil
		}
		log.Info("rules loaded", "count", len(rules))

		token := firstNonEmpty(inputs.Token, os.Getenv("GITHUB_TOKEN"))
		if token == "" {
			return fmt.Errorf("missing input: token")
		}
		client := github.NewClient(token,
			github.WithBaseURL(inputs.APIURL),
			github.WithRetryConfig(github.DefaultRetryConfig()),
		)

		var ev *github.Event
		if runPRRef != "" {
			ref, err := github.ParsePullRequestRef(runPRRef, firstNonEmpty(runRepo, inputs.Repository))
			if err != nil {
				return err
			}
			ev, err = client.PullRequestEvent(ctx, ref)
			if err != nil {
				return err
			}
		} else {
			if err := inputs.RequireRun(); err != nil {
				return err
			}
			ev, err = github.LoadEvent(inputs.EventName, inputs.EventPath, inputs.Repository, inputs.SHA)
			if errors.Is(err, github.ErrUnsupportedEvent) {
				log.Warn("skipping unsupported event", "event", inputs.EventName)
				return nil
			}
			if err != nil {
				return err
			}
		}

		botLogin, _ := project.ResolveBotLogin(firstNonEmpty(runBotLogin, inputs.BotLogin), publishergithub.DefaultBotLogin)
		checkName, _ := project.ResolveCheckName(runCheckName)
		concurrency, _ := project.ResolveConcurrency(runConcurrency)

		result, err := NewRunner(client, cmd.OutOrStdout()).Run(ctx, RunnerConfig{
			Rules:       rules,
			Event:       ev,
			BotLogin:    botLogin,
			CheckName:   checkName,
			Concurrency: concurrency,
			DryRun:      runDryRun,
			OutputFile:  inputs.Output,
			ResultDir:   runResultDir,
			MetricsFile: runMetricsFile,
		})
		if err != nil {
			return err
		}

		if runFailOnBlocking && result.State.Conclusion == nitpick.ConclusionFailure {
			return ErrBlocking
		}
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	runCmd.Flags().StringVarP(&runRulesPath, "rules", "r", "", "Path to the rules file (default: nitpickerFile input, project config, "+config.DefaultRulesPath+")")
	runCmd.Flags().StringVar(&runPRRef, "pr", "", "Pull request to check instead of the workflow event (URL, owner/repo#n or n)")
	runCmd.Flags().StringVar(&runRepo, "repo", "", "Default repository for --pr in owner/repo form")
	runCmd.Flags().StringVar(&runBotLogin, "bot-login", "", "Login whose comments and reactions nitpicker manages")
	runCmd.Flags().StringVar(&runCheckName, "check-name", "", "Name of the check run (default "+config.DefaultCheckName+")")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Maximum concurrent comment writes")
	runCmd.Flags().StringVarP(&runResultDir, "output", "O", "", "Directory to write "+publisher.PublishResultFile+" to")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the plan without writing comments or check runs")
	runCmd.Flags().BoolVar(&runFailOnBlocking, "fail-on-blocking", false, "Exit non-zero when a blocking rule applies")
	rootCmd.AddCommand(runCmd)
}
