package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethanis/nitpicker/pkg/config"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/publisher"
	"github.com/ethanis/nitpicker/pkg/publisher/console"
	publishergithub "github.com/ethanis/nitpicker/pkg/publisher/github"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "nitpicker",
	Short: "Nitpicker comments on pull requests that touch configured paths.",
	Long: `Nitpicker evaluates a set of rules against the files changed by a pull
request or push and keeps one comment per applicable rule up to date.

Blocking rules fail the check run while they apply.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		project, err := config.LoadFromCurrentDir()
		if err != nil {
			return err
		}

		cli := logLevel
		if cli == "" {
			cli = os.Getenv(log.LevelEnv)
		}
		level, source := project.ResolveLogLevel(cli, log.DefaultLevel)
		if err := log.Setup(os.Stderr, level); err != nil {
			return err
		}
		log.Debug("log level resolved", "level", level, "source", source)

		cmd.SetContext(log.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Listed by `publish list`; run builds its own instances.
	_ = publisher.Register(console.NewConsolePublisher(nil))
	_ = publisher.Register(publishergithub.NewGitHubPublisher(nil))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
