package main

import (
	"github.com/spf13/cobra"

	"github.com/ethanis/nitpicker/pkg/git"
	"github.com/ethanis/nitpicker/pkg/log"
	"github.com/ethanis/nitpicker/pkg/nitpick"
)

var (
	diffRulesPath      string
	diffBase           string
	diffHead           string
	diffRepoDir        string
	diffFormat         string
	diffFailOnBlocking bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Evaluate rules against commits of a local repository",
	Long: `Evaluate rules against the changes between two revisions of a local git
repository and print the comments a pull request would receive.

Examples:
  nitpicker diff
  nitpicker diff --base origin/main --head HEAD`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRulesFlag(diffRulesPath)
		if err != nil {
			return err
		}

		repo, err := git.Open(diffRepoDir)
		if err != nil {
			return err
		}
		changes, err := repo.Diff(cmd.Context(), diffBase, diffHead)
		if err != nil {
			return err
		}
		log.Info("changes read", "base", diffBase, "head", diffHead, "count", len(changes))

		state, err := plan(cmd.Context(), cmd.OutOrStdout(), diffFormat, rules, changes, nil)
		if err != nil {
			return err
		}
		if diffFailOnBlocking && state.Conclusion == nitpick.ConclusionFailure {
			return ErrBlocking
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffRulesPath, "rules", "r", "", "Path to the rules file")
	diffCmd.Flags().StringVar(&diffBase, "base", "HEAD~1", "Base revision")
	diffCmd.Flags().StringVar(&diffHead, "head", "HEAD", "Head revision")
	diffCmd.Flags().StringVarP(&diffRepoDir, "repo-dir", "C", ".", "Directory inside the repository")
	diffCmd.Flags().StringVar(&diffFormat, "format", "table", "Output format: table or json")
	diffCmd.Flags().BoolVar(&diffFailOnBlocking, "fail-on-blocking", false, "Exit non-zero when a blocking rule applies")
	rootCmd.AddCommand(diffCmd)
}
