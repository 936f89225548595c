package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesPath string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect nitpick rules",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the rules file",
	Long: `Load the rules file and check every path and content filter.

Rules without markdown are skipped, as they are during a run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRulesFlag(rulesPath)
		if err != nil {
			return err
		}

		blocking := 0
		for _, r := range rules {
			if r.Blocking {
				blocking++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rules valid (%d blocking)\n", len(rules), blocking)
		return nil
	},
}

func init() {
	rulesValidateCmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Path to the rules file")
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}
