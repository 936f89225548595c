package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethanis/nitpicker/pkg/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Inspect publishers",
}

var publishListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available publishers",
	Long: `List all registered publishers. Publishers carry a computed set of
comment actions out to an external system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := publisher.List()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No publishers are currently registered")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Available publishers:")
		for _, name := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
		}
		return nil
	},
}

var publishInfoCmd = &cobra.Command{
	Use:   "info <provider>",
	Short: "Show information about a publisher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := publisher.Get(args[0])
		if p == nil {
			return fmt.Errorf("publisher '%s' not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Publisher: %s\n", p.Name())
		return nil
	},
}

func init() {
	publishCmd.AddCommand(publishListCmd)
	publishCmd.AddCommand(publishInfoCmd)
	rootCmd.AddCommand(publishCmd)
}
