package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethanis/nitpicker/pkg/github"
)

// These variables are set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCheck bool
var versionQuiet bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for the nitpicker CLI.

This shows the version number, git commit SHA, and build date.
The version is set at build time via git tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionCheck {
			return checkForUpdates(cmd.Context())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "nitpicker version %s\n", Version)
		if Commit != "" && Commit != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", Commit)
		}
		if BuildDate != "" && BuildDate != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "built at: %s\n", BuildDate)
		}
		return nil
	},
}

// checkForUpdates checks for newer releases and displays the result
func checkForUpdates(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fmt.Printf("nitpicker version %s\n", Version)

	var client *github.Client
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = github.NewClient(token)
	}

	release, upToDate, err := github.CheckForUpdates(ctx, client, Version)
	if err != nil {
		if os.Getenv(github.VersionCheckEnvVar) != "" {
			return nil
		}
		// Not fatal: the check is informational.
		fmt.Fprintf(os.Stderr, "Warning: failed to check for updates: %v\n", err)
		return nil
	}

	if upToDate {
		if !versionQuiet {
			fmt.Printf("✓ You're running the latest version (%s)\n", release.TagName)
		}
		return nil
	}

	fmt.Printf("\n⚠️  A newer version is available!\n")
	fmt.Printf("   Current: %s\n", Version)
	fmt.Printf("   Latest:  %s\n", release.TagName)
	fmt.Printf("   Download: %s\n", release.HTMLURL)
	return nil
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for newer nitpicker releases")
	versionCmd.Flags().BoolVar(&versionQuiet, "quiet", false, "Quiet mode: suppress success message when up to date")
	rootCmd.AddCommand(versionCmd)
}
