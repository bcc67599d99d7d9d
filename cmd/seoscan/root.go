// Package main provides the entry point for the seoscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for seoscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoscan",
		Short: "Single-page SEO audit tool",
		Long: `seoscan audits a single web page for SEO problems.

It fetches the page, runs independent analysis stages (content, images,
keywords, backlinks, URL structure), and aggregates their findings into
a prioritized report. With an inference API key, deterministic checks
are enriched by language-model review; without one, the audit still
runs in deterministic-only mode.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
