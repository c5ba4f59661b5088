package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trendradar",
	Short: "TrendRadar - hot-list news radar",
	Long: `TrendRadar crawls hot lists from news platforms on a cron schedule,
matches them against configured keyword groups and serves the results
over HTTP with a live SSE event stream. Summaries can be pushed to
Feishu, DingTalk, WeWork and Telegram.`,
	Version: Version,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(filesCmd)
}
