package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendradar/trendradar/internal/app"
)

var (
	runConfigPath string
	runLogLevel   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the crawl pipeline once and exit",
	Long: `Execute one crawl-analyze-report-push cycle immediately, without
starting the scheduler or the HTTP server. Useful for cron-less setups
and for verifying the configuration.`,
	Run: runHandler,
}

func runHandler(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg, runLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := application.RunOnce(ctx)
	if err != nil {
		log.Error("pipeline run failed", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Batch %s: %d items in %s\n", result.BatchID, result.Items, result.Duration.Round(time.Millisecond))
	if len(result.Failed) > 0 {
		fmt.Printf("⚠️  Failed platforms: %s\n", strings.Join(result.Failed, ", "))
	}
	if len(result.Topics) > 0 {
		fmt.Println("🔥 Trending topics:")
		for i, topic := range result.Topics {
			fmt.Printf("  %d. %s (%d)\n", i+1, topic.Label, topic.Count)
		}
	}
	if result.Snapshot != "" {
		fmt.Printf("💾 Snapshot: %s\n", result.Snapshot)
	}
	if len(result.PushFailed) > 0 {
		fmt.Printf("⚠️  Push failed: %s\n", strings.Join(result.PushFailed, ", "))
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config.yaml")
	runCmd.Flags().StringVarP(&runLogLevel, "log-level", "l", "", "override log level (debug, info, warn, error)")
}
