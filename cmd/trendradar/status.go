package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendradar/trendradar/internal/app"
)

var statusAddr string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running instance",
	Long: `Query the /api/status endpoint of a running TrendRadar instance and
print a human-readable summary.`,
	Run: statusHandler,
}

func statusHandler(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(statusAddr, "/") + "/api/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Unable to reach %s: %v\n", statusAddr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "❌ Status request failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	var status app.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Unable to parse status response: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📊 TrendRadar Status:")
	fmt.Printf("  🏷️  %s, up %s\n", status.Version, status.Uptime)
	fmt.Printf("  📝 Report mode: %s\n", status.Mode)
	fmt.Printf("  ⏰ Schedule: %s (%s)\n", status.Schedule, status.ScheduleDesc)
	fmt.Printf("  🌍 Timezone: %s\n", status.Timezone)
	if !status.NextRun.IsZero() {
		fmt.Printf("  ⏭️  Next run: %s\n", status.NextRun.Format(time.RFC3339))
	}
	if status.LastRun.IsZero() {
		fmt.Println("  🕐 Last run: never")
	} else {
		fmt.Printf("  🕐 Last run: %s\n", status.LastRun.Format(time.RFC3339))
	}
	if status.Running {
		fmt.Println("  🔄 Pipeline run in progress")
	}
	if status.SkippedTicks > 0 {
		fmt.Printf("  ⚠️  Skipped ticks: %d\n", status.SkippedTicks)
	}
	fmt.Printf("  📰 Platforms: %d, word groups: %d\n", status.Platforms, status.WordGroups)
	if len(status.PushChannels) > 0 {
		fmt.Printf("  📨 Push channels: %s\n", strings.Join(status.PushChannels, ", "))
	} else {
		fmt.Println("  📨 Push channels: none")
	}
	fmt.Printf("  👥 SSE subscribers: %d\n", status.Subscribers)
	fmt.Printf("  💾 Output: %d days, %d files, %s\n",
		status.Storage.Days, status.Storage.Files, formatSize(status.Storage.TotalSize))
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func init() {
	statusCmd.Flags().StringVarP(&statusAddr, "addr", "a", "http://localhost:8000", "base URL of the running instance")
}
