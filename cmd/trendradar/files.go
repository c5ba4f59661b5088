package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendradar/trendradar/internal/storage"
)

var (
	filesConfigPath string
	filesLimit      int
)

// filesCmd represents the files command
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List recent output files",
	Run:   filesHandler,
}

func filesHandler(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(filesConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid timezone %q: %v\n", cfg.Timezone, err)
		os.Exit(1)
	}

	log, err := newLogger(cfg, "error")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	store := storage.New(cfg.Paths.Output, location, log)
	files, err := store.ListRecent(filesLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list output files: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Printf("📁 No output files under %s yet\n", cfg.Paths.Output)
		return
	}

	fmt.Printf("📁 Recent output files (%s):\n", cfg.Paths.Output)
	for _, f := range files {
		fmt.Printf("  %s  %8s  %s\n",
			f.ModTime.In(location).Format("2006-01-02 15:04"),
			formatSize(f.Size),
			f.Path)
	}
}

func init() {
	filesCmd.Flags().StringVarP(&filesConfigPath, "config", "c", "", "path to config.yaml")
	filesCmd.Flags().IntVarP(&filesLimit, "limit", "n", 20, "maximum number of files to show")
}
