package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trendradar/trendradar/internal/cron"
)

var configPath string

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the effective configuration",
	Long: `Load config.yaml, apply environment overrides, validate the result
and print it with credentials masked.`,
	Run: configHandler,
}

func configHandler(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid")
	fmt.Printf("⏰ Schedule: %s (%s)\n\n", cfg.Schedule, cron.Describe(cfg.Schedule))

	masked := cfg.Masked()
	out, err := yaml.Marshal(&masked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to render configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}

// configValidateCmd checks the configuration without printing it.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and exit",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Configuration is valid (%d platforms, schedule %q)\n",
			len(cfg.Crawler.Platforms), cfg.Schedule)
	},
}

func init() {
	configCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	configCmd.AddCommand(configValidateCmd)
}
