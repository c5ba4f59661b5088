package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trendradar/trendradar/internal/app"
	"github.com/trendradar/trendradar/internal/cron"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/server"
)

var (
	serveConfigPath string
	serveLogLevel   string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler and HTTP server (main command)",
	Long: `Start TrendRadar: the crawl pipeline runs on the configured cron
schedule and the HTTP server exposes the SSE event stream, the query
API and Prometheus metrics. Shuts down gracefully on SIGINT/SIGTERM.`,
	Run: serveHandler,
}

func serveHandler(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg, serveLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	log.Info("🚀 Starting TrendRadar",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "schedule", Value: cfg.Schedule},
		logger.Field{Key: "schedule_desc", Value: cron.Describe(cfg.Schedule)},
		logger.Field{Key: "timezone", Value: cfg.Timezone},
		logger.Field{Key: "immediate_run", Value: cfg.ImmediateRun},
		logger.Field{Key: "listen", Value: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)})

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("📴 Shutdown signal received",
			logger.Field{Key: "signal", Value: sig.String()})
		cancel()
	}()

	// The bus must be running before the server subscribes for SSE.
	if err := application.StartBus(ctx); err != nil {
		log.Error("failed to start event bus", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- application.Serve(ctx) }()

	srv := server.New(cfg.Server, application, log)
	go func() { errCh <- srv.Start(ctx) }()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			log.Error("component failed", err)
			cancel()
			os.Exit(1)
		}
	}

	log.Info("👋 TrendRadar stopped")
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to config.yaml")
	serveCmd.Flags().StringVarP(&serveLogLevel, "log-level", "l", "", "override log level (debug, info, warn, error)")
}
