// Package app wires the crawl pipeline together: scheduler, crawler,
// analyzer, storage, reports and push channels, connected through the
// event bus and the worker pool.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/bus"
	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/crawler"
	"github.com/trendradar/trendradar/internal/cron"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/metrics"
	"github.com/trendradar/trendradar/internal/push"
	"github.com/trendradar/trendradar/internal/report"
	"github.com/trendradar/trendradar/internal/storage"
	"github.com/trendradar/trendradar/internal/version"
	"github.com/trendradar/trendradar/internal/workers"
)

// App owns every long-lived component of the service.
type App struct {
	cfg       *config.Config
	logger    *logger.Logger
	location  *time.Location
	startedAt time.Time

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	bus        *bus.Bus
	crawler    *crawler.Crawler
	analyzer   *analyzer.Analyzer
	store      *storage.Store
	renderer   *report.Renderer
	dispatcher *push.Dispatcher
	pool       *workers.Pool
	scheduler  *cron.Scheduler

	pipeline *pipelineState
}

// New builds the application from a validated configuration.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("trendradar", registry)

	cr, err := crawler.New(cfg.Crawler, log)
	if err != nil {
		return nil, err
	}

	groups, err := analyzer.LoadWordGroups(cfg.Paths.FrequencyWords)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		log.Warn("no frequency word groups configured, trending topics disabled",
			logger.Field{Key: "path", Value: cfg.Paths.FrequencyWords})
	}

	dispatcher, err := push.New(cfg.Push, log, m)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		logger:     log,
		location:   location,
		startedAt:  time.Now(),
		registry:   registry,
		metrics:    m,
		bus:        bus.New(cfg.Bus.Capacity, log),
		crawler:    cr,
		analyzer:   analyzer.New(groups),
		store:      storage.New(cfg.Paths.Output, location, log),
		renderer:   report.NewRenderer(location),
		dispatcher: dispatcher,
		pipeline:   &pipelineState{},
	}

	a.pool = workers.NewPool(cfg.Workers.PoolSize, cfg.Workers.QueueSize, a.executeTask, log)

	a.scheduler, err = cron.New(cfg.Schedule, location, a.runScheduled, log)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Serve runs the pipeline on the configured schedule until ctx is done.
// The HTTP server is run by the caller; this blocks on the scheduler.
func (a *App) Serve(ctx context.Context) error {
	if err := a.StartBus(ctx); err != nil {
		return err
	}
	a.pool.Start()
	go a.drainResults(ctx)

	a.logger.Info("🚀 TrendRadar pipeline starting",
		logger.Field{Key: "schedule", Value: a.cfg.Schedule},
		logger.Field{Key: "description", Value: cron.Describe(a.cfg.Schedule)},
		logger.Field{Key: "timezone", Value: a.cfg.Timezone},
		logger.Field{Key: "platforms", Value: len(a.cfg.Crawler.Platforms)},
		logger.Field{Key: "push_channels", Value: a.dispatcher.Channels()})

	if a.cfg.ImmediateRun {
		a.logger.Info("⚡ immediate run requested")
		a.SubmitCrawl(ctx, workers.TaskTypeStartupCrawl)
	}

	err := a.scheduler.Start(ctx)

	a.pool.Stop()
	if stopErr := a.bus.Stop(); stopErr != nil {
		a.logger.Error("failed to stop event bus", stopErr)
	}
	return err
}

// RunOnce executes the pipeline a single time, for the one-shot CLI
// mode.
func (a *App) RunOnce(ctx context.Context) (*PipelineResult, error) {
	if err := a.StartBus(ctx); err != nil {
		return nil, err
	}
	defer a.bus.Stop()

	return a.RunPipeline(ctx, "manual")
}

// StartBus starts the event bus if it is not running yet. The HTTP
// server must subscribe before events flow, so the serve command starts
// the bus ahead of both components.
func (a *App) StartBus(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil && !errors.Is(err, bus.ErrAlreadyStarted) {
		return err
	}
	return nil
}

// SubmitCrawl queues a pipeline run on the worker pool.
func (a *App) SubmitCrawl(ctx context.Context, taskType string) string {
	task := workers.Task{
		ID:      fmt.Sprintf("%s-%d", taskType, time.Now().UnixNano()),
		Type:    taskType,
		Context: ctx,
	}
	a.pool.Submit(task)
	return task.ID
}

func (a *App) runScheduled(ctx context.Context) {
	if _, err := a.RunPipeline(ctx, "schedule"); err != nil {
		a.logger.ErrorCtx(ctx, "scheduled pipeline run failed", err)
	}
}

func (a *App) executeTask(ctx context.Context, task workers.Task) (string, error) {
	switch task.Type {
	case workers.TaskTypeStartupCrawl, workers.TaskTypeManualCrawl:
		result, err := a.RunPipeline(ctx, task.Type)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("batch %s: %d items", result.BatchID, result.Items), nil
	default:
		return "", fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (a *App) drainResults(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case result, ok := <-a.pool.Results():
			if !ok {
				return
			}
			if result.Error != nil {
				a.logger.Error("task failed", result.Error,
					logger.Field{Key: "task_id", Value: result.TaskID},
					logger.Field{Key: "duration", Value: result.Duration.String()})
				continue
			}
			a.logger.Debug("task completed",
				logger.Field{Key: "task_id", Value: result.TaskID},
				logger.Field{Key: "output", Value: result.Output})
		}
	}
}

// Bus exposes the event bus for SSE subscribers.
func (a *App) Bus() *bus.Bus { return a.bus }

// Store exposes the output tree for the query API.
func (a *App) Store() *storage.Store { return a.store }

// Analyzer exposes topic matching for the query API.
func (a *App) Analyzer() *analyzer.Analyzer { return a.analyzer }

// Metrics exposes the metric recorders.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Registry exposes the prometheus registry for the /metrics endpoint.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Config returns the effective configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Location returns the configured timezone.
func (a *App) Location() *time.Location { return a.location }

// Status is a point-in-time snapshot for the status surfaces.
type Status struct {
	Version      string              `json:"version"`
	Uptime       string              `json:"uptime"`
	Mode         string              `json:"report_mode"`
	Schedule     string              `json:"schedule"`
	ScheduleDesc string              `json:"schedule_desc"`
	Timezone     string              `json:"timezone"`
	NextRun      time.Time           `json:"next_run,omitzero"`
	LastRun      time.Time           `json:"last_run,omitzero"`
	Running      bool                `json:"running"`
	SkippedTicks int64               `json:"skipped_ticks"`
	Platforms    int                 `json:"platforms"`
	WordGroups   int                 `json:"word_groups"`
	PushChannels []string            `json:"push_channels"`
	Subscribers  int                 `json:"sse_subscribers"`
	Pool         workers.PoolMetrics `json:"pool"`
	Storage      storage.Stats       `json:"storage"`
}

// Status assembles the current snapshot.
func (a *App) Status() Status {
	stats, err := a.store.Stats()
	if err != nil {
		a.logger.Error("failed to read storage stats", err)
	}

	return Status{
		Version:      version.Short(),
		Uptime:       time.Since(a.startedAt).Round(time.Second).String(),
		Mode:         a.cfg.Report.Mode,
		Schedule:     a.cfg.Schedule,
		ScheduleDesc: cron.Describe(a.cfg.Schedule),
		Timezone:     a.cfg.Timezone,
		NextRun:      a.scheduler.NextRun(),
		LastRun:      a.scheduler.LastRun(),
		Running:      a.pipeline.Running(),
		SkippedTicks: a.scheduler.Skipped(),
		Platforms:    len(a.cfg.Crawler.Platforms),
		WordGroups:   a.analyzer.GroupCount(),
		PushChannels: a.dispatcher.Channels(),
		Subscribers:  a.bus.SubscriberCount(),
		Pool:         a.pool.Metrics(),
		Storage:      stats,
	}
}
