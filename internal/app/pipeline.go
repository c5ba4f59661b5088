package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/bus"
	"github.com/trendradar/trendradar/internal/crawler"
	"github.com/trendradar/trendradar/internal/logger"
)

// ErrRunInProgress is returned when a pipeline run is requested while
// another one is still in flight.
var ErrRunInProgress = errors.New("pipeline run already in progress")

type pipelineState struct {
	running atomic.Bool
}

func (s *pipelineState) Running() bool { return s.running.Load() }

// PipelineResult summarizes one crawl-to-push cycle.
type PipelineResult struct {
	BatchID    string           `json:"batch_id"`
	Trigger    string           `json:"trigger"`
	Items      int              `json:"items"`
	Failed     []string         `json:"failed,omitempty"`
	Topics     []analyzer.Topic `json:"topics,omitempty"`
	Snapshot   string           `json:"snapshot,omitempty"`
	PushFailed []string         `json:"push_failed,omitempty"`
	Duration   time.Duration    `json:"duration"`
}

// RunPipeline executes one full cycle: crawl, analyze, store, render,
// push. Only one run may be in flight at a time.
func (a *App) RunPipeline(ctx context.Context, trigger string) (*PipelineResult, error) {
	if !a.pipeline.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer a.pipeline.running.Store(false)

	started := time.Now()
	a.publish(bus.EventCrawlStarted, map[string]any{"trigger": trigger})
	a.logger.InfoCtx(ctx, "📡 pipeline run started",
		logger.Field{Key: "trigger", Value: trigger})

	batch, err := a.crawler.Crawl(ctx, nil)
	if err != nil {
		a.metrics.RecordCrawl("error", time.Since(started))
		a.publish(bus.EventCrawlCompleted, map[string]any{
			"trigger": trigger,
			"error":   err.Error(),
		})
		return nil, err
	}

	for _, platform := range batch.Platforms {
		if platform.Error != "" {
			a.metrics.RecordPlatformFailure(platform.ID)
			a.publish(bus.EventPlatformFailed, map[string]any{
				"platform": platform.ID,
				"error":    platform.Error,
			})
			continue
		}
		a.metrics.RecordItems(platform.ID, len(platform.Items))
		a.publish(bus.EventPlatformFetched, map[string]any{
			"platform": platform.ID,
			"items":    len(platform.Items),
		})
	}

	topics := a.topicsFor(ctx, batch)

	result := &PipelineResult{
		BatchID: batch.ID,
		Trigger: trigger,
		Items:   batch.TotalItems(),
		Failed:  batch.Failed,
		Topics:  topics,
	}

	snapshot, err := a.store.SaveBatch(batch)
	if err != nil {
		a.logger.ErrorCtx(ctx, "failed to save batch snapshot", err)
	} else {
		result.Snapshot = snapshot
	}

	a.writeReports(ctx, batch, topics)
	result.PushFailed = a.pushSummary(ctx, batch, topics)

	if removed, err := a.store.Prune(time.Now(), a.cfg.Paths.KeepDays); err != nil {
		a.logger.ErrorCtx(ctx, "output prune failed", err)
	} else if removed > 0 {
		a.logger.InfoCtx(ctx, "old output pruned",
			logger.Field{Key: "days_removed", Value: removed})
	}

	result.Duration = time.Since(started)
	a.metrics.RecordCrawl("ok", result.Duration)
	a.publish(bus.EventCrawlCompleted, map[string]any{
		"trigger":  trigger,
		"batch_id": batch.ID,
		"items":    result.Items,
		"failed":   batch.Failed,
		"duration": result.Duration.String(),
	})
	a.logger.InfoCtx(ctx, "✅ pipeline run completed",
		logger.Field{Key: "batch_id", Value: batch.ID},
		logger.Field{Key: "items", Value: result.Items},
		logger.Field{Key: "failed", Value: len(batch.Failed)},
		logger.Field{Key: "duration", Value: result.Duration.String()})

	return result, nil
}

// topicsFor matches the batch in the configured report mode. Daily mode
// aggregates every snapshot of the current day plus the new batch.
func (a *App) topicsFor(ctx context.Context, batch *crawler.Batch) []analyzer.Topic {
	if !a.analyzer.HasGroups() {
		return nil
	}

	var topics []analyzer.Topic
	if a.cfg.Report.Mode == "daily" {
		day := batch.CrawledAt.In(a.location).Format("2006-01-02")
		earlier, err := a.store.LoadDay(day)
		if err != nil {
			a.logger.ErrorCtx(ctx, "failed to load day batches, falling back to current batch", err)
			earlier = nil
		}
		topics = a.analyzer.MatchBatches(append(earlier, batch))
	} else {
		topics = a.analyzer.MatchBatch(batch)
	}

	return analyzer.TopN(topics, a.cfg.Report.TopN)
}

func (a *App) writeReports(ctx context.Context, batch *crawler.Batch, topics []analyzer.Topic) {
	text := a.renderer.Text(batch, topics)
	if path, err := a.store.SaveReport(batch.CrawledAt, "txt", ".txt", []byte(text)); err != nil {
		a.logger.ErrorCtx(ctx, "failed to save text report", err)
	} else {
		a.publish(bus.EventReportGenerated, map[string]any{"format": "txt", "path": path})
	}

	page, err := a.renderer.HTML(batch, topics)
	if err != nil {
		a.logger.ErrorCtx(ctx, "failed to render html report", err)
		return
	}
	if path, err := a.store.SaveReport(batch.CrawledAt, "html", ".html", page); err != nil {
		a.logger.ErrorCtx(ctx, "failed to save html report", err)
	} else {
		a.publish(bus.EventReportGenerated, map[string]any{"format": "html", "path": path})
	}
}

func (a *App) pushSummary(ctx context.Context, batch *crawler.Batch, topics []analyzer.Topic) []string {
	if !a.dispatcher.Enabled() {
		return nil
	}

	message := a.renderer.Summary(batch, topics, a.cfg.Report.TopN)
	failed := a.dispatcher.Dispatch(ctx, message)

	for _, channel := range a.dispatcher.Channels() {
		event := bus.EventPushSent
		for _, f := range failed {
			if f == channel {
				event = bus.EventPushFailed
				break
			}
		}
		a.publish(event, map[string]any{"channel": channel})
	}
	return failed
}

// publish drops events when the bus is saturated or stopped; the
// pipeline never blocks on observers.
func (a *App) publish(eventType bus.EventType, data map[string]any) {
	if err := a.bus.Publish(bus.NewEvent(eventType, data)); err != nil {
		a.logger.Debug("event not published",
			logger.Field{Key: "type", Value: string(eventType)},
			logger.Field{Key: "error", Value: err.Error()})
	}
}
