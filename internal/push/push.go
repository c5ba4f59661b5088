// Package push fans a crawl summary out to the configured notification
// channels. Channels are enabled by the presence of their credentials;
// a channel failure is logged and counted but never fails the pipeline.
package push

import (
	"context"
	"time"

	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/metrics"
	"github.com/trendradar/trendradar/internal/report"
	"github.com/trendradar/trendradar/internal/retry"
)

// Notifier delivers one message chunk to a channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Dispatcher splits messages and delivers them to every enabled channel.
type Dispatcher struct {
	notifiers []Notifier
	maxRunes  int
	retry     retry.Config
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// New builds a dispatcher from the push configuration. Channels without
// credentials are skipped.
func New(cfg config.PushConfig, log *logger.Logger, m *metrics.Metrics) (*Dispatcher, error) {
	d := &Dispatcher{
		maxRunes: cfg.MaxMessageRunes,
		retry:    retry.Config{MaxAttempts: 3, Interval: time.Second},
		logger:   log,
		metrics:  m,
	}

	if cfg.FeishuWebhookURL != "" {
		d.notifiers = append(d.notifiers, newFeishu(cfg.FeishuWebhookURL))
	}
	if cfg.DingTalkWebhookURL != "" {
		d.notifiers = append(d.notifiers, newDingTalk(cfg.DingTalkWebhookURL))
	}
	if cfg.WeworkWebhookURL != "" {
		d.notifiers = append(d.notifiers, newWework(cfg.WeworkWebhookURL))
	}
	if cfg.TelegramBotToken != "" {
		tg, err := newTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		d.notifiers = append(d.notifiers, tg)
	}

	return d, nil
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool { return len(d.notifiers) > 0 }

// Channels returns the names of the enabled channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.notifiers))
	for i, n := range d.notifiers {
		names[i] = n.Name()
	}
	return names
}

// Dispatch sends the message to every enabled channel, splitting long
// messages into chunks. Returns the names of channels that failed.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) []string {
	chunks := report.SplitMessage(message, d.maxRunes)

	var failed []string
	for _, n := range d.notifiers {
		if err := d.sendAll(ctx, n, chunks); err != nil {
			d.logger.ErrorCtx(ctx, "push delivery failed", err,
				logger.Field{Key: "channel", Value: n.Name()})
			d.metrics.RecordPush(n.Name(), "error")
			failed = append(failed, n.Name())
			continue
		}
		d.logger.InfoCtx(ctx, "push delivered",
			logger.Field{Key: "channel", Value: n.Name()},
			logger.Field{Key: "chunks", Value: len(chunks)})
		d.metrics.RecordPush(n.Name(), "ok")
	}
	return failed
}

func (d *Dispatcher) sendAll(ctx context.Context, n Notifier, chunks []string) error {
	for _, chunk := range chunks {
		err := retry.Do(ctx, func() error {
			return n.Send(ctx, chunk)
		}, d.retry)
		if err != nil {
			return err
		}
	}
	return nil
}
