package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/retry"
)

// maxConcurrentFetches bounds parallel platform requests in one run.
const maxConcurrentFetches = 4

// Crawler fetches hot lists for the configured platforms.
type Crawler struct {
	cfg    config.CrawlerConfig
	logger *logger.Logger
	client *http.Client
	retry  retry.Config
}

// New builds a crawler from the crawler configuration section.
func New(cfg config.CrawlerConfig, log *logger.Logger) (*Crawler, error) {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Crawler{
		cfg:    cfg,
		logger: log,
		client: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: transport,
		},
		retry: retry.Config{MaxAttempts: 5, Interval: 2 * time.Second},
	}, nil
}

// Platforms returns the configured platforms, optionally filtered to the
// given IDs. Unknown IDs are reported as an error.
func (c *Crawler) Platforms(ids []string) ([]config.Platform, error) {
	if len(ids) == 0 {
		return c.cfg.Platforms, nil
	}

	byID := make(map[string]config.Platform, len(c.cfg.Platforms))
	for _, p := range c.cfg.Platforms {
		byID[p.ID] = p
	}

	out := make([]config.Platform, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown platform: %s", id)
		}
		out = append(out, p)
	}
	return out, nil
}

// Crawl fetches the requested platforms concurrently and assembles a
// batch. A platform failure never fails the batch; it is recorded in
// Batch.Failed and in the platform's Error field.
func (c *Crawler) Crawl(ctx context.Context, ids []string) (*Batch, error) {
	platforms, err := c.Platforms(ids)
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("no platforms configured")
	}

	batch := &Batch{
		ID:        uuid.NewString(),
		CrawledAt: time.Now(),
		Platforms: make([]PlatformResult, len(platforms)),
	}

	sem := make(chan struct{}, maxConcurrentFetches)
	var wg sync.WaitGroup

	for i, platform := range platforms {
		wg.Add(1)
		go func(i int, platform config.Platform) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batch.Platforms[i] = c.fetchPlatform(ctx, platform)
		}(i, platform)
	}
	wg.Wait()

	for _, result := range batch.Platforms {
		if result.Error != "" {
			batch.Failed = append(batch.Failed, result.ID)
		}
	}
	sort.Strings(batch.Failed)

	return batch, nil
}

// fetchPlatform fetches one platform with retries.
func (c *Crawler) fetchPlatform(ctx context.Context, platform config.Platform) PlatformResult {
	result := PlatformResult{
		ID:        platform.ID,
		Name:      platform.Name,
		FetchedAt: time.Now(),
	}

	var items []NewsItem
	err := retry.Do(ctx, func() error {
		var fetchErr error
		switch platform.Source {
		case "html":
			items, fetchErr = c.fetchHTML(ctx, platform)
		default:
			items, fetchErr = c.fetchAPI(ctx, platform)
		}
		return fetchErr
	}, c.retry)

	if err != nil {
		c.logger.ErrorCtx(ctx, "platform fetch failed", err,
			logger.Field{Key: "platform", Value: platform.ID})
		result.Error = err.Error()
		return result
	}

	if platform.Limit > 0 && len(items) > platform.Limit {
		items = items[:platform.Limit]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	result.Items = items

	c.logger.DebugCtx(ctx, "platform fetched",
		logger.Field{Key: "platform", Value: platform.ID},
		logger.Field{Key: "items", Value: len(items)})

	return result
}

// get issues one HTTP GET and hands the open response to the caller.
func (c *Crawler) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}
