// Package crawler fetches hot-list snapshots from the configured news
// platforms and assembles them into batches.
package crawler

import "time"

// NewsItem is one entry of a platform hot list.
type NewsItem struct {
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	MobileURL string `json:"mobile_url,omitempty"`
	Rank      int    `json:"rank"`
	Extra     string `json:"extra,omitempty"` // hotness label as reported by the platform
	Desc      string `json:"desc,omitempty"`  // optional description, may be an HTML fragment
}

// PlatformResult is the outcome of fetching one platform.
type PlatformResult struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Items     []NewsItem `json:"items"`
	FetchedAt time.Time  `json:"fetched_at"`
	Error     string     `json:"error,omitempty"`
}

// Batch is one crawl run across all requested platforms.
type Batch struct {
	ID        string           `json:"id"`
	CrawledAt time.Time        `json:"crawled_at"`
	Platforms []PlatformResult `json:"platforms"`
	Failed    []string         `json:"failed,omitempty"`
}

// TotalItems counts the news items across all platforms in the batch.
func (b *Batch) TotalItems() int {
	total := 0
	for _, p := range b.Platforms {
		total += len(p.Items)
	}
	return total
}

// Titles returns every title in the batch, platform order preserved.
func (b *Batch) Titles() []string {
	titles := make([]string, 0, b.TotalItems())
	for _, p := range b.Platforms {
		for _, item := range p.Items {
			titles = append(titles, item.Title)
		}
	}
	return titles
}
