package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/trendradar/trendradar/internal/config"
)

// apiResponse is the hot-list JSON shape served by aggregate APIs.
type apiResponse struct {
	Status string    `json:"status"`
	Items  []apiItem `json:"items"`
}

type apiItem struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	MobileURL string `json:"mobileUrl"`
	Desc      string `json:"desc"`
	Extra     struct {
		Info string `json:"info"`
	} `json:"extra"`
}

// fetchAPI fetches a JSON hot-list endpoint.
func (c *Crawler) fetchAPI(ctx context.Context, platform config.Platform) ([]NewsItem, error) {
	resp, err := c.get(ctx, platform.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", platform.ID, err)
	}
	if parsed.Status != "" && parsed.Status != "success" && parsed.Status != "cache" {
		return nil, fmt.Errorf("platform %s reported status %q", platform.ID, parsed.Status)
	}

	items := make([]NewsItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.Title == "" {
			continue
		}
		items = append(items, NewsItem{
			Title:     it.Title,
			URL:       it.URL,
			MobileURL: it.MobileURL,
			Desc:      it.Desc,
			Extra:     it.Extra.Info,
		})
	}
	return items, nil
}
