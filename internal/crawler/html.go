package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trendradar/trendradar/internal/config"
)

// fetchHTML scrapes a platform page using the configured CSS selectors.
func (c *Crawler) fetchHTML(ctx context.Context, platform config.Platform) ([]NewsItem, error) {
	resp, err := c.get(ctx, platform.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s page: %w", platform.ID, err)
	}

	var items []NewsItem
	doc.Find(platform.ItemSelector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(platform.TitleSelector).First().Text())
		if title == "" {
			return
		}

		item := NewsItem{Title: title}
		if platform.LinkSelector != "" {
			if href, ok := sel.Find(platform.LinkSelector).First().Attr("href"); ok {
				item.URL = resolveLink(platform.URL, href)
			}
		} else if href, ok := sel.Attr("href"); ok {
			item.URL = resolveLink(platform.URL, href)
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("no items matched selector %q on %s", platform.ItemSelector, platform.ID)
	}
	return items, nil
}

// resolveLink turns a relative href into an absolute URL against the
// platform page.
func resolveLink(pageURL, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		if strings.HasPrefix(pageURL, "https://") {
			return "https:" + href
		}
		return "http:" + href
	}

	idx := strings.Index(pageURL, "://")
	if idx == -1 {
		return href
	}
	hostEnd := strings.Index(pageURL[idx+3:], "/")
	base := pageURL
	if hostEnd != -1 {
		base = pageURL[:idx+3+hostEnd]
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
