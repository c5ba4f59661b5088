package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/logger"
)

func createTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func newTestCrawler(t *testing.T, platforms []config.Platform) *Crawler {
	t.Helper()
	c, err := New(config.CrawlerConfig{
		TimeoutSeconds: 5,
		UserAgent:      "test-agent",
		Platforms:      platforms,
	}, createTestLogger(t))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// Tests should not wait out real backoff.
	c.retry.Interval = time.Millisecond
	return c
}

const apiBody = `{
	"status": "success",
	"items": [
		{"title": "First headline", "url": "https://n.example/1", "extra": {"info": "1.2m hot"}},
		{"title": "Second headline", "url": "https://n.example/2", "mobileUrl": "https://m.example/2"},
		{"title": ""},
		{"title": "Third headline"}
	]
}`

func TestCrawl_APIPlatform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(apiBody))
	}))
	defer srv.Close()

	c := newTestCrawler(t, []config.Platform{{ID: "zhihu", Name: "Zhihu", URL: srv.URL}})

	batch, err := c.Crawl(context.Background(), nil)
	if err != nil {
		t.Fatalf("Crawl() failed: %v", err)
	}

	if batch.ID == "" {
		t.Error("batch ID should be set")
	}
	if len(batch.Failed) != 0 {
		t.Errorf("unexpected failures: %v", batch.Failed)
	}
	if batch.TotalItems() != 3 {
		t.Fatalf("TotalItems() = %d, want 3 (empty title skipped)", batch.TotalItems())
	}

	items := batch.Platforms[0].Items
	if items[0].Rank != 1 || items[2].Rank != 3 {
		t.Errorf("ranks not assigned: %+v", items)
	}
	if items[0].Extra != "1.2m hot" {
		t.Errorf("extra = %q", items[0].Extra)
	}
	if items[1].MobileURL != "https://m.example/2" {
		t.Errorf("mobile url = %q", items[1].MobileURL)
	}
}

func TestCrawl_HTMLPlatform(t *testing.T) {
	page := `<html><body><ul>
		<li class="hot-item"><a class="link" href="/story/1"><span class="title">Alpha story</span></a></li>
		<li class="hot-item"><a class="link" href="https://other.example/2"><span class="title">Beta story</span></a></li>
	</ul></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c := newTestCrawler(t, []config.Platform{{
		ID: "board", Name: "Board", Source: "html", URL: srv.URL,
		ItemSelector: "li.hot-item", TitleSelector: ".title", LinkSelector: "a.link",
	}})

	batch, err := c.Crawl(context.Background(), nil)
	if err != nil {
		t.Fatalf("Crawl() failed: %v", err)
	}

	items := batch.Platforms[0].Items
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Alpha story" {
		t.Errorf("title = %q", items[0].Title)
	}
	if items[0].URL != srv.URL+"/story/1" {
		t.Errorf("relative link not resolved: %q", items[0].URL)
	}
	if items[1].URL != "https://other.example/2" {
		t.Errorf("absolute link rewritten: %q", items[1].URL)
	}
}

func TestCrawl_FailedPlatformDoesNotFailBatch(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apiBody))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer bad.Close()

	c := newTestCrawler(t, []config.Platform{
		{ID: "good", Name: "Good", URL: good.URL},
		{ID: "bad", Name: "Bad", URL: bad.URL},
	})

	batch, err := c.Crawl(context.Background(), nil)
	if err != nil {
		t.Fatalf("Crawl() failed: %v", err)
	}

	if len(batch.Failed) != 1 || batch.Failed[0] != "bad" {
		t.Errorf("Failed = %v, want [bad]", batch.Failed)
	}
	if batch.TotalItems() != 3 {
		t.Errorf("good platform items lost, TotalItems() = %d", batch.TotalItems())
	}
}

func TestCrawl_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(apiBody))
	}))
	defer srv.Close()

	c := newTestCrawler(t, []config.Platform{{ID: "flaky", Name: "Flaky", URL: srv.URL}})

	batch, err := c.Crawl(context.Background(), nil)
	if err != nil {
		t.Fatalf("Crawl() failed: %v", err)
	}
	if len(batch.Failed) != 0 {
		t.Errorf("flaky platform should recover, Failed = %v", batch.Failed)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestCrawl_UnknownPlatform(t *testing.T) {
	c := newTestCrawler(t, []config.Platform{{ID: "zhihu", URL: "https://x.example"}})
	if _, err := c.Crawl(context.Background(), []string{"weibo"}); err == nil {
		t.Error("expected error for unknown platform id")
	}
}

func TestCrawl_PlatformLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apiBody))
	}))
	defer srv.Close()

	c := newTestCrawler(t, []config.Platform{{ID: "zhihu", URL: srv.URL, Limit: 2}})

	batch, err := c.Crawl(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(batch.Platforms[0].Items); got != 2 {
		t.Errorf("limit not applied, got %d items", got)
	}
}
