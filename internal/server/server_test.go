package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendradar/trendradar/internal/app"
	"github.com/trendradar/trendradar/internal/bus"
	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/crawler"
	"github.com/trendradar/trendradar/internal/logger"
)

const apiBody = `{
	"status": "success",
	"items": [
		{"title": "国产芯片量产提速", "url": "https://n.example/1"},
		{"title": "股市创新高"}
	]
}`

func newTestServer(t *testing.T, seed bool) *Server {
	t.Helper()

	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apiBody))
	}))
	t.Cleanup(platform.Close)

	dir := t.TempDir()
	words := filepath.Join(dir, "frequency_words.txt")
	require.NoError(t, os.WriteFile(words, []byte("芯片\n"), 0o644))

	cfg := config.Default()
	cfg.Timezone = "Asia/Shanghai"
	cfg.Report.Mode = "current"
	cfg.Paths.Output = filepath.Join(dir, "output")
	cfg.Paths.FrequencyWords = words
	cfg.Crawler.Platforms = []config.Platform{{ID: "zhihu", Name: "Zhihu", URL: platform.URL}}

	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	application, err := app.New(cfg, log)
	require.NoError(t, err)

	if seed {
		_, err := application.RunOnce(context.Background())
		require.NoError(t, err)
	}

	return New(cfg.Server, application, log)
}

func doJSON(t *testing.T, s *Server, method, target string, want int) map[string]any {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, false)
	body := doJSON(t, s, http.MethodGet, "/healthz", http.StatusOK)
	assert.Equal(t, "ok", body["status"])
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	body := doJSON(t, s, http.MethodGet, "/api/status", http.StatusOK)
	assert.Equal(t, "*/30 * * * *", body["schedule"])
	assert.Equal(t, "Runs every 30 minutes", body["schedule_desc"])
	assert.Equal(t, "Asia/Shanghai", body["timezone"])
}

func TestLatest_Empty(t *testing.T) {
	s := newTestServer(t, false)
	doJSON(t, s, http.MethodGet, "/api/news/latest", http.StatusNotFound)
}

func TestLatest_AfterCrawl(t *testing.T) {
	s := newTestServer(t, true)
	body := doJSON(t, s, http.MethodGet, "/api/news/latest", http.StatusOK)
	platforms := body["platforms"].([]any)
	require.Len(t, platforms, 1)

	// Per-platform item cap.
	body = doJSON(t, s, http.MethodGet, "/api/news/latest?limit=1", http.StatusOK)
	items := body["platforms"].([]any)[0].(map[string]any)["items"].([]any)
	assert.Len(t, items, 1)

	// Platform filter that matches nothing.
	body = doJSON(t, s, http.MethodGet, "/api/news/latest?platforms=weibo", http.StatusOK)
	assert.Empty(t, body["platforms"])

	doJSON(t, s, http.MethodGet, "/api/news/latest?limit=-2", http.StatusBadRequest)
}

func TestNewsByDate(t *testing.T) {
	s := newTestServer(t, true)

	doJSON(t, s, http.MethodGet, "/api/news", http.StatusBadRequest)
	doJSON(t, s, http.MethodGet, "/api/news?date=bogus", http.StatusBadRequest)

	date := time.Now().In(s.app.Location()).Format("2006-01-02")
	body := doJSON(t, s, http.MethodGet, "/api/news?date="+date, http.StatusOK)
	assert.Equal(t, float64(1), body["count"])
}

func TestTopics(t *testing.T) {
	s := newTestServer(t, true)

	body := doJSON(t, s, http.MethodGet, "/api/topics", http.StatusOK)
	topics := body["topics"].([]any)
	require.Len(t, topics, 1)
	topic := topics[0].(map[string]any)
	assert.Equal(t, "芯片", topic["label"])

	daily := doJSON(t, s, http.MethodGet, "/api/topics?mode=daily", http.StatusOK)
	require.Len(t, daily["topics"].([]any), 1)

	doJSON(t, s, http.MethodGet, "/api/topics?top_n=zero", http.StatusBadRequest)
	doJSON(t, s, http.MethodGet, "/api/topics?mode=weekly", http.StatusBadRequest)
}

func TestSimilar(t *testing.T) {
	s := newTestServer(t, true)

	doJSON(t, s, http.MethodGet, "/api/news/similar", http.StatusBadRequest)

	body := doJSON(t, s, http.MethodGet, "/api/news/similar?q=国产芯片量产", http.StatusOK)
	matches := body["matches"].([]any)
	require.NotEmpty(t, matches)
	first := matches[0].(map[string]any)
	assert.Equal(t, "国产芯片量产提速", first["title"])
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, true)

	doJSON(t, s, http.MethodGet, "/api/news/search", http.StatusBadRequest)
	doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&mode=regex", http.StatusBadRequest)
	doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&limit=zero", http.StatusBadRequest)
	doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&date=bogus", http.StatusBadRequest)

	// An older day so the walk spans stored history.
	yesterday := time.Now().In(s.app.Location()).AddDate(0, 0, -1)
	old := &crawler.Batch{
		ID:        "old",
		CrawledAt: yesterday,
		Platforms: []crawler.PlatformResult{{
			ID:   "weibo",
			Name: "Weibo",
			Items: []crawler.NewsItem{
				{Title: "芯片出口创纪录", Rank: 1},
				{Title: "周末天气预报", Rank: 2},
			},
		}},
	}
	_, err := s.app.Store().SaveBatch(old)
	require.NoError(t, err)

	body := doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片", http.StatusOK)
	results := body["results"].([]any)
	require.Len(t, results, 2)
	// Newest day first.
	first := results[0].(map[string]any)
	assert.Equal(t, "国产芯片量产提速", first["title"])
	assert.Equal(t, "zhihu", first["platform"])

	day := yesterday.Format("2006-01-02")
	body = doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&date="+day, http.StatusOK)
	results = body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "芯片出口创纪录", results[0].(map[string]any)["title"])

	body = doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&platforms=weibo", http.StatusOK)
	results = body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "weibo", results[0].(map[string]any)["platform"])

	body = doJSON(t, s, http.MethodGet, "/api/news/search?q=芯片&limit=1", http.StatusOK)
	assert.Len(t, body["results"].([]any), 1)
}

func TestSearch_Fuzzy(t *testing.T) {
	s := newTestServer(t, true)

	body := doJSON(t, s, http.MethodGet, "/api/news/search?q=国产芯片量产&mode=fuzzy", http.StatusOK)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "国产芯片量产提速", first["title"])
	assert.Greater(t, first["score"].(float64), 0.25)
}

func TestTriggerCrawl(t *testing.T) {
	s := newTestServer(t, false)
	body := doJSON(t, s, http.MethodPost, "/api/crawl", http.StatusAccepted)
	assert.Equal(t, "queued", body["status"])
	assert.NotEmpty(t, body["task_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trendradar_crawls_total")
}

func TestStream_ReplayRing(t *testing.T) {
	s := newTestServer(t, false)

	var ids []string
	for i := 0; i < 70; i++ {
		e := bus.NewEvent(bus.EventCrawlCompleted, map[string]any{"n": i})
		ids = append(ids, e.ID)
		s.stream.broadcast(e)
	}

	// Ring keeps the newest SSEReplay events.
	all := s.stream.replay("")
	assert.Len(t, all, s.cfg.SSEReplay)

	// Replay after a known ID returns only newer events.
	after := s.stream.replay(ids[67])
	require.Len(t, after, 2)
	assert.Equal(t, ids[68], after[0].ID)

	// Unknown ID falls back to the full ring.
	unknown := s.stream.replay("missing")
	assert.Len(t, unknown, s.cfg.SSEReplay)
}

func TestStream_RegisterDeliversEachEventOnce(t *testing.T) {
	s := newTestServer(t, false)

	before := bus.NewEvent(bus.EventCrawlStarted, map[string]any{"trigger": "schedule"})
	s.stream.broadcast(before)

	ch, backlog := s.stream.register("")
	defer s.stream.unsubscribe(ch)

	require.Len(t, backlog, 1)
	assert.Equal(t, before.ID, backlog[0].ID)

	// An event broadcast after registration must arrive on the live
	// channel only, never in the already-taken backlog snapshot.
	after := bus.NewEvent(bus.EventCrawlCompleted, map[string]any{"items": 1})
	s.stream.broadcast(after)

	select {
	case e := <-ch:
		assert.Equal(t, after.ID, e.ID)
	default:
		t.Fatal("live event not delivered")
	}
	select {
	case e := <-ch:
		t.Fatalf("duplicate event delivered: %s", e.ID)
	default:
	}
}

func TestHandleEvents_StreamsAndReplays(t *testing.T) {
	s := newTestServer(t, false)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	seeded := bus.NewEvent(bus.EventCrawlStarted, map[string]any{"trigger": "test"})
	s.stream.broadcast(seeded)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the client to register, then push a live event.
	require.Eventually(t, func() bool {
		s.stream.mu.Lock()
		defer s.stream.mu.Unlock()
		return len(s.stream.clients) == 1
	}, time.Second, 10*time.Millisecond)

	live := bus.NewEvent(bus.EventCrawlCompleted, map[string]any{"items": 2})
	s.stream.broadcast(live)

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		out.WriteString(scanner.Text())
		out.WriteString("\n")
		if strings.Contains(out.String(), "id: "+live.ID) {
			break
		}
	}

	text := out.String()
	assert.Contains(t, text, "id: "+seeded.ID)
	assert.Contains(t, text, "event: crawl.started")
	assert.Contains(t, text, ": connected")
	assert.Contains(t, text, "event: crawl.completed")
}
