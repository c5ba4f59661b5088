package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/crawler"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return NewRenderer(loc)
}

func testBatch() *crawler.Batch {
	return &crawler.Batch{
		ID:        "b1",
		CrawledAt: time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC),
		Platforms: []crawler.PlatformResult{
			{
				ID: "zhihu", Name: "Zhihu",
				Items: []crawler.NewsItem{
					{Title: "国产芯片量产", Rank: 1, Extra: "850万热度", URL: "https://z.example/1"},
					{Title: "AI新模型发布", Rank: 2, Desc: "<p>多家厂商 <b>同日</b> 发布</p>"},
				},
			},
			{ID: "weibo", Name: "Weibo", Error: "unexpected status 503"},
		},
		Failed: []string{"weibo"},
	}
}

func testTopics() []analyzer.Topic {
	return []analyzer.Topic{{
		Label: "芯片",
		Count: 1,
		Items: []analyzer.MatchedItem{{Platform: "zhihu", Title: "国产芯片量产", Rank: 1}},
	}}
}

func TestText(t *testing.T) {
	r := testRenderer(t)
	out := r.Text(testBatch(), testTopics())

	// 09:30 UTC renders as 17:30 in Asia/Shanghai.
	assert.Contains(t, out, "2026-08-30 17:30")
	assert.Contains(t, out, "== trending topics ==")
	assert.Contains(t, out, "1. 芯片 (1)")
	assert.Contains(t, out, "== Zhihu ==")
	assert.Contains(t, out, "(850万热度)")
	assert.Contains(t, out, "fetch failed: unexpected status 503")
	// HTML description converted, tags gone.
	assert.NotContains(t, out, "<p>")
	assert.Contains(t, out, "同日")
}

func TestPlainDesc(t *testing.T) {
	r := testRenderer(t)
	assert.Equal(t, "", r.PlainDesc(""))
	assert.Equal(t, "plain text", r.PlainDesc("  plain text  "))
	assert.Equal(t, "line one line two", r.PlainDesc("<p>line one</p><p>line two</p>"))
}

func TestSummary(t *testing.T) {
	r := testRenderer(t)

	out := r.Summary(testBatch(), testTopics(), 10)
	assert.Contains(t, out, "TrendRadar 08-30 17:30")
	assert.Contains(t, out, "1. 芯片 (1)")
	assert.Contains(t, out, "failed platforms: weibo")

	// Without topics, falls back to per-platform counts.
	out = r.Summary(testBatch(), nil, 10)
	assert.Contains(t, out, "Zhihu: 2 items")
	assert.Contains(t, out, "Weibo: fetch failed")
}

func TestHTML(t *testing.T) {
	r := testRenderer(t)
	out, err := r.HTML(testBatch(), testTopics())
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "TrendRadar 2026-08-30 17:30")
	assert.Contains(t, page, `<a href="https://z.example/1">国产芯片量产</a>`)
	assert.Contains(t, page, "fetch failed: unexpected status 503")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 100))
	assert.Equal(t, []string{"whole"}, SplitMessage("whole", 0))

	lines := strings.Repeat("0123456789\n", 5)
	chunks := SplitMessage(strings.TrimRight(lines, "\n"), 25)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 25)
	}
	assert.Equal(t, strings.TrimRight(lines, "\n"), strings.Join(chunks, "\n"))

	// A single oversized line is split hard.
	hard := SplitMessage(strings.Repeat("x", 30), 10)
	assert.Len(t, hard, 3)
}
