package analyzer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendradar/trendradar/internal/crawler"
)

const wordsFixture = `# tech keywords
AI
人工智能
!招聘

芯片
+国产

股市
`

func parseFixture(t *testing.T, text string) []WordGroup {
	t.Helper()
	groups, err := ParseWordGroups(bufio.NewScanner(strings.NewReader(text)))
	require.NoError(t, err)
	return groups
}

func TestParseWordGroups(t *testing.T) {
	groups := parseFixture(t, wordsFixture)
	require.Len(t, groups, 3)

	assert.Equal(t, "ai", groups[0].Label)
	assert.Equal(t, []string{"ai", "人工智能"}, groups[0].Words)
	assert.Equal(t, []string{"招聘"}, groups[0].Filtered)

	assert.Equal(t, []string{"国产"}, groups[1].Required)
	assert.Equal(t, "股市", groups[2].Label)
}

func TestLoadWordGroups_MissingFile(t *testing.T) {
	groups, err := LoadWordGroups(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestLoadWordGroups_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frequency_words.txt")
	require.NoError(t, os.WriteFile(path, []byte(wordsFixture), 0o644))

	groups, err := LoadWordGroups(path)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestWordGroupMatches(t *testing.T) {
	groups := parseFixture(t, wordsFixture)

	tests := []struct {
		name  string
		group int
		title string
		want  bool
	}{
		{"any word", 0, "openai发布新模型", true},
		{"full width folded", 0, "ＡＩ浪潮继续", true},
		{"filter word blocks", 0, "AI岗位招聘火爆", false},
		{"required word present", 1, "国产芯片新突破", true},
		{"required word missing", 1, "芯片市场回暖", false},
		{"no match", 2, "今天天气不错", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, groups[tt.group].Matches(Normalize(tt.title)))
		})
	}
}

func testBatch(titlesByPlatform map[string][]string) *crawler.Batch {
	batch := &crawler.Batch{ID: "b1", CrawledAt: time.Now()}
	for id, titles := range titlesByPlatform {
		result := crawler.PlatformResult{ID: id, Name: id}
		for i, title := range titles {
			result.Items = append(result.Items, crawler.NewsItem{Title: title, Rank: i + 1})
		}
		batch.Platforms = append(batch.Platforms, result)
	}
	return batch
}

func TestMatchBatch(t *testing.T) {
	a := New(parseFixture(t, wordsFixture))

	batch := testBatch(map[string][]string{
		"zhihu": {"AI重塑搜索", "股市大涨", "无关新闻"},
		"weibo": {"人工智能进课堂", "国产芯片量产"},
	})

	topics := a.MatchBatch(batch)
	require.Len(t, topics, 3)

	// Ordered by hit count, AI group first with two hits.
	assert.Equal(t, "ai", topics[0].Label)
	assert.Equal(t, 2, topics[0].Count)
	assert.Len(t, topics[0].Items, 2)
}

func TestMatchBatches_DeduplicatesTitles(t *testing.T) {
	a := New(parseFixture(t, wordsFixture))

	first := testBatch(map[string][]string{"zhihu": {"AI重塑搜索"}})
	second := testBatch(map[string][]string{"zhihu": {"AI重塑搜索", "AI芯片竞赛"}})

	topics := a.MatchBatches([]*crawler.Batch{first, second})
	require.Len(t, topics, 1)
	assert.Equal(t, 2, topics[0].Count)
}

func TestTopN(t *testing.T) {
	topics := []Topic{{Label: "a"}, {Label: "b"}, {Label: "c"}}
	assert.Len(t, TopN(topics, 2), 2)
	assert.Len(t, TopN(topics, 0), 3)
	assert.Len(t, TopN(topics, 10), 3)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("国产芯片量产", "国产芯片量产"))
	assert.Greater(t, Similarity("国产芯片量产提速", "国产芯片量产"), 0.5)
	assert.Less(t, Similarity("股市大涨", "天气预报"), 0.1)
	assert.Zero(t, Similarity("", "abc"))
}

func TestFindSimilar(t *testing.T) {
	batch := testBatch(map[string][]string{
		"zhihu": {"国产芯片量产提速", "股市震荡走低"},
		"weibo": {"芯片量产新进展"},
	})

	got := FindSimilar(batch, "国产芯片量产", 0.3, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "国产芯片量产提速", got[0].Title)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}
