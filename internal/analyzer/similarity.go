package analyzer

import (
	"sort"

	"github.com/trendradar/trendradar/internal/crawler"
)

// Similarity scores two titles in [0, 1] with a Dice coefficient over
// rune bigrams. Bigrams work for CJK text, where word boundaries are
// not marked by spaces.
func Similarity(a, b string) float64 {
	ba := bigrams(Normalize(a))
	bb := bigrams(Normalize(b))
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	overlap := 0
	for gram, count := range ba {
		if other := bb[gram]; other > 0 {
			if other < count {
				overlap += other
			} else {
				overlap += count
			}
		}
	}

	totalA, totalB := 0, 0
	for _, c := range ba {
		totalA += c
	}
	for _, c := range bb {
		totalB += c
	}
	return 2 * float64(overlap) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		if len(runes) == 1 {
			return map[string]int{string(runes): 1}
		}
		return nil
	}
	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// SimilarTitle pairs a batch title with its similarity score.
type SimilarTitle struct {
	Platform string  `json:"platform"`
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Score    float64 `json:"score"`
}

// FindSimilar ranks the batch's titles by similarity to the query and
// returns those at or above threshold, best first, at most limit.
func FindSimilar(batch *crawler.Batch, query string, threshold float64, limit int) []SimilarTitle {
	if batch == nil {
		return nil
	}

	var out []SimilarTitle
	for _, platform := range batch.Platforms {
		for _, item := range platform.Items {
			score := Similarity(query, item.Title)
			if score < threshold {
				continue
			}
			out = append(out, SimilarTitle{
				Platform: platform.ID,
				Title:    item.Title,
				URL:      item.URL,
				Score:    score,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
