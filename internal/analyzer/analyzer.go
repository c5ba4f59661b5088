package analyzer

import (
	"sort"

	"github.com/trendradar/trendradar/internal/crawler"
)

// MatchedItem is a news item attributed to a word group.
type MatchedItem struct {
	Platform string `json:"platform"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Rank     int    `json:"rank"`
}

// Topic is one word group with the items that matched it.
type Topic struct {
	Label string        `json:"label"`
	Count int           `json:"count"`
	Items []MatchedItem `json:"items"`
}

// Analyzer applies word groups to crawl batches.
type Analyzer struct {
	groups []WordGroup
}

// New builds an analyzer over the given word groups.
func New(groups []WordGroup) *Analyzer {
	return &Analyzer{groups: groups}
}

// HasGroups reports whether any word groups are configured.
func (a *Analyzer) HasGroups() bool { return len(a.groups) > 0 }

// GroupCount returns the number of configured word groups.
func (a *Analyzer) GroupCount() int { return len(a.groups) }

// MatchBatch matches every item of the batch against the word groups and
// returns topics ordered by hit count. With no groups configured the
// result is empty.
func (a *Analyzer) MatchBatch(batch *crawler.Batch) []Topic {
	return a.match([]*crawler.Batch{batch})
}

// MatchBatches aggregates topics across several batches, deduplicating
// repeated titles per platform so a story counted at 09:00 is not
// counted again at 09:30.
func (a *Analyzer) MatchBatches(batches []*crawler.Batch) []Topic {
	return a.match(batches)
}

func (a *Analyzer) match(batches []*crawler.Batch) []Topic {
	if len(a.groups) == 0 {
		return nil
	}

	topics := make([]Topic, len(a.groups))
	for i, g := range a.groups {
		topics[i] = Topic{Label: g.Label}
	}

	type seenKey struct{ platform, title string }
	seen := make(map[seenKey]bool)

	for _, batch := range batches {
		if batch == nil {
			continue
		}
		for _, platform := range batch.Platforms {
			for _, item := range platform.Items {
				key := seenKey{platform.ID, item.Title}
				if seen[key] {
					continue
				}
				seen[key] = true

				normalized := Normalize(item.Title)
				for i, g := range a.groups {
					if !g.Matches(normalized) {
						continue
					}
					topics[i].Count++
					topics[i].Items = append(topics[i].Items, MatchedItem{
						Platform: platform.ID,
						Title:    item.Title,
						URL:      item.URL,
						Rank:     item.Rank,
					})
				}
			}
		}
	}

	matched := topics[:0]
	for _, t := range topics {
		if t.Count > 0 {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Count > matched[j].Count
	})
	return matched
}

// TopN returns at most n topics from an ordered topic list.
func TopN(topics []Topic, n int) []Topic {
	if n <= 0 || n >= len(topics) {
		return topics
	}
	return topics[:n]
}
