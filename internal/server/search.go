package server

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/trendradar/trendradar/internal/analyzer"
)

const (
	searchDefaultLimit   = 20
	searchFuzzyThreshold = 0.25
)

// searchHit is one matched title from the stored history.
type searchHit struct {
	Platform string  `json:"platform"`
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Rank     int     `json:"rank"`
	Date     string  `json:"date"`
	Score    float64 `json:"score,omitempty"`
}

// handleSearch looks ?q= up across stored snapshots, newest day first.
// ?mode=keyword (default) matches normalized substrings, ?mode=fuzzy
// ranks titles by similarity. ?date= restricts the walk to one day and
// ?platforms= filters by platform ID (comma separated).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "keyword"
	}
	if mode != "keyword" && mode != "fuzzy" {
		s.writeError(w, http.StatusBadRequest, "mode must be keyword or fuzzy")
		return
	}

	limit := searchDefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var want map[string]bool
	if ids := r.URL.Query().Get("platforms"); ids != "" {
		want = map[string]bool{}
		for _, id := range strings.Split(ids, ",") {
			want[strings.TrimSpace(id)] = true
		}
	}

	date := r.URL.Query().Get("date")
	var days []string
	if date != "" {
		days = []string{date}
	} else {
		all, err := s.app.Store().Days()
		if err != nil {
			s.logger.Error("failed to list output days", err)
			s.writeError(w, http.StatusInternalServerError, "failed to list output days")
			return
		}
		for i := len(all) - 1; i >= 0; i-- {
			days = append(days, all[i])
		}
	}

	needle := analyzer.Normalize(query)
	seen := map[string]bool{}
	hits := []searchHit{}

	for _, day := range days {
		batches, err := s.app.Store().LoadDay(day)
		if err != nil {
			if date != "" {
				s.writeError(w, http.StatusBadRequest, err.Error())
			} else {
				s.logger.Error("failed to load day batches", err)
				s.writeError(w, http.StatusInternalServerError, "failed to load day batches")
			}
			return
		}

		// Newest snapshot of the day wins for duplicate titles.
		for i := len(batches) - 1; i >= 0; i-- {
			for _, p := range batches[i].Platforms {
				if want != nil && !want[p.ID] {
					continue
				}
				for _, item := range p.Items {
					key := p.ID + "\x00" + item.Title
					if seen[key] {
						continue
					}

					var score float64
					switch mode {
					case "keyword":
						if !strings.Contains(analyzer.Normalize(item.Title), needle) {
							continue
						}
					case "fuzzy":
						score = analyzer.Similarity(query, item.Title)
						if score < searchFuzzyThreshold {
							continue
						}
					}

					seen[key] = true
					hits = append(hits, searchHit{
						Platform: p.ID,
						Title:    item.Title,
						URL:      item.URL,
						Rank:     item.Rank,
						Date:     day,
						Score:    score,
					})
				}
			}
		}

		// Keyword results come back newest first, so the cap can cut
		// the walk short. Fuzzy mode scans everything and sorts.
		if mode == "keyword" && len(hits) >= limit {
			break
		}
	}

	if mode == "fuzzy" {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"mode":    mode,
		"count":   len(hits),
		"results": hits,
	})
}
