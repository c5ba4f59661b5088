package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/trendradar/trendradar/internal/analyzer"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/workers"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"bus_started": s.app.Bus().IsStarted(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Status())
}

// handleLatest returns the most recent batch snapshot, optionally
// filtered to ?platforms= (comma separated IDs) and capped to ?limit=
// items per platform.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	batch, err := s.app.Store().LoadLatest()
	if err != nil {
		s.logger.Error("failed to load latest batch", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load latest batch")
		return
	}
	if batch == nil {
		s.writeError(w, http.StatusNotFound, "no batches crawled yet")
		return
	}

	if ids := r.URL.Query().Get("platforms"); ids != "" {
		want := map[string]bool{}
		for _, id := range strings.Split(ids, ",") {
			want[strings.TrimSpace(id)] = true
		}
		filtered := batch.Platforms[:0:0]
		for _, p := range batch.Platforms {
			if want[p.ID] {
				filtered = append(filtered, p)
			}
		}
		batch.Platforms = filtered
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		for i := range batch.Platforms {
			if len(batch.Platforms[i].Items) > limit {
				batch.Platforms[i].Items = batch.Platforms[i].Items[:limit]
			}
		}
	}

	s.writeJSON(w, http.StatusOK, batch)
}

// handleNewsByDate returns every snapshot of ?date=YYYY-MM-DD.
func (s *Server) handleNewsByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.writeError(w, http.StatusBadRequest, "date parameter is required (YYYY-MM-DD)")
		return
	}

	batches, err := s.app.Store().LoadDay(date)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"count":   len(batches),
		"batches": batches,
	})
}

// handleTopics returns trending topics. ?mode=daily aggregates every
// snapshot of the latest day; the default matches the latest batch
// alone. ?top_n= caps the list.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if !s.app.Analyzer().HasGroups() {
		s.writeError(w, http.StatusNotFound, "no word groups configured")
		return
	}

	batch, err := s.app.Store().LoadLatest()
	if err != nil {
		s.logger.Error("failed to load latest batch", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load latest batch")
		return
	}
	if batch == nil {
		s.writeError(w, http.StatusNotFound, "no batches crawled yet")
		return
	}

	topN := s.app.Config().Report.TopN
	if v := r.URL.Query().Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "top_n must be a positive integer")
			return
		}
		topN = n
	}

	var topics []analyzer.Topic
	mode := r.URL.Query().Get("mode")
	switch mode {
	case "", "current":
		topics = s.app.Analyzer().MatchBatch(batch)
	case "daily":
		day := batch.CrawledAt.In(s.app.Location()).Format("2006-01-02")
		batches, err := s.app.Store().LoadDay(day)
		if err != nil {
			s.logger.Error("failed to load day batches", err)
			s.writeError(w, http.StatusInternalServerError, "failed to load day batches")
			return
		}
		topics = s.app.Analyzer().MatchBatches(batches)
	default:
		s.writeError(w, http.StatusBadRequest, "mode must be current or daily")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"batch_id": batch.ID,
		"mode":     mode,
		"topics":   analyzer.TopN(topics, topN),
	})
}

// handleSimilar searches the latest batch for titles similar to ?q=.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	batch, err := s.app.Store().LoadLatest()
	if err != nil {
		s.logger.Error("failed to load latest batch", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load latest batch")
		return
	}
	if batch == nil {
		s.writeError(w, http.StatusNotFound, "no batches crawled yet")
		return
	}

	matches := analyzer.FindSimilar(batch, query, 0.25, 20)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"matches": matches,
	})
}

// handleTriggerCrawl queues a manual pipeline run.
func (s *Server) handleTriggerCrawl(w http.ResponseWriter, r *http.Request) {
	// The run outlives the request, so detach its cancellation.
	taskID := s.app.SubmitCrawl(context.WithoutCancel(r.Context()), workers.TaskTypeManualCrawl)
	s.logger.Info("manual crawl queued",
		logger.Field{Key: "task_id", Value: taskID},
		logger.Field{Key: "remote", Value: r.RemoteAddr})

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "queued",
		"task_id": taskID,
	})
}
