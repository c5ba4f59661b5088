package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/trendradar/trendradar/internal/bus"
	"github.com/trendradar/trendradar/internal/logger"
	"github.com/trendradar/trendradar/internal/metrics"
)

const (
	keepAliveInterval = 15 * time.Second
	clientBuffer      = 32
)

// stream fans bus events out to connected SSE clients and keeps a
// replay ring for reconnects.
type stream struct {
	metrics *metrics.Metrics
	logger  *logger.Logger

	mu      sync.Mutex
	clients map[chan bus.Event]struct{}
	ring    []bus.Event
	ringCap int
}

func newStream(replay int, m *metrics.Metrics, log *logger.Logger) *stream {
	if replay <= 0 {
		replay = 1
	}
	return &stream{
		metrics: m,
		logger:  log,
		clients: make(map[chan bus.Event]struct{}),
		ringCap: replay,
	}
}

// run forwards bus events to clients until ctx is done. A client whose
// buffer is full misses the event; it can catch up via replay.
func (s *stream) run(ctx context.Context, events <-chan bus.Event) {
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case e, ok := <-events:
			if !ok {
				s.closeAll()
				return
			}
			s.broadcast(e)
		}
	}
}

func (s *stream) broadcast(e bus.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring = append(s.ring, e)
	if len(s.ring) > s.ringCap {
		s.ring = s.ring[len(s.ring)-s.ringCap:]
	}

	for ch := range s.clients {
		select {
		case ch <- e:
		default:
			s.metrics.SSEEventDropped()
		}
	}
}

// replay returns the buffered events after lastEventID. An unknown or
// empty ID returns the whole ring.
func (s *stream) replay(lastEventID string) []bus.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replayLocked(lastEventID)
}

func (s *stream) replayLocked(lastEventID string) []bus.Event {
	start := 0
	if lastEventID != "" {
		for i, e := range s.ring {
			if e.ID == lastEventID {
				start = i + 1
				break
			}
		}
	}

	out := make([]bus.Event, len(s.ring)-start)
	copy(out, s.ring[start:])
	return out
}

// register adds a client and snapshots the replay backlog atomically,
// so an event broadcast during connection setup lands in exactly one
// of the two.
func (s *stream) register(lastEventID string) (chan bus.Event, []bus.Event) {
	ch := make(chan bus.Event, clientBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	backlog := s.replayLocked(lastEventID)
	s.clients[ch] = struct{}{}
	return ch, backlog
}

func (s *stream) unsubscribe(ch chan bus.Event) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

func (s *stream) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		delete(s.clients, ch)
		close(ch)
	}
}

// handleEvents serves the SSE stream: replays buffered events, then
// follows the live feed with periodic keep-alive comments.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s.app.Metrics().SSEClientConnected()
	defer s.app.Metrics().SSEClientDisconnected()

	ch, backlog := s.stream.register(r.Header.Get("Last-Event-ID"))
	defer s.stream.unsubscribe(ch)

	for _, e := range backlog {
		writeEvent(w, e)
	}
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, e)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e bus.Event) {
	fmt.Fprintf(w, "id: %s\n", e.ID)
	fmt.Fprintf(w, "event: %s\n", e.Type)
	fmt.Fprintf(w, "data: %s\n\n", e.JSON())
}
