// Package bus provides the event bus that connects the crawl pipeline to
// its observers. Every stage of a crawl run publishes a typed event;
// subscribers (the SSE endpoint, metrics, tests) receive their own copy.
package bus

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a pipeline event.
type EventType string

const (
	// EventCrawlStarted is published when a crawl run begins.
	EventCrawlStarted EventType = "crawl.started"
	// EventPlatformFetched is published after a platform hot list is fetched.
	EventPlatformFetched EventType = "platform.fetched"
	// EventPlatformFailed is published when a platform fetch gives up.
	EventPlatformFailed EventType = "platform.failed"
	// EventCrawlCompleted is published when a crawl run finishes.
	EventCrawlCompleted EventType = "crawl.completed"
	// EventReportGenerated is published after reports are written to disk.
	EventReportGenerated EventType = "report.generated"
	// EventPushSent is published after a notification channel delivery.
	EventPushSent EventType = "push.sent"
	// EventPushFailed is published when a notification delivery fails.
	EventPushFailed EventType = "push.failed"
)

// Event is a single pipeline event.
type Event struct {
	ID   string         `json:"id"`
	Type EventType      `json:"type"`
	Time time.Time      `json:"time"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEvent builds an event with a fresh ID and the current time.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: t,
		Time: time.Now(),
		Data: data,
	}
}

// JSON renders the event payload for the SSE data field.
func (e Event) JSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		// Event data is always map[string]any with JSON-safe values.
		return []byte(`{"type":"` + string(e.Type) + `"}`)
	}
	return data
}
