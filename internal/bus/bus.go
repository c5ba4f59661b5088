package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/trendradar/trendradar/internal/logger"
)

var (
	ErrQueueFull      = errors.New("event queue is full")
	ErrAlreadyStarted = errors.New("event bus is already started")
	ErrNotStarted     = errors.New("event bus is not started")
)

const subscriberBuffer = 16

// Bus fans pipeline events out to subscribers. Publishing never blocks:
// a full central queue rejects the event, a full subscriber channel drops
// its copy.
type Bus struct {
	mu      sync.RWMutex
	logger  *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	events chan Event

	subscribers  map[int64]chan Event
	subscriberID int64
	dropped      uint64
}

// New creates an event bus with the given central queue capacity.
func New(capacity int, log *logger.Logger) *Bus {
	return &Bus{
		logger:      log,
		events:      make(chan Event, capacity),
		subscribers: make(map[int64]chan Event),
	}
}

// Start launches the distribution goroutine.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyStarted
	}

	b.ctx, b.cancel = context.WithCancel(ctx)
	b.started = true

	go b.distribute()

	b.logger.Info("event bus started", logger.Field{Key: "capacity", Value: cap(b.events)})
	return nil
}

// Stop shuts the bus down and closes all subscriber channels.
func (b *Bus) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotStarted
	}

	b.cancel()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	close(b.events)
	b.started = false

	b.logger.Info("event bus stopped")
	return nil
}

// Publish enqueues an event for distribution.
func (b *Bus) Publish(e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.started {
		return ErrNotStarted
	}

	select {
	case b.events <- e:
		b.logger.DebugCtx(b.ctx, "event published",
			logger.Field{Key: "event_id", Value: e.ID},
			logger.Field{Key: "event_type", Value: e.Type})
		return nil
	default:
		b.logger.WarnCtx(b.ctx, "event queue full, event rejected",
			logger.Field{Key: "event_type", Value: e.Type})
		return ErrQueueFull
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// must be called when the subscriber goes away (e.g. an SSE client
// disconnects); it removes and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil, func() {}
	}

	ch := make(chan Event, subscriberBuffer)
	b.subscriberID++
	id := b.subscriberID
	b.subscribers[id] = ch

	b.logger.Debug("subscriber added", logger.Field{Key: "subscriber_id", Value: id})

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many subscriber deliveries were dropped.
func (b *Bus) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// IsStarted reports whether the bus is running.
func (b *Bus) IsStarted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

func (b *Bus) distribute() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case e, ok := <-b.events:
			if !ok {
				return
			}
			b.mu.Lock()
			for _, ch := range b.subscribers {
				select {
				case ch <- e:
				default:
					// A stalled subscriber must not block the pipeline.
					b.dropped++
					b.logger.WarnCtx(b.ctx, "subscriber channel full, event dropped",
						logger.Field{Key: "event_type", Value: e.Type})
				}
			}
			b.mu.Unlock()
		}
	}
}
