// Package events carries retrieval events out of the search core.
// Background work adjacent to retrieval (webhook delivery, preview warming)
// subscribes here instead of running inline, so a slow or failing consumer
// can never stall a search.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Event types emitted by the retrieval core.
const (
	TypeDocumentScored = "document.scored"
	TypeSearchFinished = "search.finished"
)

// Event is one retrieval occurrence.
type Event struct {
	Type       string    `json:"type"`
	OrgID      string    `json:"orgId"`
	DocumentID string    `json:"documentId,omitempty"`
	Query      string    `json:"query,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Results    int       `json:"results,omitempty"`
	At         time.Time `json:"at"`
}

// Subscriber consumes events. Implementations must tolerate concurrent
// calls; delivery order across events is not guaranteed.
type Subscriber interface {
	Handle(ev Event)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ev Event)

func (f SubscriberFunc) Handle(ev Event) { f(ev) }

// Bus fans events out to subscribers asynchronously. Publish never blocks
// the caller: each delivery runs on its own goroutine and panics are
// absorbed and logged.
type Bus struct {
	mu     sync.RWMutex
	subs   []Subscriber
	logger *slog.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a subscriber for all future events.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber without waiting for any of them.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		go func(s Subscriber) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Warn("event subscriber panicked", "type", ev.Type, "panic", r)
				}
			}()
			s.Handle(ev)
		}(s)
	}
}
