// Package log stores the append-only verification history. Entries are never
// mutated; capped variants evict oldest-first and are documented as lossy.
package log

import (
	"context"
	"sync"

	"securevault/internal/verification/models"
)

// InMemory is the default verification log. Unbounded unless constructed
// with a cap; appends are O(1) amortized.
type InMemory struct {
	mu     sync.RWMutex
	events []models.Event
	cap    int
}

// NewInMemory creates an unbounded in-memory log.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// NewInMemoryCapped creates a log keeping only the most recent limit entries.
// Older entries are evicted on append; the history is lossy by design.
func NewInMemoryCapped(limit int) *InMemory {
	return &InMemory{cap: limit}
}

// Append records an event. Never rejects a well-formed event.
func (l *InMemory) Append(_ context.Context, event models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	if l.cap > 0 && len(l.events) > l.cap {
		// Evict oldest. Copy to release the old backing array.
		trimmed := make([]models.Event, l.cap)
		copy(trimmed, l.events[len(l.events)-l.cap:])
		l.events = trimmed
	}
	return nil
}

// Recent returns up to limit events, most recent first. Events appended
// later sort before earlier ones even when timestamps collide.
func (l *InMemory) Recent(_ context.Context, limit int) ([]models.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.newestFirst(limit), nil
}

// All returns every retained event, most recent first.
func (l *InMemory) All(_ context.Context) ([]models.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.newestFirst(len(l.events)), nil
}

func (l *InMemory) newestFirst(limit int) []models.Event {
	n := len(l.events)
	if limit < 0 {
		limit = 0
	}
	if limit > n {
		limit = n
	}
	events := make([]models.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		events = append(events, l.events[i])
	}
	return events
}
