package store

import (
	"context"
	"slices"
	"sync"

	"github.com/relblock/relblock/pkg/errors"
)

// Log is an append-only, per-diagram event log. Implementations must be
// safe for concurrent use within one process; cross-process append
// conflicts surface as ErrCodeConflict.
type Log interface {
	// Append stores the event, assigning it the next version. The
	// event's Version field is filled in on return. An event arriving
	// with a preset Version must match the next version exactly.
	Append(ctx context.Context, ev *Event) error

	// Events returns a diagram's events sorted by version ascending.
	// An unknown diagram yields an empty slice, not an error.
	Events(ctx context.Context, diagramID string) ([]Event, error)

	// Head returns the latest version of a diagram's log, 0 if empty.
	Head(ctx context.Context, diagramID string) (int, error)

	// Diagrams lists the IDs of all diagrams with at least one event.
	Diagrams(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// =============================================================================
// Memory Log
// =============================================================================

// MemoryLog keeps events in process memory. Intended for tests and
// throwaway sessions.
type MemoryLog struct {
	mu     sync.Mutex
	events map[string][]Event
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{events: make(map[string][]Event)}
}

// Append stores the event, assigning it the next version.
func (l *MemoryLog) Append(ctx context.Context, ev *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := len(l.events[ev.DiagramID]) + 1
	if ev.Version != 0 && ev.Version != next {
		return errors.New(errors.ErrCodeConflict, "version %d already written, next is %d", ev.Version, next)
	}
	ev.Version = next
	l.events[ev.DiagramID] = append(l.events[ev.DiagramID], *ev)
	return nil
}

// Events returns a diagram's events sorted by version ascending.
func (l *MemoryLog) Events(ctx context.Context, diagramID string) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events[diagramID]), nil
}

// Head returns the latest version of a diagram's log.
func (l *MemoryLog) Head(ctx context.Context, diagramID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events[diagramID]), nil
}

// Diagrams lists all diagram IDs with at least one event.
func (l *MemoryLog) Diagrams(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.events))
	for id := range l.events {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op for the memory log.
func (l *MemoryLog) Close(ctx context.Context) error { return nil }

// Ensure MemoryLog implements Log.
var _ Log = (*MemoryLog)(nil)
