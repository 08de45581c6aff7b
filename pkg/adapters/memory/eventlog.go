package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/fsmtrail/pkg/domain"
)

type streamKey struct {
	entityType, entityID, attribute string
}

// EventLog implements ports.EventLog in memory.
// Safe for concurrent use.
type EventLog struct {
	mu      sync.RWMutex
	streams map[streamKey][]domain.TransitionRecord
}

// NewEventLog creates an empty in-memory event log.
func NewEventLog() *EventLog {
	return &EventLog{
		streams: make(map[streamKey][]domain.TransitionRecord),
	}
}

// Append stores a copy of the record.
func (l *EventLog) Append(ctx context.Context, record domain.TransitionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	key := streamKey{record.EntityType, record.EntityID, record.Attribute}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.streams[key] = append(l.streams[key], record.Clone())
	return nil
}

// Read returns copies of the stored records, ordered by occurrence.
func (l *EventLog) Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	l.mu.RLock()
	stored := l.streams[streamKey{entityType, entityID, attribute}]
	out := make([]domain.TransitionRecord, len(stored))
	for i, r := range stored {
		out[i] = r.Clone()
	}
	l.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b domain.TransitionRecord) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out, nil
}

// Len returns the total number of records held.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, s := range l.streams {
		n += len(s)
	}
	return n
}
