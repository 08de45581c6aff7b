package ports

import (
	"context"

	"github.com/aretw0/fsmtrail/pkg/domain"
)

// EventLogReader retrieves recorded transitions.
type EventLogReader interface {
	// Read returns every record for the entity attribute, sorted ascending by
	// OccurredAt. Records sharing a timestamp keep their append order.
	// An empty history is not an error.
	Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error)
}

// EventLogWriter persists transitions.
type EventLogWriter interface {
	// Append stores the record so that it is visible to subsequent Read calls.
	// Each append is atomic on its own; no cross-record transaction is implied.
	Append(ctx context.Context, record domain.TransitionRecord) error
}

// EventLog is an append-only transition log.
type EventLog interface {
	EventLogReader
	EventLogWriter
}
