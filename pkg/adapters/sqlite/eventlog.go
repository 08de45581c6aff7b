// Package sqlite stores transition records in an append-only SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/fsmtrail/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// EventLog implements ports.EventLog on SQLite.
// Records are never updated or deleted; triggers reject both.
type EventLog struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Safe to call on an existing database.
func Open(path string) (*EventLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &EventLog{db: db}, nil
}

// Close closes the database connection.
func (l *EventLog) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Append inserts the record. The autoincrement seq column breaks ties
// between records sharing a timestamp.
func (l *EventLog) Append(ctx context.Context, record domain.TransitionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	contextJSON, err := marshalPayload(record.Context)
	if err != nil {
		return fmt.Errorf("append: context: %w", err)
	}
	metadataJSON, err := marshalPayload(record.Metadata)
	if err != nil {
		return fmt.Errorf("append: metadata: %w", err)
	}

	var from sql.NullString
	if s, ok := record.FromState(); ok {
		from = sql.NullString{String: s, Valid: true}
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO transitions
		(id, entity_type, entity_id, attribute, from_state, to_state, transition, occurred_at, context, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.EntityType,
		record.EntityID,
		record.Attribute,
		from,
		record.To,
		record.Transition,
		record.OccurredAt.UnixNano(),
		contextJSON,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// Read returns the records of one entity attribute ordered by occurrence, then append order.
func (l *EventLog) Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, attribute, from_state, to_state, transition, occurred_at, context, metadata
		FROM transitions
		WHERE entity_type = ? AND entity_id = ? AND attribute = ?
		ORDER BY occurred_at ASC, seq ASC
	`, entityType, entityID, attribute)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	defer rows.Close()

	var records []domain.TransitionRecord
	for rows.Next() {
		var (
			r                 domain.TransitionRecord
			from              sql.NullString
			occurredAt        int64
			contextJSON, meta sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EntityType, &r.EntityID, &r.Attribute, &from, &r.To, &r.Transition, &occurredAt, &contextJSON, &meta); err != nil {
			return nil, fmt.Errorf("read: scan: %w", err)
		}
		if from.Valid {
			r.From = domain.StateRef(from.String)
		}
		r.OccurredAt = time.Unix(0, occurredAt).UTC()
		if r.Context, err = unmarshalPayload(contextJSON); err != nil {
			return nil, fmt.Errorf("read: context of %s: %w", r.ID, err)
		}
		if r.Metadata, err = unmarshalPayload(meta); err != nil {
			return nil, fmt.Errorf("read: metadata of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return records, nil
}

// Streams lists the distinct entity attributes recorded in the log.
func (l *EventLog) Streams(ctx context.Context) ([][3]string, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT DISTINCT entity_type, entity_id, attribute
		FROM transitions
		ORDER BY entity_type, entity_id, attribute
	`)
	if err != nil {
		return nil, fmt.Errorf("streams: %w", err)
	}
	defer rows.Close()

	var out [][3]string
	for rows.Next() {
		var s [3]string
		if err := rows.Scan(&s[0], &s[1], &s[2]); err != nil {
			return nil, fmt.Errorf("streams: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func marshalPayload(m map[string]any) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalPayload(s sql.NullString) (map[string]any, error) {
	if !s.Valid {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}
