package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/fsmtrail/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "fsmtrail:log:"

// EventLog implements ports.EventLog using Redis.
//
// Each entity attribute is a sorted set scored by the record's occurrence
// time in microseconds. Members are prefixed with a zero-padded sequence
// number so records sharing a score are returned in append order.
type EventLog struct {
	client *backend.Client
	prefix string
}

type Option func(*EventLog)

// WithPrefix sets the key prefix for streams.
func WithPrefix(prefix string) Option {
	return func(l *EventLog) {
		l.prefix = prefix
	}
}

// New creates a new Redis event log with options.
func New(address, password string, db int, opts ...Option) *EventLog {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis event log from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *EventLog {
	l := &EventLog{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Close closes the underlying client.
func (l *EventLog) Close() error {
	return l.client.Close()
}

// keyEscaper escapes the separator inside key parts so distinct triples never share a key.
var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

func (l *EventLog) streamKey(entityType, entityID, attribute string) string {
	return l.prefix + keyEscaper.Replace(entityType) + ":" + keyEscaper.Replace(entityID) + ":" + keyEscaper.Replace(attribute)
}

func (l *EventLog) seqKey() string {
	return l.prefix + "seq"
}

// Append adds the record to its entity attribute stream.
func (l *EventLog) Append(ctx context.Context, record domain.TransitionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	seq, err := l.client.Incr(ctx, l.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	err = l.client.ZAdd(ctx, l.streamKey(record.EntityType, record.EntityID, record.Attribute), backend.Z{
		Score:  float64(record.OccurredAt.UnixMicro()),
		Member: fmt.Sprintf("%020d|%s", seq, data),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Read returns the stream of the entity attribute ordered by occurrence.
func (l *EventLog) Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	members, err := l.client.ZRange(ctx, l.streamKey(entityType, entityID, attribute), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	records := make([]domain.TransitionRecord, 0, len(members))
	for _, m := range members {
		_, payload, ok := strings.Cut(m, "|")
		if !ok {
			return nil, fmt.Errorf("malformed stream member %q", m)
		}
		var r domain.TransitionRecord
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		if r.EntityType != entityType || r.EntityID != entityID || r.Attribute != attribute {
			return nil, fmt.Errorf("stream %s holds a record of %s/%s/%s",
				l.streamKey(entityType, entityID, attribute), r.EntityType, r.EntityID, r.Attribute)
		}
		records = append(records, r)
	}

	// Scores carry microseconds; restore full timestamp order.
	slices.SortStableFunc(records, func(a, b domain.TransitionRecord) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return records, nil
}
