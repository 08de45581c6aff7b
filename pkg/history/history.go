package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
)

// Service answers history queries against an event log reader.
// It keeps no state between calls and is safe for concurrent use.
type Service struct {
	reader ports.EventLogReader
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service reading from reader.
func New(reader ports.EventLogReader, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHistory returns the records of the entity attribute in ascending
// occurrence order. An empty history is not an error.
func (s *Service) GetHistory(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	if err := checkArgs(entityID, attribute); err != nil {
		return nil, err
	}

	records, err := s.reader.Read(ctx, entityType, entityID, attribute)
	if err != nil {
		return nil, fmt.Errorf("read history of %s %s.%s: %w", entityType, entityID, attribute, err)
	}

	// Equal timestamps keep the order the reader returned them in.
	slices.SortStableFunc(records, func(a, b domain.TransitionRecord) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})

	s.logger.DebugContext(ctx, "history loaded",
		"entity_type", entityType,
		"entity_id", entityID,
		"attribute", attribute,
		"records", len(records),
	)
	return records, nil
}

// Replay reconstructs the state sequence of the entity attribute.
func (s *Service) Replay(ctx context.Context, entityType, entityID, attribute string) (Result, error) {
	records, err := s.GetHistory(ctx, entityType, entityID, attribute)
	if err != nil {
		return Result{}, err
	}
	return Replay(records), nil
}

// Validate checks that consecutive records chain correctly.
// Inconsistencies are reported in the result, never as an error.
func (s *Service) Validate(ctx context.Context, entityType, entityID, attribute string) (Validation, error) {
	records, err := s.GetHistory(ctx, entityType, entityID, attribute)
	if err != nil {
		return Validation{}, err
	}

	v := Validate(records)
	if !v.Valid {
		s.logger.WarnContext(ctx, "inconsistent history",
			"entity_type", entityType,
			"entity_id", entityID,
			"attribute", attribute,
			"violations", len(v.Errors),
		)
	}
	return v, nil
}

// Statistics computes state and transition frequencies of the entity attribute.
func (s *Service) Statistics(ctx context.Context, entityType, entityID, attribute string) (Stats, error) {
	records, err := s.GetHistory(ctx, entityType, entityID, attribute)
	if err != nil {
		return Stats{}, err
	}
	return Statistics(records), nil
}

// Report bundles replay, validation and statistics computed from a single read.
type Report struct {
	Replay     Result     `json:"replay"`
	Validation Validation `json:"validation"`
	Stats      Stats      `json:"statistics"`
}

// Report reads the history once and derives every view from it.
func (s *Service) Report(ctx context.Context, entityType, entityID, attribute string) (Report, error) {
	records, err := s.GetHistory(ctx, entityType, entityID, attribute)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Replay:     Replay(records),
		Validation: Validate(records),
		Stats:      Statistics(records),
	}, nil
}

func checkArgs(entityID, attribute string) error {
	if strings.TrimSpace(entityID) == "" {
		return &domain.InvalidArgumentError{Field: "entity id"}
	}
	if strings.TrimSpace(attribute) == "" {
		return &domain.InvalidArgumentError{Field: "attribute"}
	}
	return nil
}
