package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aretw0/fsmtrail/internal/config"
	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/adapters/redis"
	"github.com/aretw0/fsmtrail/pkg/adapters/sqlite"
	"github.com/aretw0/fsmtrail/pkg/persistence/middleware"
	"github.com/aretw0/fsmtrail/pkg/ports"
)

// ErrStreamsUnsupported is returned by Streams when the backend cannot enumerate its streams.
var ErrStreamsUnsupported = errors.New("backend cannot list streams")

type streamLister interface {
	Streams(ctx context.Context) ([][3]string, error)
}

// EventLog is a configured event log together with its release function.
type EventLog struct {
	ports.EventLog
	close   func() error
	streams streamLister
}

// Streams lists the (entity type, entity id, attribute) triples that have records.
func (l *EventLog) Streams(ctx context.Context) ([][3]string, error) {
	if l.streams == nil {
		return nil, ErrStreamsUnsupported
	}
	return l.streams.Streams(ctx)
}

// Close releases the underlying backend.
func (l *EventLog) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// OpenEventLog builds the backend selected by cfg and wraps it with the
// configured persistence middleware. Redaction runs before encryption.
func OpenEventLog(cfg config.Config, logger *slog.Logger) (*EventLog, error) {
	mws, err := buildMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	var (
		base  ports.EventLog
		close func() error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		base = memory.NewEventLog()
	case config.BackendSQLite:
		l, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite event log: %w", err)
		}
		base, close = l, l.Close
	case config.BackendRedis:
		l := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
		base, close = l, l.Close
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	logger.Debug("event log opened",
		"backend", string(cfg.Backend),
		"middleware", len(mws),
	)
	out := &EventLog{EventLog: middleware.Chain(base, mws...), close: close}
	if l, ok := base.(streamLister); ok {
		out.streams = l
	}
	return out, nil
}

func buildMiddleware(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if len(cfg.RedactKeys) > 0 {
		for _, p := range cfg.RedactKeys {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.RedactKeys))
	}

	if cfg.EncryptionKey != "" {
		active, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		var fallbacks [][]byte
		for i, s := range cfg.EncryptionFallbackKeys {
			key, err := middleware.DecodeKey(s)
			if err != nil {
				return nil, fmt.Errorf("fallback key %d: %w", i, err)
			}
			fallbacks = append(fallbacks, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:      active,
			FallbackKeys:   fallbacks,
			AllowPlaintext: true,
		}))
	}

	return mws, nil
}
