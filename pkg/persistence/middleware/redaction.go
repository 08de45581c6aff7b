package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.EventLog
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks the context and
// metadata values whose keys match any of the patterns before they are written.
// Nested maps are searched too. It panics if a pattern does not compile.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.EventLog) ports.EventLog {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Append(ctx context.Context, record domain.TransitionRecord) error {
	// The caller keeps its unmasked payload.
	masked := record.Clone()
	maskMap(masked.Context, m.patterns)
	maskMap(masked.Metadata, m.patterns)
	return m.next.Append(ctx, masked)
}

func (m *redactionMiddleware) Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	return m.next.Read(ctx, entityType, entityID, attribute)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
