package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fsmtrail/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every event to logger.
// Callable invocations are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	attrs := func(e *domain.TransitionEvent) []any {
		out := []any{
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"attribute", e.Attribute,
			"transition", e.Transition,
			"from", domain.DescribeState(e.From),
			"to", e.To,
		}
		if e.Err != nil {
			out = append(out, "err", e.Err)
		}
		return out
	}
	return domain.LifecycleHooks{
		OnTransitionStart: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition_start", attrs(e)...)
		},
		OnTransitionComplete: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition_complete", attrs(e)...)
		},
		OnGuardRejected: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "guard_rejected", attrs(e)...)
		},
		OnTransitionFailed: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.ErrorContext(ctx, "transition_failed", attrs(e)...)
		},
		OnCallable: func(ctx context.Context, e *domain.CallableEvent) {
			logger.DebugContext(ctx, "callable",
				"transition", e.Transition,
				"role", e.Role,
				"callable", e.Callable,
				"duration", e.Duration,
				"is_error", e.Err != nil,
			)
		},
	}
}
