package domain

import (
	"context"
	"time"
)

// CallableRole describes the position of a callable in a transition attempt.
type CallableRole string

const (
	RoleGuard  CallableRole = "guard"
	RoleBefore CallableRole = "before"
	RoleAction CallableRole = "action"
	RoleAfter  CallableRole = "after"
)

// TransitionEvent describes a transition attempt.
type TransitionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Attribute  string    `json:"attribute"`
	Transition string    `json:"transition"`
	From       *string   `json:"from,omitempty"`
	To         string    `json:"to"`
	Err        error     `json:"-"`
}

// CallableEvent describes one guard, action or callback invocation.
type CallableEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Transition string        `json:"transition"`
	Role       CallableRole  `json:"role"`
	Callable   string        `json:"callable"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransitionStart    func(context.Context, *TransitionEvent)
	OnTransitionComplete func(context.Context, *TransitionEvent)
	OnTransitionFailed   func(context.Context, *TransitionEvent)
	OnGuardRejected      func(context.Context, *TransitionEvent)
	OnCallable           func(context.Context, *CallableEvent)
}

// Merge combines hooks so that both h and other are called, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransitionStart:    chainTransition(h.OnTransitionStart, other.OnTransitionStart),
		OnTransitionComplete: chainTransition(h.OnTransitionComplete, other.OnTransitionComplete),
		OnTransitionFailed:   chainTransition(h.OnTransitionFailed, other.OnTransitionFailed),
		OnGuardRejected:      chainTransition(h.OnGuardRejected, other.OnGuardRejected),
		OnCallable:           chainCallable(h.OnCallable, other.OnCallable),
	}
}

func chainTransition(a, b func(context.Context, *TransitionEvent)) func(context.Context, *TransitionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TransitionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainCallable(a, b func(context.Context, *CallableEvent)) func(context.Context, *CallableEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *CallableEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
