// Package fsm drives the state of one attribute of an entity through the
// transitions a Machine declares.
//
// Engine.Apply checks that the transition is allowed from the current state,
// evaluates its guards, runs its before callbacks and actions, moves the
// entity to the target state and appends a domain.TransitionRecord to the
// event log, then runs the after callbacks. Every guard, action and callback
// is an invoke.Callable, so its parameters are bound from the request
// arguments, a few standard entries and the dependency resolver.
//
// Standard entries available to every callable:
//
//	entity      the Entity being transitioned
//	from        the current state; absent when the attribute has none yet
//	to          the target state
//	transition  the transition name
//	context     the request's context payload, only for parameters whose
//	            type accepts a container value
//
// An append failure is reported as *domain.AppendError. Side effects of the
// actions that already ran are not undone and the entity keeps its new state.
package fsm
