/*
Package fsmtrail is a finite state machine layer for persisted entities that records every transition in an append-only audit trail.

A Machine names the tracked attribute of an entity, its states and the transitions between them. Each transition can carry guards, before callbacks, actions and after callbacks. Applying a transition runs them in that order, updates the entity and appends an immutable TransitionRecord to the event log. The log can later be replayed to reconstruct the attribute, checked for chaining consistency and aggregated into statistics.

# Callables

Guards, actions and callbacks are invoke.Callable values: a bound method, a "Type@method" reference, a registered static function or any invocable value. Their parameters are bound by name, then by position, then by asking a Resolver for typed dependencies, then from declared defaults. The engine always provides the standard entries entity, from, to, transition and context.

# Usage

	b := dsl.New("order", "status").Initial("new")
	b.Transition("submit").From("new").To("pending")
	machine, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	trail, err := fsmtrail.New(machine, fsmtrail.WithEventLog(sqliteLog))
	if err != nil {
		log.Fatal(err)
	}

	order := fsm.NewObject("order", "42", nil)
	if _, err := trail.Apply(ctx, order, "submit", invoke.Args{}); err != nil {
		log.Fatal(err)
	}

	result, err := trail.Replay(ctx, order)

# Storage

Event logs live in pkg/adapters: memory for tests, sqlite for a single process and redis for shared deployments. The persistence middleware package redacts or encrypts record payloads in front of any of them.

# Command line

The fsmtrail command inspects a configured log (history, replay, validate, stats), checks machine definition files and serves the read API over HTTP.
*/
package fsmtrail
