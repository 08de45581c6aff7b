/*
Package ports defines the driven ports (interfaces) of the fsmtrail engine.

These interfaces decouple the transition engine and the history service from
their collaborators, allowing the audit trail to live in memory, SQLite or
Redis, and dependencies to come from any container.

# Key Interfaces

  - EventLogReader: returns the ordered transition history of one entity attribute.
  - EventLogWriter: appends one immutable TransitionRecord.
  - Resolver: produces an instance for a declared parameter type, or reports not-found.
*/
package ports
