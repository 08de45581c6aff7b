/*
Package domain contains the core domain models of the fsmtrail engine.

It defines the immutable transition record written to the audit trail, the
error taxonomy shared by the binding, invocation and replay layers, and the
lifecycle hooks used for observability. The package is kept pure and free of
I/O or persistence concerns.

# Key Entities

  - TransitionRecord: one observed move of an entity attribute between states.
  - LifecycleHooks: callbacks fired around transition attempts and callable invocations.
  - Errors: sentinels (ErrMissingParameter, ErrAccessDenied, ...) and their detailed forms.
*/
package domain
