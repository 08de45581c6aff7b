/*
Package observability turns engine lifecycle events into logs and metrics.

Both are exposed as domain.LifecycleHooks, so they can be combined with
LifecycleHooks.Merge and handed to fsm.WithLifecycleHooks.
*/
package observability
