/*
Package observability turns derivation lifecycle events into Prometheus
metrics and structured log records.

Both are exposed as domain.LifecycleHooks so they can be merged and handed to
task.WithHooks or session.WithHooks.
*/
package observability
