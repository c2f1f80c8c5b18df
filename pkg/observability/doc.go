/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured audit logs.

Metrics are registered on a dedicated registry so tests and embedded uses do
not collide with the process-wide default one.
*/
package observability
