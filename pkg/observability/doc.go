/*
Package observability provides Prometheus instrumentation for demark.

Metrics live on their own registry so several instances (tests, embedded
servers) never collide on the global default registry.
*/
package observability
