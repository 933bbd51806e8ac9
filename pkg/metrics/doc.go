/*
Package metrics provides Prometheus instrumentation for task-manager components.

A Registry bundles every metric the library emits. Components take a *Registry
(or fall back to DefaultRegistry, registered against the default Prometheus
registerer) and record through it; nothing in this package starts an HTTP
handler, exposition is left to the host application.

Example usage:

	reg := prometheus.NewRegistry()
	r := metrics.NewRegistry(reg)

	hooks := taskman.NewMetricsHooks("ingest", nil, r)
	mgr, _ := taskman.NewWithConfig(taskman.Config{Workers: 4, Hooks: hooks})

Use a separate prometheus.Registry per component when running several managers
in one process to avoid duplicate registration.
*/
package metrics
