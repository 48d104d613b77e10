/*
Package observability provides Prometheus metrics for validation runs.

Metrics plug into the runner through lifecycle hooks, so the runner itself
never imports a metrics library:

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	r := runner.New(runner.WithHooks(m.Hooks()))
*/
package observability
