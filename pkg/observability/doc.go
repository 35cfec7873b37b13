/*
Package observability provides lifecycle-hook composition and a Prometheus
metrics recorder for the osier engine.

Hooks are the engine's only observation surface; this package turns them into
reusable building blocks:

	rec := observability.NewPrometheusRecorder(prometheus.DefaultRegisterer)
	eng := osier.New(
		osier.WithLifecycleHooks(observability.Multi(rec.Hooks(), myAuditHooks)),
	)
*/
package observability
