// Package metrics collects Prometheus counters for GameKit operations:
// auth calls, profile cache effectiveness, platform API requests, and
// realtime event volume.
//
// Services accept a Recorder through an option and default to Noop, so
// programs that do not scrape metrics pay nothing. Programs that do
// pass a Collector registered on their own registry:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewCollector(reg)
//	sync := auth.NewSynchronizer(p, store, auth.WithMetrics(rec))
package metrics
