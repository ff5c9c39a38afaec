// Package telemetry provides reactive.Instrumentation implementations backed
// by Prometheus and OpenTelemetry.
//
// # Prometheus Metrics
//
// Prometheus collects counters and histograms about the engine:
//   - ripple_reactions_total: Reaction runs by status
//   - ripple_reaction_duration_seconds: Reaction run duration histogram
//   - ripple_computed_evaluations_total: Computed evaluations by result
//   - ripple_propagations_total: Propagation walks by kind
//   - ripple_batch_flushes_total: Outermost transactions that did work
//   - ripple_unobserved_total: Observables torn down at transaction end
//
//	metrics := telemetry.Prometheus(telemetry.WithNamespace("myapp"))
//	rt := reactive.NewRuntime(reactive.Config{Instrumentation: metrics})
//
// Expose them with promhttp as usual:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry starts one span per reaction run. Panics recovered from the
// reaction body are recorded on the span and set its status to Error.
//
//	tracing := telemetry.OpenTelemetry(telemetry.WithTracerName("myapp"))
//
// Both can be combined:
//
//	reactive.NewMultiInstrumentation(metrics, tracing)
//
// Unlike the reactive package, everything here is safe for concurrent use,
// so one collector can serve several runtimes.
package telemetry
