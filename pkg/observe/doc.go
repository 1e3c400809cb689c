// Package observe provides production-grade observability for fluxion
// runtimes. Everything in it consumes runtime hooks; nothing here reads
// or writes reactive state.
//
// # Prometheus Metrics
//
// The Prometheus collector counts flushes, computation runs, and
// committed transitions, and tracks flush duration and pass histograms:
//
//	rt := fluxion.New()
//	observe.Prometheus(rt)
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # OpenTelemetry Tracing
//
// The flush tracer emits one span per completed flush, backdated to the
// flush start so span duration matches flush duration:
//
//	observe.Tracing(rt,
//	    observe.WithMinDuration(time.Millisecond),
//	)
//
// Flushes run constantly in a busy graph; WithMinDuration keeps span
// volume down by tracing only the slow ones.
//
// # Hook Overhead
//
// Hook callbacks run synchronously at the end of each flush on the
// runtime's goroutine. The collectors here do constant work per flush,
// so the overhead is a few counter increments; custom
// AttributeExtractor callbacks should stay equally cheap.
package observe
