package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

// Default tracer name for fluxion runtimes.
const defaultTracerName = "fluxion"

// TraceConfig configures the OpenTelemetry flush tracer.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "fluxion").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// MinDuration skips spans for flushes shorter than this. Graphs
	// flush constantly; tracing only the slow ones keeps span volume
	// sane. Zero traces every flush.
	MinDuration time.Duration

	// AttributeExtractor extracts custom attributes from each flush
	// event. Called for every traced flush.
	AttributeExtractor func(ev fluxion.FlushEvent) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures the OpenTelemetry flush tracer.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TraceOption {
	return func(c *TraceConfig) {
		c.TracerProvider = tp
	}
}

// WithMinDuration sets the minimum flush duration worth a span.
func WithMinDuration(d time.Duration) TraceOption {
	return func(c *TraceConfig) {
		c.MinDuration = d
	}
}

// WithFlushAttributes sets a custom attribute extractor.
func WithFlushAttributes(extractor func(ev fluxion.FlushEvent) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultTraceConfig returns the default tracing configuration.
func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName:  defaultTracerName,
		MinDuration: 0,
	}
}

// Tracing attaches an OpenTelemetry consumer that emits one span per
// completed flush. The flush has already happened when the hook fires,
// so the span is backdated to the flush start and ended at hook time.
//
// Example:
//
//	rt := fluxion.New()
//	observe.Tracing(rt,
//	    observe.WithTracerName("my-app"),
//	    observe.WithMinDuration(time.Millisecond),
//	)
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider overrides it. Configure the provider in main()
// before creating runtimes:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
func Tracing(rt *fluxion.Runtime, opts ...TraceOption) {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	rt.AddHooks(fluxion.Hooks{
		FlushCompleted: func(ev fluxion.FlushEvent) {
			if ev.Duration < config.MinDuration {
				return
			}

			end := time.Now()
			start := end.Add(-ev.Duration)

			attrs := []attribute.KeyValue{
				attribute.Int64("fluxion.flush.seq", int64(ev.Seq)),
				attribute.Int("fluxion.flush.passes", ev.Passes),
				attribute.Int("fluxion.flush.update_runs", ev.UpdateRuns),
				attribute.Int("fluxion.flush.effect_runs", ev.EffectRuns),
				attribute.Bool("fluxion.flush.transition_committed", ev.TransitionCommitted),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ev)...)
			}

			_, span := config.tracer.Start(
				context.Background(),
				"fluxion.flush",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithTimestamp(start),
				trace.WithAttributes(attrs...),
			)
			span.End(trace.WithTimestamp(end))
		},
	})
}
