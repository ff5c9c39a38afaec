package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// Default tracer name for ripple runtimes.
const defaultTracerName = "ripple"

// OTelConfig configures the OpenTelemetry instrumentation.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "ripple").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Context is the parent context of reaction spans.
	// Default: context.Background().
	Context context.Context

	// Filter determines which reactions to trace, by debug name.
	// If nil, all reactions are traced.
	Filter func(reaction string) bool

	// ComputedEvents records computed evaluations as events on the span of
	// the reaction that triggered them.
	ComputedEvents bool

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry instrumentation.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly instead of using the global provider.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = tracer
	}
}

// WithParentContext sets the parent context of reaction spans.
func WithParentContext(ctx context.Context) OTelOption {
	return func(c *OTelConfig) {
		c.Context = ctx
	}
}

// WithReactionFilter sets a filter function for reactions.
func WithReactionFilter(filter func(reaction string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithComputedEvents enables/disables computed evaluation span events.
func WithComputedEvents(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.ComputedEvents = enabled
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

// Tracing is a reactive.Instrumentation that traces reaction runs.
type Tracing struct {
	config OTelConfig
	tracer trace.Tracer

	mu     sync.Mutex
	nextID uint64
	// active holds the spans of reactions currently running, innermost last.
	active []activeSpan
}

type activeSpan struct {
	id   uint64
	span trace.Span
}

var _ reactive.Instrumentation = (*Tracing)(nil)

// OpenTelemetry creates an instrumentation that starts a span for each
// reaction run.
//
// The instrumentation:
//   - Creates a span named "ripple.reaction <name>"
//   - Records recovered panics and sets the span status
//   - Optionally adds computed evaluations as span events
//   - Adds the reaction count and teardown count of the transaction flush
//
// The tracer uses the global OpenTelemetry tracer provider unless WithTracer
// is given. Configure it in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	tracer := config.Tracer
	if tracer == nil {
		// Resolve tracer from global provider
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{config: config, tracer: tracer}
}

// StartReaction implements reactive.Instrumentation.
func (t *Tracing) StartReaction(name string) func(error) {
	if t.config.Filter != nil && !t.config.Filter(name) {
		return func(error) {}
	}

	attrs := append([]attribute.KeyValue{
		attribute.String("ripple.reaction", name),
	}, t.config.Attributes...)

	_, span := t.tracer.Start(
		t.config.Context,
		fmt.Sprintf("ripple.reaction %s", name),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	id := t.push(span)

	return func(err error) {
		t.pop(id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// ComputedEvaluated implements reactive.Instrumentation.
func (t *Tracing) ComputedEvaluated(name string, changed bool, err error) {
	if !t.config.ComputedEvents {
		return
	}
	span := t.current()
	if span == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ripple.computed", name),
		attribute.Bool("ripple.changed", changed),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("ripple.error", err.Error()))
	}
	span.AddEvent("computed.evaluated", trace.WithAttributes(attrs...))
}

// BatchFlushed implements reactive.Instrumentation.
func (t *Tracing) BatchFlushed(reactions, unobserved int) {
	if span := t.current(); span != nil {
		span.AddEvent("batch.flushed", trace.WithAttributes(
			attribute.Int("ripple.reactions", reactions),
			attribute.Int("ripple.unobserved", unobserved),
		))
	}
}

// Propagated implements reactive.Instrumentation. Propagation is too
// frequent to trace; use Metrics for it.
func (t *Tracing) Propagated(reactive.PropagationKind, int) {}

func (t *Tracing) push(span trace.Span) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.active = append(t.active, activeSpan{id: t.nextID, span: span})
	return t.nextID
}

func (t *Tracing) pop(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.active) - 1; i >= 0; i-- {
		if t.active[i].id == id {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return
		}
	}
}

func (t *Tracing) current() trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.active) == 0 {
		return nil
	}
	return t.active[len(t.active)-1].span
}
