package listener

import (
	"context"
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

const tracerName = "genevo.evolver"

// Tracing opens one span per run, one child span per generation and one
// grandchild span per phase.
type Tracing[T any] struct {
	Phased[T]

	tracer trace.Tracer
	parent context.Context
	runID  string

	mu        sync.Mutex
	runCtx    context.Context
	runSpan   trace.Span
	genCtx    context.Context
	genSpan   trace.Span
	phaseSpan map[Phase]trace.Span
	failure   error
}

// NewTracing returns a tracing listener. A nil provider uses the global one;
// spans hang off parent.
func NewTracing[T any](ctx context.Context, tp trace.TracerProvider, runID string) *Tracing[T] {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t := &Tracing[T]{
		tracer:    tp.Tracer(tracerName),
		parent:    ctx,
		runID:     runID,
		phaseSpan: make(map[Phase]trace.Span),
	}
	t.Handler = t
	return t
}

func (t *Tracing[T]) EvolutionStarted(state core.State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runCtx, t.runSpan = t.tracer.Start(t.parent, "evolver.Run",
		trace.WithAttributes(
			attribute.String("evolver.run_id", t.runID),
			attribute.Int("evolver.start_generation", state.Generation()),
		),
	)
}

// EvolutionFailed marks the spans still open when the run aborted with err.
func (t *Tracing[T]) EvolutionFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failure = err
}

func (t *Tracing[T]) EvolutionEnded(state core.State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A failed generation leaves its phase and generation spans open.
	for phase, span := range t.phaseSpan {
		t.fail(span)
		span.End()
		delete(t.phaseSpan, phase)
	}
	if t.genSpan != nil {
		t.fail(t.genSpan)
		t.genSpan.End()
		t.genSpan = nil
	}

	if t.runSpan == nil {
		return
	}
	t.runSpan.SetAttributes(attribute.Int("evolver.generations", state.Generation()))
	if best, ok := state.Best(); ok && best.IsEvaluated() {
		t.runSpan.SetAttributes(attribute.Float64("evolver.best_fitness", best.Fitness()))
	}
	if t.failure != nil {
		t.runSpan.RecordError(t.failure)
		t.fail(t.runSpan)
	} else {
		t.runSpan.SetStatus(codes.Ok, "")
	}
	t.runSpan.End()
	t.runSpan = nil
	t.failure = nil
}

func (t *Tracing[T]) fail(span trace.Span) {
	if t.failure != nil {
		span.SetStatus(codes.Error, t.failure.Error())
	}
}

func (t *Tracing[T]) GenerationStarted(state core.State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	parent := t.runCtx
	if parent == nil {
		parent = t.parent
	}
	t.genCtx, t.genSpan = t.tracer.Start(parent, "evolver.Generation",
		trace.WithAttributes(attribute.Int("evolver.generation", state.Generation())),
	)
}

func (t *Tracing[T]) GenerationEnded(state core.State[T]) {
	summary := Summarize(state)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.genSpan == nil {
		return
	}
	if !math.IsNaN(summary.Best) {
		t.genSpan.SetAttributes(
			attribute.Float64("evolver.best_fitness", summary.Best),
			attribute.Float64("evolver.mean_fitness", summary.Mean),
		)
	}
	t.genSpan.End()
	t.genSpan = nil
}

func (t *Tracing[T]) PhaseStarted(phase Phase, state core.State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	parent := t.genCtx
	if parent == nil {
		parent = t.parent
	}
	_, span := t.tracer.Start(parent, "evolver."+string(phase),
		trace.WithAttributes(
			attribute.Int("evolver.generation", state.Generation()),
			attribute.Int("evolver.population", state.Size()),
		),
	)
	t.phaseSpan[phase] = span
}

func (t *Tracing[T]) PhaseEnded(phase Phase, _ core.State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if span, ok := t.phaseSpan[phase]; ok {
		span.End()
		delete(t.phaseSpan, phase)
	}
}
