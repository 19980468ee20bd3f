package listener

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// recorder logs hook names in call order.
type recorder struct {
	Base[bool]
	name  string
	calls *[]string
}

func (r recorder) GenerationStarted(core.State[bool]) { *r.calls = append(*r.calls, r.name+":generation") }
func (r recorder) EvaluationEnded(core.State[bool])   { *r.calls = append(*r.calls, r.name+":evaluated") }

func evaluatedState(generation int, fitnesses ...float64) core.State[bool] {
	pop := make(core.Population[bool], len(fitnesses))
	for i, f := range fitnesses {
		pop[i] = core.NewEvaluatedIndividual(representation.NewGenotype(representation.BoolChromosomeOf(i%2 == 0)), f)
	}
	return core.NewState[bool](core.MaxRanker[bool]{}, pop).WithGeneration(generation)
}

// drive calls every hook of one generation on l.
func drive(l Listener[bool], state core.State[bool]) {
	l.GenerationStarted(state)
	l.InitializationStarted(state)
	l.InitializationEnded(state)
	l.EvaluationStarted(state)
	l.EvaluationEnded(state)
	l.ParentSelectionStarted(state)
	l.ParentSelectionEnded(state)
	l.SurvivorSelectionStarted(state)
	l.SurvivorSelectionEnded(state)
	l.AlterationStarted(state)
	l.AlterationEnded(state)
	l.GenerationEnded(state.Advance())
}

func TestListForwardsInOrder(t *testing.T) {
	var calls []string
	list := List[bool]{
		recorder{name: "a", calls: &calls},
		recorder{name: "b", calls: &calls},
	}
	drive(list, evaluatedState(0, 1))

	assert.Equal(t, []string{"a:generation", "b:generation", "a:evaluated", "b:evaluated"}, calls)
}

func TestSummarize(t *testing.T) {
	s := Summarize(evaluatedState(0, 1, 2, 3, 4))
	assert.Equal(t, 4.0, s.Best)
	assert.Equal(t, 1.0, s.Worst)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Std, 1e-12)
	assert.Equal(t, 4, s.Size)

	empty := Summarize(core.EmptyState[bool](core.MaxRanker[bool]{}))
	assert.True(t, math.IsNaN(empty.Best))
	assert.True(t, math.IsNaN(empty.Mean))
}

func TestRunningStats(t *testing.T) {
	var r RunningStats
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		r.Update(x)
	}
	assert.Equal(t, 8, r.Count)
	assert.Equal(t, 2.0, r.Min)
	assert.Equal(t, 9.0, r.Max)
	assert.InDelta(t, 5.0, r.Mean, 1e-12)
	assert.InDelta(t, 2.0, r.Std, 1e-12)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func TestStats(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	stats := NewStatsWithClock[bool](clock.now)

	unevaluated := core.NewState[bool](core.MaxRanker[bool]{}, core.Population[bool]{
		core.NewIndividual(representation.NewGenotype(representation.BoolChromosomeOf(true))),
		core.NewIndividual(representation.NewGenotype(representation.BoolChromosomeOf(false))),
	})

	stats.EvolutionStarted(unevaluated)
	stats.GenerationStarted(unevaluated)
	stats.EvaluationStarted(unevaluated)
	stats.EvaluationEnded(unevaluated)
	stats.GenerationEnded(evaluatedState(1, 3, 5))
	drive(stats, evaluatedState(1, 6, 2))
	stats.EvolutionEnded(evaluatedState(2, 6, 2))

	history := stats.History()
	require.Len(t, history, 2)
	assert.Equal(t, 0, history[0].Generation)
	assert.Equal(t, 5.0, history[0].Fitness.Best)
	assert.Equal(t, 2, history[0].Evaluations)
	assert.Equal(t, time.Millisecond, history[0].Phases[Evaluation])
	assert.Equal(t, 1, history[1].Generation)
	assert.Equal(t, 0, history[1].Evaluations)
	assert.Len(t, history[1].Phases, len(Phases))

	assert.Equal(t, 2, stats.Evaluations())
	best := stats.BestFitness()
	assert.Equal(t, 2, best.Count)
	assert.InDelta(t, 5.5, best.Mean, 1e-12)

	last, ok := stats.Last()
	require.True(t, ok)
	assert.Equal(t, 6.0, last.Fitness.Best)
	assert.Positive(t, stats.Elapsed())
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	l := NewLogging[bool](logger, logrus.Fields{"run_id": "abc"})
	l.EvolutionStarted(evaluatedState(0, 1))
	drive(l, evaluatedState(0, 1, 2))
	l.EvolutionEnded(evaluatedState(1, 1, 2))

	out := buf.String()
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, "Generation completed")
	assert.Contains(t, out, `"best_fitness":2`)
	assert.Contains(t, out, `"phase":"parent_selection"`)
	assert.Contains(t, out, "Evolution ended")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics[bool](reg, "test")
	require.NoError(t, err)

	unevaluated := core.NewState[bool](core.MaxRanker[bool]{}, core.Population[bool]{
		core.NewIndividual(representation.NewGenotype(representation.BoolChromosomeOf(true))),
	})
	m.EvaluationStarted(unevaluated)
	m.EvaluationEnded(unevaluated)
	drive(m, evaluatedState(0, 1, 7))
	drive(m, evaluatedState(1, 3, 9))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generation))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.bestFitness))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.meanFitness))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.population))

	// one series per phase
	assert.Equal(t, len(Phases), testutil.CollectAndCount(m.phaseDuration))

	count, err := testutil.GatherAndCount(reg, "test_generations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsWithoutRegistry(t *testing.T) {
	m, err := NewMetrics[bool](nil, "unregistered")
	require.NoError(t, err)
	drive(m, evaluatedState(0, 1))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations))
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics[bool](reg, "shared")
	require.NoError(t, err)
	second, err := NewMetrics[bool](reg, "shared")
	require.NoError(t, err)

	drive(first, evaluatedState(0, 1))
	drive(second, evaluatedState(1, 1))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.generations))
	assert.Same(t, first.phaseDuration, second.phaseDuration)
}

func TestMetricsRegistrationConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "clash",
		Name:      "generations_total",
		Help:      "A gauge where the counter belongs",
	}))

	_, err := NewMetrics[bool](reg, "clash")
	assert.Error(t, err)
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tr := NewTracing[bool](context.Background(), tp, "run-1")
	tr.EvolutionStarted(evaluatedState(0, 1))
	drive(tr, evaluatedState(0, 1, 2))
	tr.EvolutionEnded(evaluatedState(1, 1, 2))

	spans := recorder.Ended()
	// five phases, one generation, one run
	require.Len(t, spans, len(Phases)+2)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		byName[s.Name()] = s
	}
	run := byName["evolver.Run"]
	gen := byName["evolver.Generation"]
	phase := byName["evolver.evaluation"]
	require.NotNil(t, run)
	require.NotNil(t, gen)
	require.NotNil(t, phase)

	assert.Equal(t, run.SpanContext().SpanID(), gen.Parent().SpanID())
	assert.Equal(t, gen.SpanContext().SpanID(), phase.Parent().SpanID())
	assert.Equal(t, "Ok", run.Status().Code.String())
}

func TestTracingFailedRun(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tr := NewTracing[bool](context.Background(), tp, "run-2")
	state := evaluatedState(0, 1)
	tr.EvolutionStarted(state)
	tr.GenerationStarted(state)
	tr.EvaluationStarted(state)
	List[bool]{tr}.EvolutionFailed(errors.New("fitness failed"))
	tr.EvolutionEnded(state)

	spans := recorder.Ended()
	require.Len(t, spans, 3, "open phase and generation spans are ended with the run")
	for _, s := range spans {
		assert.Equal(t, "Error", s.Status().Code.String(), s.Name())
		assert.Equal(t, "fitness failed", s.Status().Description, s.Name())
	}

	var run sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "evolver.Run" {
			run = s
		}
	}
	require.NotNil(t, run)
	require.Len(t, run.Events(), 1)
	assert.Equal(t, "exception", run.Events()[0].Name)

	// The failure does not leak into the next run.
	tr.EvolutionStarted(state)
	tr.EvolutionEnded(state)
	last := recorder.Ended()[3]
	assert.Equal(t, "Ok", last.Status().Code.String())
}
