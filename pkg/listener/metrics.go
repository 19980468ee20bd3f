package listener

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Metrics exports run progress as Prometheus metrics.
type Metrics[T any] struct {
	Phased[T]

	generations   prometheus.Counter
	evaluations   prometheus.Counter
	generation    prometheus.Gauge
	population    prometheus.Gauge
	bestFitness   prometheus.Gauge
	meanFitness   prometheus.Gauge
	phaseDuration *prometheus.HistogramVec
	genDuration   prometheus.Histogram

	mu         sync.Mutex
	now        func() time.Time
	genStart   time.Time
	phaseStart map[Phase]time.Time
}

// NewMetrics registers the run metrics with reg under namespace. A nil reg
// creates unregistered collectors. Collectors already registered with reg,
// for instance by an earlier run in the same process, are reused.
func NewMetrics[T any](reg prometheus.Registerer, namespace string) (*Metrics[T], error) {
	m := &Metrics[T]{
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of completed generations",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of fitness evaluations",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Current generation number",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_size",
			Help:      "Number of individuals in the current population",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Fitness of the best individual of the current generation",
		}),
		meanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_fitness",
			Help:      "Mean fitness of the current generation",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of generation phases",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"phase"}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of whole generations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		now:        time.Now,
		phaseStart: make(map[Phase]time.Time),
	}
	m.Handler = m

	if reg == nil {
		return m, nil
	}
	var err error
	if m.generations, err = register(reg, m.generations); err != nil {
		return nil, err
	}
	if m.evaluations, err = register(reg, m.evaluations); err != nil {
		return nil, err
	}
	if m.generation, err = register(reg, m.generation); err != nil {
		return nil, err
	}
	if m.population, err = register(reg, m.population); err != nil {
		return nil, err
	}
	if m.bestFitness, err = register(reg, m.bestFitness); err != nil {
		return nil, err
	}
	if m.meanFitness, err = register(reg, m.meanFitness); err != nil {
		return nil, err
	}
	if m.phaseDuration, err = register(reg, m.phaseDuration); err != nil {
		return nil, err
	}
	if m.genDuration, err = register(reg, m.genDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the collector registered earlier under
// the same descriptor if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var alreadyErr prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyErr) {
		if existing, ok := alreadyErr.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("failed to register metrics: %w", err)
}

func (m *Metrics[T]) GenerationStarted(core.State[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genStart = m.now()
}

func (m *Metrics[T]) GenerationEnded(state core.State[T]) {
	summary := Summarize(state)

	m.generations.Inc()
	m.generation.Set(float64(state.Generation()))
	m.population.Set(float64(summary.Size))
	if !math.IsNaN(summary.Best) {
		m.bestFitness.Set(summary.Best)
	}
	if !math.IsNaN(summary.Mean) {
		m.meanFitness.Set(summary.Mean)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.genStart.IsZero() {
		m.genDuration.Observe(m.now().Sub(m.genStart).Seconds())
	}
}

func (m *Metrics[T]) PhaseStarted(phase Phase, state core.State[T]) {
	if phase == Evaluation {
		m.evaluations.Add(float64(state.Population().Unevaluated()))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseStart[phase] = m.now()
}

func (m *Metrics[T]) PhaseEnded(phase Phase, _ core.State[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if start, ok := m.phaseStart[phase]; ok {
		m.phaseDuration.WithLabelValues(string(phase)).Observe(m.now().Sub(start).Seconds())
		delete(m.phaseStart, phase)
	}
}
