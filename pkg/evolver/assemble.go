package evolver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/internal/types"
	"github.com/ishanwen-byte/genevo-go/pkg/alterer"
	"github.com/ishanwen-byte/genevo-go/pkg/checkpoint"
	"github.com/ishanwen-byte/genevo-go/pkg/config"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/evaluator"
	"github.com/ishanwen-byte/genevo-go/pkg/limit"
	"github.com/ishanwen-byte/genevo-go/pkg/listener"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
	"github.com/ishanwen-byte/genevo-go/pkg/selector"
)

// Problem is the problem-specific half of a run: how to build a genotype,
// how to score it and how to mutate and combine its genes.
type Problem[T any] struct {
	Builder representation.Builder[T]
	Fitness evaluator.Fitness[T]
	// MutateGene enables the configured gene mutator.
	MutateGene func(g representation.Gene[T], r *rand.Rand) representation.Gene[T]
	// Combiner is used by the configured crossover; nil means uniform.
	Combiner alterer.GeneCombiner[T]
	// Alterers run after the configured crossover and mutator.
	Alterers []alterer.Alterer[T]
}

type options[T any] struct {
	logger      *logrus.Logger
	registerer  prometheus.Registerer
	tracer      trace.TracerProvider
	tracerCtx   context.Context
	listeners   []listener.Listener[T]
	interceptor Interceptor[T]
}

// Option customizes Assemble.
type Option[T any] func(*options[T])

func WithLogger[T any](logger *logrus.Logger) Option[T] {
	return func(o *options[T]) { o.logger = logger }
}

// WithRegisterer registers the metrics listener with reg instead of the
// default Prometheus registerer.
func WithRegisterer[T any](reg prometheus.Registerer) Option[T] {
	return func(o *options[T]) { o.registerer = reg }
}

// WithTracerProvider makes the tracing listener use tp, with run spans
// parented on ctx.
func WithTracerProvider[T any](ctx context.Context, tp trace.TracerProvider) Option[T] {
	return func(o *options[T]) {
		o.tracerCtx = ctx
		o.tracer = tp
	}
}

// WithListeners appends listeners after the ones built from the
// configuration.
func WithListeners[T any](listeners ...listener.Listener[T]) Option[T] {
	return func(o *options[T]) { o.listeners = append(o.listeners, listeners...) }
}

func WithInterceptor[T any](interceptor Interceptor[T]) Option[T] {
	return func(o *options[T]) { o.interceptor = interceptor }
}

// Assemble builds an Evolver from cfg and p. The returned close function
// releases the evaluation workers and must be called once the run is over.
func Assemble[T any](cfg *types.Config, p Problem[T], opts ...Option[T]) (*Evolver[T], func(), error) {
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	var rules core.Rules
	rules.Check(p.Builder != nil, "builder is required")
	rules.Check(p.Fitness != nil, "fitness is required")
	if err := rules.Err("problem"); err != nil {
		return nil, nil, err
	}

	o := options[T]{registerer: prometheus.DefaultRegisterer, tracerCtx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetLevel(logrus.InfoLevel)
	}

	domain := core.NewDomain(cfg.Engine.Seed)
	domain.EqualityThreshold = cfg.Engine.EqualityThreshold

	var ranker core.Ranker[T] = core.MaxRanker[T]{}
	if cfg.Engine.Ranker == constants.RankerMin {
		ranker = core.MinRanker[T]{}
	}

	runID := uuid.NewString()
	initial, err := resume(cfg, p, ranker, o.logger)
	if err != nil {
		return nil, nil, err
	}
	if initial != nil && initial.runID != "" {
		runID = initial.runID
	}

	parents, err := newSelector[T](cfg.Selection.Parents)
	if err != nil {
		return nil, nil, err
	}
	survivors, err := newSelector[T](cfg.Selection.Survivors)
	if err != nil {
		return nil, nil, err
	}

	alterers, err := newAlterers(cfg, p)
	if err != nil {
		return nil, nil, err
	}

	limits, err := newLimits[T](cfg.Limits)
	if err != nil {
		return nil, nil, err
	}

	listeners, err := newListeners(cfg, runID, o)
	if err != nil {
		return nil, nil, err
	}

	fitness := p.Fitness
	if cfg.Evaluator.Memoize {
		fitness = evaluator.Memoize(fitness)
	}
	executor, closeFn, err := evaluator.NewExecutor(cfg.Evaluator.Mode, cfg.Evaluator.Workers, fitness, o.logger)
	if err != nil {
		return nil, nil, err
	}

	evoCfg := Config[T]{
		PopulationSize:   cfg.Engine.PopulationSize,
		SurvivalRate:     cfg.Engine.SurvivalRate,
		Builder:          p.Builder,
		Ranker:           ranker,
		ParentSelector:   parents,
		SurvivorSelector: survivors,
		Executor:         executor,
		Domain:           domain,
		Alterers:         alterers,
		Limits:           limits,
		Listeners:        listeners,
		Interceptor:      o.interceptor,
		Logger:           o.logger,
		RunID:            runID,
	}
	if initial != nil {
		evoCfg.InitialState = &initial.state
	}

	e, err := New(evoCfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return e, closeFn, nil
}

type resumed[T any] struct {
	state core.State[T]
	runID string
}

// resume loads the latest checkpoint when resuming is configured. A missing
// checkpoint starts a fresh run.
func resume[T any](cfg *types.Config, p Problem[T], ranker core.Ranker[T], logger *logrus.Logger) (*resumed[T], error) {
	if !cfg.Checkpoint.Resume {
		return nil, nil
	}
	snap, err := checkpoint.LoadLatest[T](cfg.Checkpoint.Dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("dir", cfg.Checkpoint.Dir).Info("No checkpoint found, starting a new run")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resume: %w", err)
	}

	// The template only carries gene kinds and bounds, so it is built from a
	// throwaway source to leave the run's random stream untouched.
	template := p.Builder(core.NewSource(1))
	state, err := checkpoint.Restore(snap, template, ranker)
	if err != nil {
		return nil, fmt.Errorf("failed to resume: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"dir":        cfg.Checkpoint.Dir,
		"run_id":     snap.RunID,
		"generation": snap.Generation,
	}).Info("Resuming from checkpoint")
	return &resumed[T]{state: state, runID: snap.RunID}, nil
}

func newSelector[T any](c types.SelectorConfig) (selector.Selector[T], error) {
	switch c.Kind {
	case constants.SelectorTournament:
		t, err := selector.NewTournament[T](c.TournamentSize)
		if err != nil {
			return nil, err
		}
		t.Distinct = c.Distinct
		return t, nil
	case constants.SelectorRoulette:
		return selector.NewRouletteWheel[T](c.Sorted), nil
	default:
		return nil, &core.ConfigError{
			Component:  "selector",
			Violations: []string{fmt.Sprintf("kind must be one of [tournament roulette] (got %s)", c.Kind)},
		}
	}
}

func newAlterers[T any](cfg *types.Config, p Problem[T]) ([]alterer.Alterer[T], error) {
	var alterers []alterer.Alterer[T]

	if cfg.Crossover.Enabled {
		combiner := p.Combiner
		if combiner == nil {
			combiner = alterer.UniformCombiner[T]{}
		}
		c, err := alterer.NewCrossover(cfg.Crossover.NumParents, cfg.Crossover.NumOffspring,
			cfg.Crossover.ChromosomeRate, cfg.Crossover.Exclusive, combiner)
		if err != nil {
			return nil, err
		}
		alterers = append(alterers, c)
	}

	if p.MutateGene != nil {
		m, err := alterer.NewGeneMutator(cfg.Mutation.IndividualRate, cfg.Mutation.ChromosomeRate,
			cfg.Mutation.GeneRate, p.MutateGene)
		if err != nil {
			return nil, err
		}
		alterers = append(alterers, m)
	}

	return append(alterers, p.Alterers...), nil
}

func newLimits[T any](c types.LimitsConfig) ([]limit.Limit[T], error) {
	var (
		limits []limit.Limit[T]
		rules  core.Rules
	)
	add := func(l limit.Limit[T], err error) {
		if err != nil {
			rules.Merge(err)
			return
		}
		limits = append(limits, l)
	}

	if c.MaxGenerations > 0 {
		add(limit.MaxGenerations[T](c.MaxGenerations))
	}
	if c.TargetFitness != nil {
		add(limit.TargetFitness[T](*c.TargetFitness))
	}
	if c.SteadyGenerations > 0 {
		add(limit.SteadyFitness[T](c.SteadyGenerations))
	}
	if c.TimeLimit > 0 {
		add(limit.TimeLimit[T](c.TimeLimit))
	}

	if err := rules.Err("limits"); err != nil {
		return nil, err
	}
	return limits, nil
}

func newListeners[T any](cfg *types.Config, runID string, o options[T]) ([]listener.Listener[T], error) {
	listeners := []listener.Listener[T]{
		listener.NewLogging[T](o.logger, logrus.Fields{"run_id": runID}),
	}

	if cfg.Metrics.Enabled {
		namespace := cfg.Metrics.Namespace
		if namespace == "" {
			namespace = constants.DefaultMetricsNamespace
		}
		metrics, err := listener.NewMetrics[T](o.registerer, namespace)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, metrics)
	}

	if cfg.Tracing.Enabled {
		listeners = append(listeners, listener.NewTracing[T](o.tracerCtx, o.tracer, runID))
	}

	if cfg.Checkpoint.Dir != "" && cfg.Checkpoint.Interval > 0 {
		cp, err := checkpoint.NewListener[T](cfg.Checkpoint.Dir, cfg.Checkpoint.Interval, runID, o.logger)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, cp)
	}

	return append(listeners, o.listeners...), nil
}
