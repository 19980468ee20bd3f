// Package evolver runs the generational loop: initialize, evaluate, select
// parents and survivors, alter, re-evaluate and advance, until a limit is
// reached.
package evolver

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/genevo-go/pkg/alterer"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/evaluator"
	"github.com/ishanwen-byte/genevo-go/pkg/limit"
	"github.com/ishanwen-byte/genevo-go/pkg/listener"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
	"github.com/ishanwen-byte/genevo-go/pkg/selector"
)

// Status is the lifecycle state of an Evolver.
type Status int

const (
	Created Status = iota
	Running
	Terminated
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Interceptor rewrites the state at the start and at the end of every
// generation.
type Interceptor[T any] interface {
	Before(state core.State[T]) core.State[T]
	After(state core.State[T]) core.State[T]
}

// Identity is the interceptor that changes nothing.
type Identity[T any] struct{}

func (Identity[T]) Before(state core.State[T]) core.State[T] { return state }
func (Identity[T]) After(state core.State[T]) core.State[T]  { return state }

// Config holds everything an Evolver needs. Builder, Ranker, the selectors,
// Executor and Domain are required.
type Config[T any] struct {
	PopulationSize int     `yaml:"population_size" validate:"gt=0"`
	SurvivalRate   float64 `yaml:"survival_rate" validate:"gte=0,lte=1"`

	Builder          representation.Builder[T] `validate:"required"`
	Ranker           core.Ranker[T]            `validate:"required"`
	ParentSelector   selector.Selector[T]      `validate:"required"`
	SurvivorSelector selector.Selector[T]      `validate:"required"`
	Executor         evaluator.Executor[T]     `validate:"required"`
	Domain           *core.Domain              `validate:"required"`

	// Alterers are applied in order to the selected parents.
	Alterers []alterer.Alterer[T] `validate:"-"`
	// Limits are checked after every generation; the run stops at the first
	// one reached. A run without limits stops only when its context is done.
	Limits    []limit.Limit[T]       `validate:"-"`
	Listeners []listener.Listener[T] `validate:"-"`
	// Interceptor defaults to Identity.
	Interceptor Interceptor[T] `validate:"-"`
	// InitialState is the state the run starts from. The zero value starts
	// from an empty generation-zero state.
	InitialState *core.State[T] `validate:"-"`
	Logger       *logrus.Logger `validate:"-"`
	// RunID defaults to a random UUID.
	RunID string `validate:"-"`
}

// Validate reports every violated rule of the configuration.
func (c *Config[T]) Validate() error {
	var rules core.Rules
	rules.Struct(c)
	for i, a := range c.Alterers {
		rules.Check(a != nil, "alterer %d is nil", i)
	}
	for i, l := range c.Limits {
		rules.Check(l != nil, "limit %d is nil", i)
	}
	if c.InitialState != nil && !c.InitialState.IsEmpty() {
		rules.Check(c.InitialState.Size() == c.PopulationSize,
			"initial state holds %d individuals, expected population_size %d", c.InitialState.Size(), c.PopulationSize)
	}
	return rules.Err("evolver")
}

// Evolver runs one evolution. It moves from Created to Running on Run and to
// Terminated when Run returns; an Evolver runs at most once.
type Evolver[T any] struct {
	cfg         Config[T]
	listeners   listener.List[T]
	interceptor Interceptor[T]
	logger      *logrus.Logger
	runID       string

	mu     sync.Mutex
	status Status
	state  core.State[T]
}

// New returns an Evolver in the Created state. Configured listeners are
// notified before the listeners of the limits.
func New[T any](cfg Config[T]) (*Evolver[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Evolver[T]{
		cfg:         cfg,
		interceptor: cfg.Interceptor,
		logger:      cfg.Logger,
		runID:       cfg.RunID,
	}
	if e.interceptor == nil {
		e.interceptor = Identity[T]{}
	}
	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetLevel(logrus.InfoLevel)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}

	e.listeners = append(e.listeners, cfg.Listeners...)
	for _, l := range cfg.Limits {
		e.listeners = append(e.listeners, l.Listener())
	}

	if cfg.InitialState != nil {
		e.state = cfg.InitialState.WithPopulation(cfg.InitialState.Population())
	} else {
		e.state = core.EmptyState(cfg.Ranker)
	}
	return e, nil
}

func (e *Evolver[T]) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Evolver[T]) RunID() string { return e.runID }

// State returns the latest completed state. During a run it is updated after
// every generation.
func (e *Evolver[T]) State() core.State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ParentCount is the number of parents selected from a population of n:
// round((1-survivalRate)*n).
func ParentCount(n int, survivalRate float64, domain *core.Domain) int {
	return int(math.Round(domain.Snap((1 - survivalRate) * float64(n))))
}

// SurvivorCount is the number of survivors selected from a population of n:
// ceil(survivalRate*n).
func SurvivorCount(n int, survivalRate float64, domain *core.Domain) int {
	return int(math.Ceil(domain.Snap(survivalRate * float64(n))))
}

// Run evolves until a limit is reached, ctx is done or a generation fails,
// and returns the last completed state. Errors wrapping
// core.ErrInvariantViolation mean the engine itself misbehaved.
func (e *Evolver[T]) Run(ctx context.Context) (_ core.State[T], err error) {
	e.mu.Lock()
	if e.status != Created {
		status := e.status
		e.mu.Unlock()
		return core.State[T]{}, fmt.Errorf("%w: evolver is %s, it runs only once", core.ErrInvalidArgument, status)
	}
	e.status = Running
	state := e.state
	e.mu.Unlock()

	log := e.logger.WithField("run_id", e.runID)
	log.WithFields(logrus.Fields{
		"population_size": e.cfg.PopulationSize,
		"survival_rate":   e.cfg.SurvivalRate,
		"generation":      state.Generation(),
		"limits":          len(e.cfg.Limits),
	}).Info("Starting evolution")
	if len(e.cfg.Limits) == 0 {
		log.Warn("No limits configured, the run stops only when its context is done")
	}

	e.listeners.EvolutionStarted(state)
	defer func() {
		e.mu.Lock()
		e.status = Terminated
		e.mu.Unlock()
		if err != nil {
			e.listeners.EvolutionFailed(err)
		}
		e.listeners.EvolutionEnded(state)
	}()

	for {
		if err := ctx.Err(); err != nil {
			log.WithField("generation", state.Generation()).Warn("Evolution cancelled")
			return state, fmt.Errorf("evolution cancelled at generation %d: %w", state.Generation(), err)
		}

		next, err := e.Step(ctx, state)
		if err != nil {
			log.WithError(err).WithField("generation", state.Generation()).Error("Generation failed")
			return state, err
		}
		state = next
		e.mu.Lock()
		e.state = state
		e.mu.Unlock()

		if limit.Any(e.cfg.Limits, state) {
			break
		}
	}

	fields := logrus.Fields{"generation": state.Generation()}
	if best, ok := state.Best(); ok {
		fields["best_fitness"] = best.Fitness()
	}
	log.WithFields(fields).Info("Evolution finished")
	return state, nil
}

// Step runs one generation on state and returns the advanced state. The
// configured listeners are notified at every phase boundary.
func (e *Evolver[T]) Step(ctx context.Context, state core.State[T]) (core.State[T], error) {
	n := e.cfg.PopulationSize
	domain := e.cfg.Domain

	e.listeners.GenerationStarted(state)
	state = e.interceptor.Before(state)

	if state.IsEmpty() {
		var err error
		if state, err = e.initialize(state); err != nil {
			return state, err
		}
	}

	state, err := e.evaluate(ctx, state)
	if err != nil {
		return state, err
	}

	parents, err := e.selectParents(state, ParentCount(n, e.cfg.SurvivalRate, domain))
	if err != nil {
		return state, err
	}
	survivors, err := e.selectSurvivors(state, SurvivorCount(n, e.cfg.SurvivalRate, domain))
	if err != nil {
		return state, err
	}
	offspring, err := e.alter(parents)
	if err != nil {
		return state, err
	}

	pop := survivors.Population().Concat(offspring.Population())
	if len(pop) < n {
		return state, core.Invariant("survivors and offspring hold %d individuals, expected at least %d", len(pop), n)
	}
	next, err := e.evaluate(ctx, state.WithPopulation(pop[:n]))
	if err != nil {
		return state, err
	}

	next = e.interceptor.After(next).Advance()
	e.listeners.GenerationEnded(next)
	return next, nil
}

func (e *Evolver[T]) initialize(state core.State[T]) (core.State[T], error) {
	e.listeners.InitializationStarted(state)
	pop := make(core.Population[T], e.cfg.PopulationSize)
	for i := range pop {
		g := e.cfg.Builder(e.cfg.Domain.Rand)
		if !g.Verify() {
			return state, core.Invariant("builder returned an invalid genotype %s", g)
		}
		pop[i] = core.NewIndividual(g)
	}
	state = state.WithPopulation(pop)
	e.listeners.InitializationEnded(state)
	return state, nil
}

func (e *Evolver[T]) evaluate(ctx context.Context, state core.State[T]) (core.State[T], error) {
	e.listeners.EvaluationStarted(state)
	out, err := e.cfg.Executor.Evaluate(ctx, state, evaluator.New)
	if err != nil {
		return state, fmt.Errorf("evaluation failed: %w", err)
	}
	if out.Size() != e.cfg.PopulationSize {
		return state, core.Invariant("executor returned %d individuals, expected %d", out.Size(), e.cfg.PopulationSize)
	}
	if missing := out.Population().Unevaluated(); missing > 0 {
		return state, core.Invariant("%d individuals are unevaluated after evaluation", missing)
	}
	e.listeners.EvaluationEnded(out)
	return out, nil
}

func (e *Evolver[T]) selectParents(state core.State[T], count int) (core.State[T], error) {
	e.listeners.ParentSelectionStarted(state)
	parents, err := e.selectFrom(e.cfg.ParentSelector, state, count)
	if err != nil {
		return state, fmt.Errorf("parent selection failed: %w", err)
	}
	e.listeners.ParentSelectionEnded(parents)
	return parents, nil
}

func (e *Evolver[T]) selectSurvivors(state core.State[T], count int) (core.State[T], error) {
	e.listeners.SurvivorSelectionStarted(state)
	survivors, err := e.selectFrom(e.cfg.SurvivorSelector, state, count)
	if err != nil {
		return state, fmt.Errorf("survivor selection failed: %w", err)
	}
	e.listeners.SurvivorSelectionEnded(survivors)
	return survivors, nil
}

func (e *Evolver[T]) selectFrom(s selector.Selector[T], state core.State[T], count int) (core.State[T], error) {
	pop, err := s.Select(state.Population(), count, state.Ranker(), e.cfg.Domain)
	if err != nil {
		return state, err
	}
	if len(pop) != count {
		return state, core.Invariant("selector returned %d individuals, expected %d", len(pop), count)
	}
	return state.WithPopulation(pop), nil
}

func (e *Evolver[T]) alter(parents core.State[T]) (core.State[T], error) {
	e.listeners.AlterationStarted(parents)
	offspring := parents
	for i, a := range e.cfg.Alterers {
		out, err := a.Alter(offspring, offspring.Size(), e.cfg.Domain)
		if err != nil {
			return parents, fmt.Errorf("alterer %d failed: %w", i, err)
		}
		if out.Size() != offspring.Size() {
			return parents, core.Invariant("alterer %d returned %d individuals, expected %d", i, out.Size(), offspring.Size())
		}
		offspring = out
	}
	e.listeners.AlterationEnded(offspring)
	return offspring, nil
}
