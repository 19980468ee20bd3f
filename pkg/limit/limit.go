// Package limit decides when an evolution run stops.
package limit

import (
	"fmt"
	"math"
	"time"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/listener"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Limit pairs a tracking listener with a stop predicate. The evolver
// registers Listener with the run and asks Reached after every generation.
type Limit[T any] interface {
	Listener() listener.Listener[T]
	Reached(state core.State[T]) bool
}

// Predicate decides from a tracking listener and the current state whether a
// run is done.
type Predicate[T any, L listener.Listener[T]] func(l L, state core.State[T]) bool

type bound[T any, L listener.Listener[T]] struct {
	listener  L
	predicate Predicate[T, L]
}

// New binds listener to predicate.
func New[T any, L listener.Listener[T]](l L, predicate Predicate[T, L]) Limit[T] {
	return &bound[T, L]{listener: l, predicate: predicate}
}

func (b *bound[T, L]) Listener() listener.Listener[T] { return b.listener }

func (b *bound[T, L]) Reached(state core.State[T]) bool {
	return b.predicate(b.listener, state)
}

// Any reports whether any limit is reached, stopping at the first one.
func Any[T any](limits []Limit[T], state core.State[T]) bool {
	for _, l := range limits {
		if l.Reached(state) {
			return true
		}
	}
	return false
}

// generations counts completed generations.
type generations[T any] struct {
	listener.Base[T]
	count int
}

func (g *generations[T]) GenerationEnded(core.State[T]) { g.count++ }

// MaxGenerations stops the run once the generation counter reaches n.
func MaxGenerations[T any](n int) (Limit[T], error) {
	if n < 1 {
		return nil, &core.ConfigError{
			Component:  "max generations limit",
			Violations: []string{fmt.Sprintf("max_generations must be at least 1 (got %d)", n)},
		}
	}
	return New[T](&generations[T]{}, func(_ *generations[T], state core.State[T]) bool {
		return state.Generation() >= n
	}), nil
}

// GenerationCount stops the run after n generations of this run, whatever
// generation number it started from.
func GenerationCount[T any](n int) Limit[T] {
	return New[T](&generations[T]{}, func(g *generations[T], _ core.State[T]) bool {
		return g.count >= n
	})
}

// bestTracker remembers the best individual seen at the end of each
// generation, and for how many generations it has not improved.
type bestTracker[T any] struct {
	listener.Base[T]
	best   core.Individual[T]
	seen   bool
	steady int
}

func (b *bestTracker[T]) GenerationEnded(state core.State[T]) {
	best, ok := state.Best()
	if !ok || !best.IsEvaluated() {
		return
	}
	if !b.seen || state.Ranker().Compare(best, b.best) > 0 {
		b.best = best
		b.seen = true
		b.steady = 0
		return
	}
	b.steady++
}

// TargetFitness stops the run once the best individual is at least as good
// as target under the run's ranker.
func TargetFitness[T any](target float64) (Limit[T], error) {
	if math.IsNaN(target) {
		return nil, &core.ConfigError{
			Component:  "target fitness limit",
			Violations: []string{"target_fitness must be a number"},
		}
	}
	goal := core.NewEvaluatedIndividual(representation.NewGenotype[T](), target)
	return New[T](&bestTracker[T]{}, func(b *bestTracker[T], state core.State[T]) bool {
		return b.seen && state.Ranker().Compare(b.best, goal) >= 0
	}), nil
}

// SteadyFitness stops the run when the best fitness has not improved for n
// consecutive generations.
func SteadyFitness[T any](n int) (Limit[T], error) {
	if n < 1 {
		return nil, &core.ConfigError{
			Component:  "steady fitness limit",
			Violations: []string{fmt.Sprintf("steady_generations must be at least 1 (got %d)", n)},
		}
	}
	return New[T](&bestTracker[T]{}, func(b *bestTracker[T], _ core.State[T]) bool {
		return b.seen && b.steady >= n
	}), nil
}

// clockListener records when the run started.
type clockListener[T any] struct {
	listener.Base[T]
	now     func() time.Time
	started time.Time
}

func (c *clockListener[T]) EvolutionStarted(core.State[T]) { c.started = c.now() }

// TimeLimit stops the run once d has elapsed since it started. Limits are
// checked between generations, so a run overshoots by at most one
// generation.
func TimeLimit[T any](d time.Duration) (Limit[T], error) {
	return TimeLimitWithClock[T](d, time.Now)
}

// TimeLimitWithClock is TimeLimit reading time from now.
func TimeLimitWithClock[T any](d time.Duration, now func() time.Time) (Limit[T], error) {
	if d <= 0 {
		return nil, &core.ConfigError{
			Component:  "time limit",
			Violations: []string{fmt.Sprintf("time_limit must be positive (got %s)", d)},
		}
	}
	return New[T](&clockListener[T]{now: now}, func(c *clockListener[T], _ core.State[T]) bool {
		return !c.started.IsZero() && c.now().Sub(c.started) >= d
	}), nil
}
