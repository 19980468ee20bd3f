// Package evaluator assigns fitness to the individuals of a state, one at a
// time or concurrently.
package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Fitness scores a genotype. Errors are propagated to the caller of the
// executor unchanged apart from wrapping.
type Fitness[T any] func(g representation.Genotype[T]) (float64, error)

// ForceMode selects which individuals an executor evaluates.
type ForceMode int

const (
	// New evaluates only individuals without a fitness.
	New ForceMode = iota
	// All re-evaluates every individual.
	All
	// None evaluates nobody and returns the state unchanged.
	None
)

func (m ForceMode) String() string {
	switch m {
	case New:
		return "new"
	case All:
		return "all"
	case None:
		return "none"
	default:
		return fmt.Sprintf("ForceMode(%d)", int(m))
	}
}

// Executor evaluates a state. The returned population has the input size
// and keeps every individual in place.
type Executor[T any] interface {
	Evaluate(ctx context.Context, state core.State[T], mode ForceMode) (core.State[T], error)
}

// batchFunc computes the fitness of genotypes, result i for genotype i.
type batchFunc[T any] func(ctx context.Context, genotypes []representation.Genotype[T]) ([]float64, error)

// evaluate selects the individuals mode asks for, scores them with run and
// merges the results back into their positions.
func evaluate[T any](ctx context.Context, state core.State[T], mode ForceMode, run batchFunc[T], logger *logrus.Logger) (core.State[T], error) {
	if mode == None {
		return state, nil
	}
	pop := state.Population()
	var positions []int
	var genotypes []representation.Genotype[T]
	for i, ind := range pop {
		if mode == All || !ind.IsEvaluated() {
			positions = append(positions, i)
			genotypes = append(genotypes, ind.Genotype())
		}
	}
	if len(positions) == 0 {
		return state, nil
	}

	start := time.Now()
	fitnesses, err := run(ctx, genotypes)
	if err != nil {
		return state, err
	}
	for k, i := range positions {
		pop[i] = pop[i].WithFitness(fitnesses[k])
	}

	logger.WithFields(logrus.Fields{
		"generation": state.Generation(),
		"evaluated":  len(positions),
		"mode":       mode.String(),
		"duration":   time.Since(start),
	}).Debug("Evaluated individuals")

	return state.WithPopulation(pop), nil
}

// score calls fitness for the individual at position i of a batch.
func score[T any](fitness Fitness[T], i int, g representation.Genotype[T]) (float64, error) {
	f, err := fitness(g)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate individual %d: %w", i, err)
	}
	return f, nil
}

func defaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// Sequential evaluates one individual at a time in population order.
type Sequential[T any] struct {
	fitness Fitness[T]
	logger  *logrus.Logger
}

// NewSequential returns a sequential executor. A nil logger gets a default
// Info-level logger.
func NewSequential[T any](fitness Fitness[T], logger *logrus.Logger) *Sequential[T] {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Sequential[T]{fitness: fitness, logger: logger}
}

func (s *Sequential[T]) Evaluate(ctx context.Context, state core.State[T], mode ForceMode) (core.State[T], error) {
	return evaluate(ctx, state, mode, s.run, s.logger)
}

func (s *Sequential[T]) run(ctx context.Context, genotypes []representation.Genotype[T]) ([]float64, error) {
	out := make([]float64, len(genotypes))
	for i, g := range genotypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := score(s.fitness, i, g)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// NewExecutor returns the executor named by mode: sequential, concurrent or pool.
// The returned close function releases pool workers and is safe to call for
// every mode.
func NewExecutor[T any](mode string, workers int, fitness Fitness[T], logger *logrus.Logger) (Executor[T], func(), error) {
	if fitness == nil {
		return nil, nil, &core.ConfigError{Component: "evaluator", Violations: []string{"fitness is required"}}
	}
	switch mode {
	case constants.EvaluatorSequential:
		return NewSequential(fitness, logger), func() {}, nil
	case constants.EvaluatorConcurrent:
		c, err := NewConcurrent(fitness, workers, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	case constants.EvaluatorPool:
		p, err := NewPool(fitness, workers, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, &core.ConfigError{
			Component:  "evaluator",
			Violations: []string{fmt.Sprintf("mode must be one of [sequential concurrent pool] (got %s)", mode)},
		}
	}
}
