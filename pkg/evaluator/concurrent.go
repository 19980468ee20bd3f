package evaluator

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Concurrent fans each evaluation out to its own goroutine, at most Workers
// at a time, and joins them before returning. The first fitness error
// cancels the outstanding evaluations.
type Concurrent[T any] struct {
	Workers int `yaml:"workers" validate:"gte=1"`
	fitness Fitness[T]
	logger  *logrus.Logger
}

// NewConcurrent returns a concurrent executor bounded by workers.
func NewConcurrent[T any](fitness Fitness[T], workers int, logger *logrus.Logger) (*Concurrent[T], error) {
	if logger == nil {
		logger = defaultLogger()
	}
	c := &Concurrent[T]{Workers: workers, fitness: fitness, logger: logger}
	var rules core.Rules
	rules.Struct(c)
	if err := rules.Err("concurrent evaluator"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Concurrent[T]) Evaluate(ctx context.Context, state core.State[T], mode ForceMode) (core.State[T], error) {
	return evaluate(ctx, state, mode, c.run, c.logger)
}

func (c *Concurrent[T]) run(ctx context.Context, genotypes []representation.Genotype[T]) ([]float64, error) {
	out := make([]float64, len(genotypes))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)

	for i, genotype := range genotypes {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			f, err := score(c.fitness, i, genotype)
			if err != nil {
				return err
			}
			// Each goroutine owns one slot.
			out[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
