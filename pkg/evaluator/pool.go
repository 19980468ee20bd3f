package evaluator

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// ErrPoolClosed is returned by Evaluate after Close.
var ErrPoolClosed = errors.New("evaluation pool closed")

// Pool keeps a fixed set of worker goroutines alive across generations and
// feeds them one job per individual.
type Pool[T any] struct {
	Workers int `yaml:"workers" validate:"gte=1"`

	fitness Fitness[T]
	logger  *logrus.Logger

	jobs      chan *poolJob[T]
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// poolJob is a single evaluation task.
type poolJob[T any] struct {
	index    int
	genotype representation.Genotype[T]
	ctx      context.Context
	results  chan<- poolResult
}

type poolResult struct {
	index   int
	fitness float64
	err     error
}

// NewPool starts workers goroutines. Close stops them.
func NewPool[T any](fitness Fitness[T], workers int, logger *logrus.Logger) (*Pool[T], error) {
	if logger == nil {
		logger = defaultLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool[T]{
		Workers: workers,
		fitness: fitness,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	var rules core.Rules
	rules.Struct(p)
	if err := rules.Err("evaluation pool"); err != nil {
		cancel()
		return nil, err
	}

	p.jobs = make(chan *poolJob[T], workers*2)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.WithFields(logrus.Fields{
		"workers": workers,
	}).Info("Initialized evaluation pool")

	return p, nil
}

func (p *Pool[T]) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobs:
			res := poolResult{index: job.index}
			if err := job.ctx.Err(); err != nil {
				res.err = err
			} else {
				res.fitness, res.err = score(p.fitness, job.index, job.genotype)
			}
			// results is buffered for the whole batch.
			job.results <- res
		case <-p.ctx.Done():
			p.logger.WithField("worker", id).Debug("Evaluation worker stopped")
			return
		}
	}
}

func (p *Pool[T]) Evaluate(ctx context.Context, state core.State[T], mode ForceMode) (core.State[T], error) {
	return evaluate(ctx, state, mode, p.run, p.logger)
}

func (p *Pool[T]) run(ctx context.Context, genotypes []representation.Genotype[T]) ([]float64, error) {
	if p.ctx.Err() != nil {
		return nil, ErrPoolClosed
	}
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan poolResult, len(genotypes))
	submitted := 0
	for i, g := range genotypes {
		job := &poolJob[T]{index: i, genotype: g, ctx: callCtx, results: results}
		select {
		case p.jobs <- job:
			submitted++
		case <-callCtx.Done():
			return nil, callCtx.Err()
		case <-p.ctx.Done():
			return nil, ErrPoolClosed
		}
	}

	out := make([]float64, len(genotypes))
	for received := 0; received < submitted; received++ {
		select {
		case res := <-results:
			if res.err != nil {
				return nil, res.err
			}
			out[res.index] = res.fitness
		case <-callCtx.Done():
			return nil, callCtx.Err()
		case <-p.ctx.Done():
			return nil, ErrPoolClosed
		}
	}
	return out, nil
}

// Close stops the workers and waits for them to exit. Calling it more than
// once is a no-op.
func (p *Pool[T]) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("Evaluation pool shutdown complete")
	})
}
