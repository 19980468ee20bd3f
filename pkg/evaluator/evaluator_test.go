package evaluator

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

func countTrue(g representation.Genotype[bool]) (float64, error) {
	n := 0
	for _, b := range g.Flatten() {
		if b {
			n++
		}
	}
	return float64(n), nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func randomState(seed uint64, size int) core.State[bool] {
	domain := core.NewDomain(seed)
	pop := make(core.Population[bool], size)
	for i := range pop {
		pop[i] = core.NewIndividual(representation.NewGenotype(representation.NewBoolChromosome(domain.Rand, 16)))
	}
	return core.NewState[bool](core.MaxRanker[bool]{}, pop)
}

func executors(t *testing.T, fitness Fitness[bool]) map[string]Executor[bool] {
	t.Helper()
	concurrent, err := NewConcurrent(fitness, 3, quietLogger())
	require.NoError(t, err)
	pool, err := NewPool(fitness, 3, quietLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return map[string]Executor[bool]{
		"sequential": NewSequential(fitness, quietLogger()),
		"concurrent": concurrent,
		"pool":       pool,
	}
}

func TestExecutorsAgreeWithSequential(t *testing.T) {
	state := randomState(1, 40)
	want, err := NewSequential(countTrue, quietLogger()).Evaluate(context.Background(), state, New)
	require.NoError(t, err)

	for name, exec := range executors(t, countTrue) {
		t.Run(name, func(t *testing.T) {
			got, err := exec.Evaluate(context.Background(), state, New)
			require.NoError(t, err)
			require.Equal(t, state.Size(), got.Size())
			assert.True(t, got.Population().AllEvaluated())
			assert.Equal(t, want.Population().Fitnesses(), got.Population().Fitnesses())
		})
	}
}

func TestNoneModeLeavesFitness(t *testing.T) {
	for name, exec := range executors(t, countTrue) {
		t.Run(name, func(t *testing.T) {
			state := randomState(2, 5)
			got, err := exec.Evaluate(context.Background(), state, None)
			require.NoError(t, err)
			for _, f := range got.Population().Fitnesses() {
				assert.True(t, math.IsNaN(f))
			}
		})
	}
}

func TestAllModeIsIdempotent(t *testing.T) {
	for name, exec := range executors(t, countTrue) {
		t.Run(name, func(t *testing.T) {
			first, err := exec.Evaluate(context.Background(), randomState(3, 10), All)
			require.NoError(t, err)
			second, err := exec.Evaluate(context.Background(), first, All)
			require.NoError(t, err)
			assert.Equal(t, first.Population().Fitnesses(), second.Population().Fitnesses())
		})
	}
}

func TestNewModeSkipsEvaluated(t *testing.T) {
	var calls atomic.Int32
	fitness := func(g representation.Genotype[bool]) (float64, error) {
		calls.Add(1)
		return countTrue(g)
	}

	state := randomState(4, 4)
	pop := state.Population()
	pop[1] = pop[1].WithFitness(-1)
	state = state.WithPopulation(pop)

	got, err := NewSequential[bool](fitness, quietLogger()).Evaluate(context.Background(), state, New)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, -1.0, got.Population()[1].Fitness(), "evaluated individuals keep their place and fitness")
}

func TestFitnessErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	failing := func(g representation.Genotype[bool]) (float64, error) {
		if f, _ := countTrue(g); f > 8 {
			return 0, boom
		}
		return countTrue(g)
	}

	state := randomState(5, 30)
	for name, exec := range executors(t, failing) {
		t.Run(name, func(t *testing.T) {
			_, err := exec.Evaluate(context.Background(), state, New)
			require.Error(t, err)
			assert.True(t, errors.Is(err, boom))
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, exec := range executors(t, countTrue) {
		t.Run(name, func(t *testing.T) {
			_, err := exec.Evaluate(ctx, randomState(6, 8), New)
			assert.True(t, errors.Is(err, context.Canceled))
		})
	}
}

func TestPoolClosed(t *testing.T) {
	pool, err := NewPool(countTrue, 2, quietLogger())
	require.NoError(t, err)
	pool.Close()
	pool.Close()

	_, err = pool.Evaluate(context.Background(), randomState(7, 2), New)
	assert.True(t, errors.Is(err, ErrPoolClosed))
}

func TestNewExecutor(t *testing.T) {
	for _, mode := range []string{"sequential", "concurrent", "pool"} {
		exec, closeFn, err := NewExecutor(mode, 2, countTrue, quietLogger())
		require.NoError(t, err, mode)
		require.NotNil(t, exec)
		closeFn()
	}

	_, _, err := NewExecutor("remote", 2, countTrue, quietLogger())
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	_, _, err = NewExecutor("concurrent", 0, countTrue, quietLogger())
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	_, _, err = NewExecutor[bool]("sequential", 1, nil, quietLogger())
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestMemoize(t *testing.T) {
	var calls atomic.Int32
	fitness := Memoize(func(g representation.Genotype[bool]) (float64, error) {
		calls.Add(1)
		return countTrue(g)
	})

	a := representation.NewGenotype(representation.BoolChromosomeOf(true, false, true))
	b := representation.NewGenotype(representation.BoolChromosomeOf(true, false, true))
	c := representation.NewGenotype(representation.BoolChromosomeOf(false, false, true))

	for _, g := range []representation.Genotype[bool]{a, b, c, a} {
		_, err := fitness(g)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestForceModeString(t *testing.T) {
	assert.Equal(t, "new", New.String())
	assert.Equal(t, "all", All.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "ForceMode(9)", ForceMode(9).String())
}

func BenchmarkConcurrent(b *testing.B) {
	exec, err := NewConcurrent(countTrue, 4, quietLogger())
	require.NoError(b, err)
	state := randomState(1, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = exec.Evaluate(context.Background(), state, All)
	}
}
