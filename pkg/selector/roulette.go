package selector

import (
	"math"
	"sort"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// RouletteWheel selects individuals with probability proportional to their
// ranker-transformed fitness.
type RouletteWheel[T any] struct {
	// Sorted orders the population best first before building the wheel.
	// Probabilities follow the individuals, so only the draw order changes.
	Sorted bool `yaml:"sorted"`
}

// NewRouletteWheel returns a roulette-wheel selector.
func NewRouletteWheel[T any](sorted bool) *RouletteWheel[T] {
	return &RouletteWheel[T]{Sorted: sorted}
}

func (w *RouletteWheel[T]) Select(pop core.Population[T], outputSize int, ranker core.Ranker[T], domain *core.Domain) (core.Population[T], error) {
	if done, err := checkInput(pop, outputSize); done || err != nil {
		return core.Population[T]{}, err
	}
	if w.Sorted {
		pop = ranker.Sort(pop)
	}

	probs := Probabilities(ranker.FitnessTransform(pop.Fitnesses()), domain.EqualityThreshold)
	cumulative := make([]float64, len(probs))
	sum := 0.0
	for i, p := range probs {
		sum += p
		cumulative[i] = sum
	}

	selected := make(core.Population[T], outputSize)
	last := len(pop) - 1
	for i := range selected {
		u := domain.Rand.Float64()
		idx := sort.Search(len(cumulative), func(j int) bool { return cumulative[j] > u })
		// Rounding can leave the final prefix sum just below u.
		if idx > last {
			idx = last
		}
		selected[i] = pop[idx]
	}
	return selected, nil
}

// Probabilities turns fitness values into selection probabilities summing to
// one. Values are shifted up so the smallest negative value becomes zero.
// When the shifted sum is NaN, infinite or zero within threshold every value
// gets the same probability.
func Probabilities(values []float64, threshold float64) []float64 {
	n := len(values)
	probs := make([]float64, n)
	if n == 0 {
		return probs
	}

	shift := 0.0
	for _, v := range values {
		shift = math.Min(shift, v)
	}

	sum := 0.0
	for i, v := range values {
		probs[i] = v - shift
		sum += probs[i]
	}

	if math.IsNaN(sum) || math.IsInf(sum, 0) || math.Abs(sum) <= threshold {
		uniform := 1 / float64(n)
		for i := range probs {
			probs[i] = uniform
		}
		return probs
	}

	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
