package core

// State is an immutable snapshot of a run: the generation number, the ranker
// and the population. Every phase of the loop produces a new State.
type State[T any] struct {
	generation int
	ranker     Ranker[T]
	population Population[T]
}

// NewState returns a generation-zero state.
func NewState[T any](ranker Ranker[T], population Population[T]) State[T] {
	return State[T]{ranker: ranker, population: population.Clone()}
}

// EmptyState returns a generation-zero state without individuals. The evolver
// initializes its population on the first generation.
func EmptyState[T any](ranker Ranker[T]) State[T] {
	return State[T]{ranker: ranker}
}

func (s State[T]) Generation() int { return s.generation }

func (s State[T]) Ranker() Ranker[T] { return s.ranker }

// Population returns a copy of the population.
func (s State[T]) Population() Population[T] { return s.population.Clone() }

func (s State[T]) Size() int { return len(s.population) }

func (s State[T]) IsEmpty() bool { return len(s.population) == 0 }

// WithPopulation returns a state holding population, keeping the generation
// and ranker.
func (s State[T]) WithPopulation(population Population[T]) State[T] {
	s.population = population.Clone()
	return s
}

// WithGeneration returns a state at generation, keeping the ranker and
// population.
func (s State[T]) WithGeneration(generation int) State[T] {
	s.generation = generation
	return s
}

// Advance returns the state of the next generation.
func (s State[T]) Advance() State[T] {
	s.generation++
	return s
}

// Best returns the best individual under the state's ranker.
func (s State[T]) Best() (Individual[T], bool) {
	return Best(s.ranker, s.population)
}
