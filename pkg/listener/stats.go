package listener

import (
	"math"
	"sync"
	"time"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Summary describes the fitness of one population. Fields are NaN when no
// individual is evaluated.
type Summary struct {
	Best  float64 `json:"best"`
	Worst float64 `json:"worst"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Size  int     `json:"size"`
}

// Summarize computes the fitness summary of state. Best and worst follow the
// state's ranker; mean and std cover evaluated individuals only.
func Summarize[T any](state core.State[T]) Summary {
	s := Summary{Best: math.NaN(), Worst: math.NaN(), Mean: math.NaN(), Std: math.NaN(), Size: state.Size()}
	pop := state.Population()
	if best, ok := core.Best(state.Ranker(), pop); ok && best.IsEvaluated() {
		s.Best = best.Fitness()
	}
	if worst, ok := core.Worst(state.Ranker(), pop); ok && worst.IsEvaluated() {
		s.Worst = worst.Fitness()
	}

	var acc RunningStats
	for _, ind := range pop {
		if ind.IsEvaluated() {
			acc.Update(ind.Fitness())
		}
	}
	if acc.Count > 0 {
		s.Mean = acc.Mean
		s.Std = acc.Std
	}
	return s
}

// RunningStats tracks the minimum, maximum, mean and standard deviation of a
// stream of values without storing them.
type RunningStats struct {
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	Std        float64   `json:"std"`
	Count      int       `json:"count"`
	LastUpdate time.Time `json:"last_update"`
}

// Update folds x into the statistics.
func (r *RunningStats) Update(x float64) {
	r.Count++
	if r.Count == 1 {
		r.Min, r.Max, r.Mean, r.Std = x, x, x, 0
		r.LastUpdate = time.Now()
		return
	}
	r.Min = math.Min(r.Min, x)
	r.Max = math.Max(r.Max, x)

	// Online algorithm for mean and std
	delta := x - r.Mean
	r.Mean += delta / float64(r.Count)
	delta2 := x - r.Mean
	r.Std = math.Sqrt((float64(r.Count-1)*r.Std*r.Std + delta*delta2) / float64(r.Count))
	r.LastUpdate = time.Now()
}

// GenerationStats is the record Stats keeps for one generation.
type GenerationStats struct {
	Generation  int                     `json:"generation"`
	Fitness     Summary                 `json:"fitness"`
	Evaluations int                     `json:"evaluations"`
	Duration    time.Duration           `json:"duration"`
	Phases      map[Phase]time.Duration `json:"phases"`
}

// Stats records per-generation fitness summaries, evaluation counts and
// phase durations. It is safe to read while a run is in progress.
type Stats[T any] struct {
	Phased[T]

	mu          sync.Mutex
	now         func() time.Time
	history     []GenerationStats
	best        RunningStats
	evaluations int
	startedAt   time.Time
	endedAt     time.Time

	current    GenerationStats
	genStart   time.Time
	phaseStart map[Phase]time.Time
}

// NewStats returns an empty statistics listener.
func NewStats[T any]() *Stats[T] {
	return NewStatsWithClock[T](time.Now)
}

// NewStatsWithClock returns a statistics listener reading time from now.
func NewStatsWithClock[T any](now func() time.Time) *Stats[T] {
	s := &Stats[T]{now: now, phaseStart: make(map[Phase]time.Time)}
	s.Handler = s
	return s
}

func (s *Stats[T]) EvolutionStarted(core.State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = s.now()
}

func (s *Stats[T]) EvolutionEnded(core.State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endedAt = s.now()
}

func (s *Stats[T]) GenerationStarted(state core.State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genStart = s.now()
	s.current = GenerationStats{
		Generation: state.Generation(),
		Phases:     make(map[Phase]time.Duration),
	}
}

func (s *Stats[T]) GenerationEnded(state core.State[T]) {
	summary := Summarize(state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Fitness = summary
	s.current.Duration = s.now().Sub(s.genStart)
	if !math.IsNaN(summary.Best) {
		s.best.Update(summary.Best)
	}
	s.history = append(s.history, s.current)
}

func (s *Stats[T]) PhaseStarted(phase Phase, state core.State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phaseStart[phase] = s.now()
	if phase == Evaluation {
		n := state.Population().Unevaluated()
		s.current.Evaluations += n
		s.evaluations += n
	}
}

func (s *Stats[T]) PhaseEnded(phase Phase, _ core.State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start, ok := s.phaseStart[phase]; ok {
		s.current.Phases[phase] += s.now().Sub(start)
		delete(s.phaseStart, phase)
	}
}

// History returns a copy of the per-generation records.
func (s *Stats[T]) History() []GenerationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GenerationStats, len(s.history))
	copy(out, s.history)
	return out
}

// Last returns the most recent record.
func (s *Stats[T]) Last() (GenerationStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return GenerationStats{}, false
	}
	return s.history[len(s.history)-1], true
}

// Evaluations returns the number of fitness evaluations requested so far.
func (s *Stats[T]) Evaluations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluations
}

// BestFitness returns running statistics over the best fitness of each
// generation.
func (s *Stats[T]) BestFitness() RunningStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// Elapsed returns the wall-clock time of the run, up to now while it is
// still in progress.
func (s *Stats[T]) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.startedAt.IsZero():
		return 0
	case s.endedAt.IsZero():
		return s.now().Sub(s.startedAt)
	default:
		return s.endedAt.Sub(s.startedAt)
	}
}
