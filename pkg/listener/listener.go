// Package listener defines the lifecycle hooks of an evolution run and the
// observers shipped with the engine.
//
// Listeners are called synchronously, in configuration order, at every phase
// boundary. They observe states and must not change the run.
package listener

import (
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Listener receives every lifecycle hook of a run.
type Listener[T any] interface {
	EvolutionStarted(state core.State[T])
	EvolutionEnded(state core.State[T])
	GenerationStarted(state core.State[T])
	GenerationEnded(state core.State[T])
	InitializationStarted(state core.State[T])
	InitializationEnded(state core.State[T])
	EvaluationStarted(state core.State[T])
	EvaluationEnded(state core.State[T])
	ParentSelectionStarted(state core.State[T])
	ParentSelectionEnded(state core.State[T])
	SurvivorSelectionStarted(state core.State[T])
	SurvivorSelectionEnded(state core.State[T])
	AlterationStarted(state core.State[T])
	AlterationEnded(state core.State[T])
}

// FailureHandler is implemented by listeners that want the error a run
// aborted with. EvolutionFailed is called right before EvolutionEnded.
type FailureHandler interface {
	EvolutionFailed(err error)
}

// Base implements every hook as a no-op. Embed it and override the hooks of
// interest.
type Base[T any] struct{}

func (Base[T]) EvolutionStarted(core.State[T])         {}
func (Base[T]) EvolutionEnded(core.State[T])           {}
func (Base[T]) GenerationStarted(core.State[T])        {}
func (Base[T]) GenerationEnded(core.State[T])          {}
func (Base[T]) InitializationStarted(core.State[T])    {}
func (Base[T]) InitializationEnded(core.State[T])      {}
func (Base[T]) EvaluationStarted(core.State[T])        {}
func (Base[T]) EvaluationEnded(core.State[T])          {}
func (Base[T]) ParentSelectionStarted(core.State[T])   {}
func (Base[T]) ParentSelectionEnded(core.State[T])     {}
func (Base[T]) SurvivorSelectionStarted(core.State[T]) {}
func (Base[T]) SurvivorSelectionEnded(core.State[T])   {}
func (Base[T]) AlterationStarted(core.State[T])        {}
func (Base[T]) AlterationEnded(core.State[T])          {}

// List forwards every hook to its listeners in order.
type List[T any] []Listener[T]

func (l List[T]) EvolutionStarted(s core.State[T]) {
	for _, x := range l {
		x.EvolutionStarted(s)
	}
}

func (l List[T]) EvolutionEnded(s core.State[T]) {
	for _, x := range l {
		x.EvolutionEnded(s)
	}
}

// EvolutionFailed forwards err to the listeners implementing FailureHandler.
func (l List[T]) EvolutionFailed(err error) {
	for _, x := range l {
		if h, ok := x.(FailureHandler); ok {
			h.EvolutionFailed(err)
		}
	}
}

func (l List[T]) GenerationStarted(s core.State[T]) {
	for _, x := range l {
		x.GenerationStarted(s)
	}
}

func (l List[T]) GenerationEnded(s core.State[T]) {
	for _, x := range l {
		x.GenerationEnded(s)
	}
}

func (l List[T]) InitializationStarted(s core.State[T]) {
	for _, x := range l {
		x.InitializationStarted(s)
	}
}

func (l List[T]) InitializationEnded(s core.State[T]) {
	for _, x := range l {
		x.InitializationEnded(s)
	}
}

func (l List[T]) EvaluationStarted(s core.State[T]) {
	for _, x := range l {
		x.EvaluationStarted(s)
	}
}

func (l List[T]) EvaluationEnded(s core.State[T]) {
	for _, x := range l {
		x.EvaluationEnded(s)
	}
}

func (l List[T]) ParentSelectionStarted(s core.State[T]) {
	for _, x := range l {
		x.ParentSelectionStarted(s)
	}
}

func (l List[T]) ParentSelectionEnded(s core.State[T]) {
	for _, x := range l {
		x.ParentSelectionEnded(s)
	}
}

func (l List[T]) SurvivorSelectionStarted(s core.State[T]) {
	for _, x := range l {
		x.SurvivorSelectionStarted(s)
	}
}

func (l List[T]) SurvivorSelectionEnded(s core.State[T]) {
	for _, x := range l {
		x.SurvivorSelectionEnded(s)
	}
}

func (l List[T]) AlterationStarted(s core.State[T]) {
	for _, x := range l {
		x.AlterationStarted(s)
	}
}

func (l List[T]) AlterationEnded(s core.State[T]) {
	for _, x := range l {
		x.AlterationEnded(s)
	}
}
