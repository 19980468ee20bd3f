package listener

import (
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Phase names a step of a generation.
type Phase string

const (
	Initialization    Phase = "initialization"
	Evaluation        Phase = "evaluation"
	ParentSelection   Phase = "parent_selection"
	SurvivorSelection Phase = "survivor_selection"
	Alteration        Phase = "alteration"
)

// Phases lists every phase in loop order.
var Phases = []Phase{Initialization, Evaluation, ParentSelection, SurvivorSelection, Alteration}

// PhaseHandler receives phase boundaries as values instead of one hook per
// phase.
type PhaseHandler[T any] interface {
	PhaseStarted(phase Phase, state core.State[T])
	PhaseEnded(phase Phase, state core.State[T])
}

// Phased turns the per-phase hooks into PhaseHandler calls. Evolution and
// generation hooks are no-ops; embedders override them as needed.
type Phased[T any] struct {
	Base[T]
	Handler PhaseHandler[T]
}

func (p Phased[T]) InitializationStarted(s core.State[T]) {
	p.Handler.PhaseStarted(Initialization, s)
}

func (p Phased[T]) InitializationEnded(s core.State[T]) {
	p.Handler.PhaseEnded(Initialization, s)
}

func (p Phased[T]) EvaluationStarted(s core.State[T]) {
	p.Handler.PhaseStarted(Evaluation, s)
}

func (p Phased[T]) EvaluationEnded(s core.State[T]) {
	p.Handler.PhaseEnded(Evaluation, s)
}

func (p Phased[T]) ParentSelectionStarted(s core.State[T]) {
	p.Handler.PhaseStarted(ParentSelection, s)
}

func (p Phased[T]) ParentSelectionEnded(s core.State[T]) {
	p.Handler.PhaseEnded(ParentSelection, s)
}

func (p Phased[T]) SurvivorSelectionStarted(s core.State[T]) {
	p.Handler.PhaseStarted(SurvivorSelection, s)
}

func (p Phased[T]) SurvivorSelectionEnded(s core.State[T]) {
	p.Handler.PhaseEnded(SurvivorSelection, s)
}

func (p Phased[T]) AlterationStarted(s core.State[T]) {
	p.Handler.PhaseStarted(Alteration, s)
}

func (p Phased[T]) AlterationEnded(s core.State[T]) {
	p.Handler.PhaseEnded(Alteration, s)
}
