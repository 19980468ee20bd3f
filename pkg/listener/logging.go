package listener

import (
	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Logging writes one Info line per generation and Debug lines at phase
// boundaries.
type Logging[T any] struct {
	Phased[T]
	logger *logrus.Logger
	fields logrus.Fields
}

// NewLogging returns a logging listener. fields are attached to every entry,
// typically the run ID.
func NewLogging[T any](logger *logrus.Logger, fields logrus.Fields) *Logging[T] {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}
	l := &Logging[T]{logger: logger, fields: fields}
	l.Handler = l
	return l
}

func (l *Logging[T]) entry(state core.State[T]) *logrus.Entry {
	return l.logger.WithFields(l.fields).WithFields(logrus.Fields{
		"generation": state.Generation(),
		"population": state.Size(),
	})
}

func (l *Logging[T]) EvolutionStarted(state core.State[T]) {
	l.entry(state).Info("Evolution started")
}

func (l *Logging[T]) EvolutionEnded(state core.State[T]) {
	e := l.entry(state)
	if best, ok := state.Best(); ok && best.IsEvaluated() {
		e = e.WithField("best_fitness", best.Fitness())
	}
	e.Info("Evolution ended")
}

func (l *Logging[T]) GenerationEnded(state core.State[T]) {
	summary := Summarize(state)
	l.entry(state).WithFields(logrus.Fields{
		"best_fitness":  summary.Best,
		"mean_fitness":  summary.Mean,
		"worst_fitness": summary.Worst,
	}).Info("Generation completed")
}

func (l *Logging[T]) PhaseStarted(phase Phase, state core.State[T]) {
	l.entry(state).WithField("phase", phase).Debug("Phase started")
}

func (l *Logging[T]) PhaseEnded(phase Phase, state core.State[T]) {
	l.entry(state).WithField("phase", phase).Debug("Phase ended")
}
