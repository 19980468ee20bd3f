// Package alterer transforms populations with crossover and mutation.
package alterer

import (
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Alterer produces a state whose population holds exactly outputSize
// individuals. Altered individuals are unevaluated.
type Alterer[T any] interface {
	Alter(state core.State[T], outputSize int, domain *core.Domain) (core.State[T], error)
}

// AltererFunc adapts a function to the Alterer interface.
type AltererFunc[T any] func(state core.State[T], outputSize int, domain *core.Domain) (core.State[T], error)

func (f AltererFunc[T]) Alter(state core.State[T], outputSize int, domain *core.Domain) (core.State[T], error) {
	return f(state, outputSize, domain)
}
