// Package selector chooses sub-populations for parenting and survival.
package selector

import (
	"fmt"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Selector reduces a population to outputSize individuals. Selection may
// repeat individuals.
type Selector[T any] interface {
	Select(pop core.Population[T], outputSize int, ranker core.Ranker[T], domain *core.Domain) (core.Population[T], error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc[T any] func(pop core.Population[T], outputSize int, ranker core.Ranker[T], domain *core.Domain) (core.Population[T], error)

func (f SelectorFunc[T]) Select(pop core.Population[T], outputSize int, ranker core.Ranker[T], domain *core.Domain) (core.Population[T], error) {
	return f(pop, outputSize, ranker, domain)
}

// checkInput validates the arguments shared by every selector. The second
// result is true when there is nothing to select.
func checkInput[T any](pop core.Population[T], outputSize int) (bool, error) {
	switch {
	case outputSize < 0:
		return false, fmt.Errorf("%w: negative output size %d", core.ErrInvalidArgument, outputSize)
	case outputSize == 0:
		return true, nil
	case len(pop) == 0:
		return false, fmt.Errorf("%w: cannot select %d individuals from an empty population", core.ErrInvalidArgument, outputSize)
	}
	return false, nil
}
