package sweep

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"slices"
)

// Configuration is one point of the test space: a backend to compare against
// the reference, plus the integer dimensions of the network to build.
// Immutable once enumerated.
type Configuration struct {
	Backend string
	Dims    []int
}

// String implements fmt.Stringer, e.g. `parallel/[7 8 3]`.
func (c Configuration) String() string {
	return fmt.Sprintf("%s/%v", c.Backend, c.Dims)
}

// Expand produces the full Cartesian product of the backend identifiers and
// the given dimension value sets, in a stable order: backends outermost, then
// each dimension set in the order given, last set varying fastest.
//
// No combination is filtered here -- applicability is the gate's concern, see
// IsApplicable.
func Expand(backendIDs []string, dimSets ...[]int) []Configuration {
	if len(backendIDs) == 0 {
		return nil
	}
	total := len(backendIDs)
	for axis, set := range dimSets {
		if len(set) == 0 {
			exceptions.Panicf("sweep.Expand: empty dimension value set at position %d", axis)
		}
		total *= len(set)
	}
	configs := make([]Configuration, 0, total)
	dims := make([]int, len(dimSets))
	for _, backend := range backendIDs {
		expandRecursive(&configs, backend, dimSets, dims, 0)
	}
	return configs
}

func expandRecursive(configs *[]Configuration, backend string, dimSets [][]int, dims []int, axis int) {
	if axis == len(dimSets) {
		*configs = append(*configs, Configuration{Backend: backend, Dims: slices.Clone(dims)})
		return
	}
	for _, value := range dimSets[axis] {
		dims[axis] = value
		expandRecursive(configs, backend, dimSets, dims, axis+1)
	}
}

// Range returns the ordered integers [from, to), a convenience for defining
// dimension value sets.
func Range(from, to int) []int {
	if to < from {
		exceptions.Panicf("sweep.Range(%d, %d): empty range", from, to)
	}
	values := make([]int, 0, to-from)
	for v := from; v < to; v++ {
		values = append(values, v)
	}
	return values
}
