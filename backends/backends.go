// Package backends defines the interface an execution engine needs to
// implement to run the harness' computation graphs, and the registry through
// which engines are looked up by name.
//
// Two backends ship with this repository: "interp", the sequential reference
// interpreter (backends/interp), and "parallel", the goroutine-parallel engine
// tested against it (backends/parallel). Import the implementation packages
// for their side effect of registering themselves:
//
//	import (
//		_ "github.com/gomlx/opsweep/backends/interp"
//		_ "github.com/gomlx/opsweep/backends/parallel"
//	)
package backends

import (
	"sort"

	"github.com/gomlx/opsweep/graph"
	"github.com/gomlx/opsweep/types/tensors"
	"github.com/pkg/errors"
)

// Backend is an execution engine capable of running a single-operator graph.
type Backend interface {
	// Name returns the short name of the backend, the identifier used in the registry.
	Name() string

	// Description is a longer description of the Backend that can be used to pretty-print.
	Description() string

	// Capabilities returns which operations and dtypes the backend supports.
	Capabilities() Capabilities

	// Execute runs the graph and returns the tensor bound to its saved output.
	// The output tensor dtype always matches the graph dtype.
	Execute(g *graph.Graph) (*tensors.Tensor, error)
}

// Constructor returns a new instance of a backend.
type Constructor func() Backend

var registeredConstructors = make(map[string]Constructor)

// Register a backend constructor under the given name.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	registeredConstructors[name] = constructor
}

// New returns a new instance of the backend registered under name.
func New(name string) (Backend, error) {
	constructor, found := registeredConstructors[name]
	if !found {
		return nil, errors.Errorf("backend %q is not registered (registered: %v) -- missing an import of its package for the side effect of registration?",
			name, Registered())
	}
	return constructor(), nil
}

// Registered returns the sorted names of all registered backends.
func Registered() []string {
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
