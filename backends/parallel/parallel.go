// Package parallel implements the "parallel" backend: the same numerics as
// the reference interpreter, scheduled across goroutines.
//
// Work is partitioned by output rows; each element of the output is computed
// by exactly one goroutine with the same arithmetic as the interpreter, so
// the two backends agree bit for bit. This is the candidate engine the sweep
// harness exercises against the interpreter.
package parallel

import (
	"runtime"
	"sync"

	"github.com/gomlx/opsweep/backends"
	"github.com/gomlx/opsweep/backends/interp"
	"github.com/gomlx/opsweep/graph"
	"github.com/gomlx/opsweep/types/tensors"
)

// BackendName is the identifier of this backend in the registry.
const BackendName = "parallel"

func init() {
	backends.Register(BackendName, New)
}

// New constructs the parallel backend using all available CPUs.
func New() backends.Backend {
	return &Backend{workers: runtime.NumCPU()}
}

// Backend implements backends.Backend with goroutine-parallel scheduling.
type Backend struct {
	workers int
}

// Compile-time check that parallel.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name implements backends.Backend.
func (b *Backend) Name() string { return BackendName }

// Description implements backends.Backend.
func (b *Backend) Description() string { return "Goroutine-parallel engine" }

// Capabilities implements backends.Backend. The kernels are shared with the
// interpreter, so the supported surface is the same.
func (b *Backend) Capabilities() backends.Capabilities { return interp.Capabilities.Clone() }

// Execute implements backends.Backend, splitting the output rows in near-equal
// chunks across workers.
func (b *Backend) Execute(g *graph.Graph) (*tensors.Tensor, error) {
	ev, err := interp.NewEvaluation(g, b.Capabilities())
	if err != nil {
		return nil, err
	}
	rows := ev.Rows()
	workers := min(b.workers, rows)
	if workers <= 1 {
		ev.Run(0, rows)
		return ev.Output(), nil
	}

	var wg sync.WaitGroup
	chunk := (rows + workers - 1) / workers
	for from := 0; from < rows; from += chunk {
		to := min(from+chunk, rows)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev.Run(from, to)
		}()
	}
	wg.Wait()
	return ev.Output(), nil
}
