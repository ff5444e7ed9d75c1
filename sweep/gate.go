package sweep

import (
	"github.com/gomlx/opsweep/backends/interp"
	"github.com/gomlx/opsweep/backends/parallel"
	"github.com/gomlx/opsweep/graph"
	"slices"
)

// The backend gate is the single place that says which backends take part in
// which (operator, precision) comparison. Inapplicable combinations are
// skipped without contributing a pass/fail signal. Adding a backend means
// adding its name to the entries here, not branching in test bodies.
//
// Policy: full-float comparisons run only against backends with an execution
// strategy of their own -- comparing the interpreter to itself at the same
// representation proves nothing. Reduced-precision comparisons additionally
// include the interpreter itself, verifying its own conversion path, plus any
// backend advertising that precision.

type gateKey struct {
	op   graph.OpType
	mode PrecisionMode
}

var gateTable = map[gateKey][]string{
	{graph.OpTypeConv2D, Reference}:    {parallel.BackendName},
	{graph.OpTypeConv2D, Quantized}:    {interp.BackendName, parallel.BackendName},
	{graph.OpTypeConv2D, ReducedFloat}: {interp.BackendName, parallel.BackendName},

	{graph.OpTypeBatchMatMul, Reference}:    {parallel.BackendName},
	{graph.OpTypeBatchMatMul, Quantized}:    {interp.BackendName, parallel.BackendName},
	{graph.OpTypeBatchMatMul, ReducedFloat}: {interp.BackendName, parallel.BackendName},

	{graph.OpTypeFullyConnected, Reference}:    {parallel.BackendName},
	{graph.OpTypeFullyConnected, Quantized}:    {interp.BackendName, parallel.BackendName},
	{graph.OpTypeFullyConnected, ReducedFloat}: {interp.BackendName, parallel.BackendName},
}

// IsApplicable reports whether the backend takes part in the comparison for
// the given operator and candidate precision mode.
func IsApplicable(backendID string, op graph.OpType, mode PrecisionMode) bool {
	return slices.Contains(gateTable[gateKey{op, mode}], backendID)
}

// ApplicableBackends returns the backends gated in for the given operator and
// mode, in table order.
func ApplicableBackends(op graph.OpType, mode PrecisionMode) []string {
	return slices.Clone(gateTable[gateKey{op, mode}])
}
