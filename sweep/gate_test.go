package sweep

import (
	"testing"

	"github.com/gomlx/opsweep/graph"
	"github.com/stretchr/testify/require"
)

func TestGatePolicy(t *testing.T) {
	ops := []graph.OpType{graph.OpTypeConv2D, graph.OpTypeBatchMatMul, graph.OpTypeFullyConnected}
	for _, op := range ops {
		// The interpreter never self-compares at full float.
		require.False(t, IsApplicable("interp", op, Reference), "%s", op)
		require.True(t, IsApplicable("parallel", op, Reference), "%s", op)

		// Reduced-precision modes include the interpreter's own conversion path.
		for _, mode := range []PrecisionMode{ReducedFloat, Quantized} {
			require.True(t, IsApplicable("interp", op, mode), "%s at %s", op, mode)
			require.True(t, IsApplicable("parallel", op, mode), "%s at %s", op, mode)
		}

		// Unknown backends are never applicable.
		for _, mode := range Modes() {
			require.False(t, IsApplicable("opencl", op, mode), "%s at %s", op, mode)
		}
	}
}

func TestApplicableBackends(t *testing.T) {
	require.Equal(t, []string{"parallel"},
		ApplicableBackends(graph.OpTypeConv2D, Reference))
	require.Equal(t, []string{"interp", "parallel"},
		ApplicableBackends(graph.OpTypeFullyConnected, Quantized))
	require.Empty(t, ApplicableBackends(graph.OpTypeInvalid, Reference))
}

func TestToleranceTable(t *testing.T) {
	// The literals are carried over from the original sweeps; they are
	// load-bearing and must not drift.
	require.Equal(t, 0.0001, Tolerance(graph.OpTypeConv2D, Reference))
	require.Equal(t, 0.045, Tolerance(graph.OpTypeConv2D, Quantized))
	require.Equal(t, 0.005, Tolerance(graph.OpTypeConv2D, ReducedFloat))
	require.Equal(t, 0.0001, Tolerance(graph.OpTypeBatchMatMul, Reference))
	require.Equal(t, 0.06, Tolerance(graph.OpTypeBatchMatMul, Quantized))
	require.Equal(t, 0.005, Tolerance(graph.OpTypeBatchMatMul, ReducedFloat))
	require.Equal(t, 0.0001, Tolerance(graph.OpTypeFullyConnected, Reference))
	require.Equal(t, 0.065, Tolerance(graph.OpTypeFullyConnected, Quantized))
	require.Equal(t, 0.004, Tolerance(graph.OpTypeFullyConnected, ReducedFloat))

	require.Panics(t, func() { Tolerance(graph.OpTypeInvalid, Reference) })
}

func TestPrecisionModeDTypes(t *testing.T) {
	require.Equal(t, "Float32", Reference.DType().String())
	require.Equal(t, "Float16", ReducedFloat.DType().String())
	require.Equal(t, "Int8", Quantized.DType().String())
}
