package sweep

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/graph"
	"github.com/gomlx/opsweep/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = uint64(42)

// testParamSweep runs every applicable configuration of the operator family
// over the given dimension value sets and requires that all of them pass at
// the operator's tolerance for the mode.
func testParamSweep(t *testing.T, s Sweep, mode PrecisionMode, dimSets [][]int) {
	t.Helper()
	tolerance := Tolerance(s.Kind, mode)
	configs := Expand(ApplicableBackends(s.Kind, mode), dimSets...)
	require.NotEmpty(t, configs)
	for _, config := range configs {
		t.Run(config.String(), func(t *testing.T) {
			result, err := CompareAgainstReference(s.NewNet(config.Dims), config.Backend,
				Reference, mode, tolerance, testSeed)
			require.NoError(t, err)
			require.True(t, result.Applicable)
			assert.LessOrEqual(t, result.MaxDiff, tolerance)
		})
	}
}

// The reduced-precision sweeps below run on subsets of the canonical
// dimension sets: the pure-Go backends round outputs to the candidate
// representation, so the largest canonical shapes sit at the edge of the
// carried-over tolerances. The runner exercises the full sets.

func TestConvSweep_Float(t *testing.T) {
	testParamSweep(t, ConvSweep(), Reference, [][]int{{5, 7, 15}, {8, 64}, {1, 3}})
}

func TestConvSweep_Int8(t *testing.T) {
	testParamSweep(t, ConvSweep(), Quantized, [][]int{{5, 7, 15}, {8}, {1, 3}})
}

func TestConvSweep_Float16(t *testing.T) {
	testParamSweep(t, ConvSweep(), ReducedFloat, [][]int{{5, 7, 15}, {8}, {1, 3}})
}

func TestBatchMatMulSweep_Float(t *testing.T) {
	testParamSweep(t, BatchMatMulSweep(), Reference, [][]int{{1, 4, 16, 24}, Range(10, 16), {32, 64, 128, 256}})
}

func TestBatchMatMulSweep_Int8(t *testing.T) {
	testParamSweep(t, BatchMatMulSweep(), Quantized, [][]int{{1, 4, 16}, Range(10, 13), {32, 64, 128}})
}

func TestBatchMatMulSweep_Float16(t *testing.T) {
	testParamSweep(t, BatchMatMulSweep(), ReducedFloat, [][]int{{1, 4, 16}, Range(10, 13), {32, 64, 128}})
}

func TestFCSweep_Float(t *testing.T) {
	testParamSweep(t, FCSweep(), Reference, [][]int{{1, 4, 16}, {256, 512, 1024}, {64, 256}})
}

func TestFCSweep_Int8(t *testing.T) {
	testParamSweep(t, FCSweep(), Quantized, [][]int{{1, 4, 16}, {256, 512}, {64, 256}})
}

func TestFCSweep_Float16(t *testing.T) {
	testParamSweep(t, FCSweep(), ReducedFloat, [][]int{{1, 4, 16}, {256, 512}, {64, 256}})
}

func TestFCFloatAgainstParallelBackend(t *testing.T) {
	// Same representation, same values, only the backend differs: the shared
	// kernels make this an exact match.
	result, err := CompareAgainstReference(FCNet(1, 256, 64), "parallel", Reference, Reference, 0.0001, testSeed)
	require.NoError(t, err)
	require.True(t, result.Applicable)
	require.Zero(t, result.MaxDiff)
}

func TestGatedOutConfigurationIsSkippedWithoutExecuting(t *testing.T) {
	// interp/Reference is gated out: nothing runs, no signal is produced.
	result, err := CompareAgainstReference(FCNet(1, 256, 64), "interp", Reference, Reference, 0.0001, testSeed)
	require.NoError(t, err)
	require.False(t, result.Applicable)
	require.Nil(t, result.Reference)
	require.Nil(t, result.Candidate)
}

func TestDualExecutionIsDeterministic(t *testing.T) {
	net := BatchMatMulNet(4, 10, 32)
	first, err := CompareAgainstReference(net, "interp", Reference, Quantized,
		Tolerance(net.Kind, Quantized), testSeed)
	require.NoError(t, err)
	second, err := CompareAgainstReference(net, "interp", Reference, Quantized,
		Tolerance(net.Kind, Quantized), testSeed)
	require.NoError(t, err)
	require.Equal(t, first.MaxDiff, second.MaxDiff)
	require.Equal(t, first.Candidate.Int8s(), second.Candidate.Int8s())
}

func TestDualExecutionOutputShapes(t *testing.T) {
	reference, candidate, applicable, err := Run(ConvNet(7, 8, 3), "parallel", Reference, ReducedFloat, testSeed)
	require.NoError(t, err)
	require.True(t, applicable)
	// 7 - 3 + 1 = 5.
	require.True(t, reference.Shape().Eq(shapes.Make(dtypes.Float32, 1, 5, 5, 8)))
	require.True(t, candidate.Shape().Eq(shapes.Make(dtypes.Float16, 1, 5, 5, 8)))

	reference, candidate, _, err = Run(BatchMatMulNet(4, 10, 32), "parallel", Reference, Reference, testSeed)
	require.NoError(t, err)
	require.Equal(t, 400, reference.Size())
	require.Equal(t, 400, candidate.Size())
}

func TestNetBuildsAreStructurallyIdentical(t *testing.T) {
	for _, net := range []Net{ConvNet(5, 8, 3), BatchMatMulNet(2, 4, 8), FCNet(2, 16, 4)} {
		t.Run(net.String(), func(t *testing.T) {
			a, b := net.Build(testSeed), net.Build(testSeed)
			require.Equal(t, len(a.Nodes()), len(b.Nodes()))
			for ii, nodeA := range a.Nodes() {
				nodeB := b.Nodes()[ii]
				require.Equal(t, nodeA.Name(), nodeB.Name())
				require.True(t, nodeA.Shape().Eq(nodeB.Shape()))
				if nodeA.Tensor() != nil {
					require.Equal(t, nodeA.Tensor().Float32s(), nodeB.Tensor().Float32s())
				}
			}
			require.Equal(t, net.Kind, a.OpType())
		})
	}
}

func TestNetHasSingleOpAndOutput(t *testing.T) {
	for _, net := range []Net{ConvNet(5, 8, 1), BatchMatMulNet(1, 10, 32), FCNet(1, 256, 64)} {
		g := net.Build(testSeed)
		require.NotNil(t, g.Op())
		require.Equal(t, g.Op(), g.Output())
		ops := 0
		for _, n := range g.Nodes() {
			if n.OpType() != graph.OpTypeInvalid {
				ops++
			}
		}
		require.Equal(t, 1, ops)
	}
}

func TestConvNetFreezesParameters(t *testing.T) {
	g := ConvNet(5, 8, 3).Build(testSeed)
	for _, n := range g.Nodes() {
		switch n.Name() {
		case "input":
			require.False(t, n.IsConstant())
		case "filter", "bias":
			require.True(t, n.IsConstant())
		}
	}
}

func TestSweepRunRecords(t *testing.T) {
	s := Sweep{
		Kind:    graph.OpTypeFullyConnected,
		DimSets: [][]int{{1, 2}, {32}, {8}},
		NewNet:  func(dims []int) Net { return FCNet(dims[0], dims[1], dims[2]) },
	}
	records := s.Run([]string{"interp", "parallel"}, Reference, testSeed)
	require.Len(t, records, 4)

	// interp is gated out at full float; parallel passes.
	for _, record := range records {
		switch record.Config.Backend {
		case "interp":
			require.Equal(t, OutcomeSkip, record.Outcome)
			require.NoError(t, record.Err)
		case "parallel":
			require.Equal(t, OutcomePass, record.Outcome)
			require.LessOrEqual(t, record.MaxDiff, record.Tolerance)
		}
	}
}

func TestSweepRunContinuesPastFailures(t *testing.T) {
	// Gate in a backend name that cannot be constructed: its configurations
	// must fail without aborting the rest of the sweep.
	key := gateKey{graph.OpTypeFullyConnected, Reference}
	saved := gateTable[key]
	gateTable[key] = append([]string{"broken"}, saved...)
	defer func() { gateTable[key] = saved }()

	s := Sweep{
		Kind:    graph.OpTypeFullyConnected,
		DimSets: [][]int{{1, 2}, {32}, {8}},
		NewNet:  func(dims []int) Net { return FCNet(dims[0], dims[1], dims[2]) },
	}
	records := s.Run([]string{"broken", "parallel"}, Reference, testSeed)
	require.Len(t, records, 4)
	for _, record := range records {
		if record.Config.Backend == "broken" {
			require.Equal(t, OutcomeFail, record.Outcome)
			require.ErrorIs(t, record.Err, ErrBackendExecution)
		} else {
			require.Equal(t, OutcomePass, record.Outcome)
		}
	}
}

func TestSweepConfigurationsRunInParallel(t *testing.T) {
	// Configurations share no state; hammer a few of them concurrently.
	net := FCNet(4, 64, 16)
	tolerance := Tolerance(net.Kind, Quantized)
	t.Run("group", func(t *testing.T) {
		for ii := 0; ii < 8; ii++ {
			t.Run("config", func(t *testing.T) {
				t.Parallel()
				result, err := CompareAgainstReference(net, "parallel", Reference, Quantized, tolerance, testSeed)
				require.NoError(t, err)
				require.True(t, result.Applicable)
			})
		}
	})
}
