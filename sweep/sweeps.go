package sweep

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/opsweep/graph"
	"github.com/pkg/errors"
)

// Tolerance returns the allowed maximum absolute output difference for the
// given operator and candidate precision mode.
//
// The values are empirical, carried over from the original sweeps unchanged:
// they are load-bearing for existing pass/fail behavior and do not
// necessarily generalize to shapes outside the canonical dimension sets.
func Tolerance(op graph.OpType, mode PrecisionMode) float64 {
	tolerance, found := tolerances[gateKey{op, mode}]
	if !found {
		exceptions.Panicf("sweep.Tolerance: no tolerance defined for %s at %s", op, mode)
	}
	return tolerance
}

var tolerances = map[gateKey]float64{
	{graph.OpTypeConv2D, Reference}:    0.0001,
	{graph.OpTypeConv2D, Quantized}:    0.045,
	{graph.OpTypeConv2D, ReducedFloat}: 0.005,

	{graph.OpTypeBatchMatMul, Reference}:    0.0001,
	{graph.OpTypeBatchMatMul, Quantized}:    0.06,
	{graph.OpTypeBatchMatMul, ReducedFloat}: 0.005,

	{graph.OpTypeFullyConnected, Reference}:    0.0001,
	{graph.OpTypeFullyConnected, Quantized}:    0.065,
	{graph.OpTypeFullyConnected, ReducedFloat}: 0.004,
}

// Sweep is a family of configurations for one operator: the dimension value
// sets to combine and the builder binding one dimension tuple to a Net.
type Sweep struct {
	Kind    graph.OpType
	DimSets [][]int
	NewNet  func(dims []int) Net
}

// ConvSweep is the canonical convolution sweep:
// size x depth x kernel.
func ConvSweep() Sweep {
	return Sweep{
		Kind:    graph.OpTypeConv2D,
		DimSets: [][]int{{5, 7, 15}, {8, 64}, {1, 3}},
		NewNet:  func(dims []int) Net { return ConvNet(dims[0], dims[1], dims[2]) },
	}
}

// BatchMatMulSweep is the canonical batched-matmul sweep:
// N x A x Z (B = A).
func BatchMatMulSweep() Sweep {
	return Sweep{
		Kind:    graph.OpTypeBatchMatMul,
		DimSets: [][]int{{1, 4, 16, 24}, Range(10, 16), {32, 64, 128, 256}},
		NewNet:  func(dims []int) Net { return BatchMatMulNet(dims[0], dims[1], dims[2]) },
	}
}

// FCSweep is the canonical fully-connected sweep:
// A x Z x B.
func FCSweep() Sweep {
	return Sweep{
		Kind:    graph.OpTypeFullyConnected,
		DimSets: [][]int{{1, 4, 16, 64}, {256, 512, 1024, 2048, 4096}, {64, 256, 1024}},
		NewNet:  func(dims []int) Net { return FCNet(dims[0], dims[1], dims[2]) },
	}
}

// Sweeps returns the three canonical operator sweeps.
func Sweeps() []Sweep {
	return []Sweep{ConvSweep(), BatchMatMulSweep(), FCSweep()}
}

// Outcome of one configuration.
type Outcome int

const (
	// OutcomePass: outputs agreed within tolerance.
	OutcomePass Outcome = iota
	// OutcomeFail: tolerance exceeded, shape mismatch or execution error.
	OutcomeFail
	// OutcomeSkip: gated out or unsupported; contributes no pass/fail signal.
	OutcomeSkip
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "FAIL"
	case OutcomeSkip:
		return "skip"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Record is the evaluated outcome of one configuration of a sweep.
type Record struct {
	Config    Configuration
	Mode      PrecisionMode
	Outcome   Outcome
	MaxDiff   float64
	Tolerance float64
	Err       error
}

// Run evaluates every configuration of the sweep at the given candidate mode
// against the listed backends, returning one record per configuration.
// A failing configuration is recorded and the sweep continues: one
// configuration never aborts the others.
func (s Sweep) Run(backendIDs []string, mode PrecisionMode, seed uint64) []Record {
	tolerance := Tolerance(s.Kind, mode)
	configs := Expand(backendIDs, s.DimSets...)
	records := make([]Record, 0, len(configs))
	for _, config := range configs {
		record := Record{Config: config, Mode: mode, Tolerance: tolerance}
		result, err := CompareAgainstReference(s.NewNet(config.Dims), config.Backend,
			Reference, mode, tolerance, seed)
		record.MaxDiff = result.MaxDiff
		switch {
		case !result.Applicable, errors.Is(err, ErrUnsupportedConfiguration):
			record.Outcome = OutcomeSkip
		case err != nil:
			record.Outcome = OutcomeFail
			record.Err = err
		default:
			record.Outcome = OutcomePass
		}
		records = append(records, record)
	}
	return records
}
