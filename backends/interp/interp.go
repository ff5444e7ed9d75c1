// Package interp implements the reference interpreter backend ("interp"): a
// sequential, portable evaluator for the harness' single-operator graphs.
//
// It is the engine every other backend is compared against, so it is written
// for clarity over speed: inputs are widened to float32 (dequantized when
// int8), kernels accumulate in float64, and the result is narrowed back to the
// graph's dtype at the end.
package interp

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/backends"
	"github.com/gomlx/opsweep/graph"
	"github.com/gomlx/opsweep/internal/kernels"
	"github.com/gomlx/opsweep/types/tensors"
	"github.com/pkg/errors"
)

// BackendName is the identifier of this backend in the registry.
const BackendName = "interp"

func init() {
	backends.Register(BackendName, New)
}

// New constructs the interpreter backend.
func New() backends.Backend {
	return &Backend{}
}

// Backend implements backends.Backend sequentially.
type Backend struct{}

// Compile-time check that interp.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name implements backends.Backend.
func (b *Backend) Name() string { return BackendName }

// Description implements backends.Backend.
func (b *Backend) Description() string { return "Sequential reference interpreter" }

// Capabilities of the interpreter: every operator at every dtype the harness knows.
var Capabilities = backends.Capabilities{
	Operations: map[graph.OpType]bool{
		graph.OpTypeConv2D:         true,
		graph.OpTypeBatchMatMul:    true,
		graph.OpTypeFullyConnected: true,
	},
	DTypes: map[dtypes.DType]bool{
		dtypes.Float32: true,
		dtypes.Float16: true,
		dtypes.Int8:    true,
	},
}

// Capabilities implements backends.Backend.
func (b *Backend) Capabilities() backends.Capabilities { return Capabilities.Clone() }

// Execute implements backends.Backend by evaluating the graph's single
// operation over its full output range in one call.
func (b *Backend) Execute(g *graph.Graph) (*tensors.Tensor, error) {
	ev, err := NewEvaluation(g, b.Capabilities())
	if err != nil {
		return nil, err
	}
	ev.Run(0, ev.Rows())
	return ev.Output(), nil
}

// Evaluation is one prepared execution of a graph: inputs widened to float32
// and output buffer allocated. The work is partitioned in "rows" (the
// outermost output axis of the operator) so backends can schedule ranges as
// they see fit; Run may be called concurrently on disjoint ranges.
//
// It is shared with the parallel backend, which differs from the interpreter
// only in scheduling.
type Evaluation struct {
	g      *graph.Graph
	op     *graph.Node
	inputs [][]float32
	out    []float32

	conv       kernels.ConvParams
	n, a, z, c int // BatchMatMul / FullyConnected dimensions.
}

// NewEvaluation validates the graph against the capabilities and prepares the
// input and output buffers.
func NewEvaluation(g *graph.Graph, capabilities backends.Capabilities) (*Evaluation, error) {
	op := g.Op()
	if op == nil || g.Output() == nil {
		return nil, errors.Errorf("graph %q has no computation or no saved output", g.Name())
	}
	if g.Output() != op {
		return nil, errors.Errorf("graph %q: saved output is not the computation node", g.Name())
	}
	if !capabilities.Supports(op.OpType(), g.DType()) {
		return nil, errors.Errorf("op %s at dtype %s is not implemented by this backend",
			op.OpType(), g.DType())
	}

	ev := &Evaluation{g: g, op: op}
	ev.inputs = make([][]float32, len(op.Inputs()))
	for ii, input := range op.Inputs() {
		ev.inputs[ii] = input.Tensor().ConvertTo(dtypes.Float32).Float32s()
	}
	ev.out = make([]float32, op.Shape().Size())

	switch op.OpType() {
	case graph.OpTypeConv2D:
		attrs := op.ConvAttrs()
		inShape := op.Inputs()[0].Shape()
		ev.conv = kernels.ConvParams{
			Batch:       inShape.Dim(0),
			InSize:      inShape.Dim(1),
			InChannels:  inShape.Dim(-1),
			Kernel:      attrs.Kernel,
			Stride:      attrs.Stride,
			Pad:         attrs.Pad,
			OutChannels: attrs.OutChannels,
		}
	case graph.OpTypeBatchMatMul:
		lhs, rhs := op.Inputs()[0].Shape(), op.Inputs()[1].Shape()
		ev.n, ev.a, ev.z, ev.c = lhs.Dim(0), lhs.Dim(1), lhs.Dim(2), rhs.Dim(2)
	case graph.OpTypeFullyConnected:
		in, weights := op.Inputs()[0].Shape(), op.Inputs()[1].Shape()
		ev.a, ev.z, ev.c = in.Dim(0), in.Dim(1), weights.Dim(1)
	default:
		return nil, errors.Errorf("unknown op type %s", op.OpType())
	}
	return ev, nil
}

// Rows is the total number of partitionable work rows.
func (ev *Evaluation) Rows() int {
	switch ev.op.OpType() {
	case graph.OpTypeConv2D:
		return ev.conv.Rows()
	case graph.OpTypeBatchMatMul:
		return ev.n
	default:
		return ev.a
	}
}

// Run evaluates output rows [from, to).
func (ev *Evaluation) Run(from, to int) {
	switch ev.op.OpType() {
	case graph.OpTypeConv2D:
		kernels.Conv2D(ev.out, ev.inputs[0], ev.inputs[1], ev.inputs[2], ev.conv, from, to)
	case graph.OpTypeBatchMatMul:
		kernels.BatchMatMul(ev.out, ev.inputs[0], ev.inputs[1], ev.n, ev.a, ev.z, ev.c, from, to)
	case graph.OpTypeFullyConnected:
		kernels.FullyConnected(ev.out, ev.inputs[0], ev.inputs[1], ev.inputs[2], ev.a, ev.z, ev.c, from, to)
	}
}

// Output narrows the float32 result buffer back to the graph dtype.
// Call it only after all rows were run.
func (ev *Evaluation) Output() *tensors.Tensor {
	result := tensors.FromFlatDataAndDimensions(ev.out, ev.op.Shape().Dimensions...)
	if ev.g.DType() == dtypes.Float32 {
		return result
	}
	return result.ConvertTo(ev.g.DType())
}
