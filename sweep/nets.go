package sweep

import (
	"fmt"
	"math/rand/v2"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/graph"
	"github.com/gomlx/opsweep/types/shapes"
	"github.com/gomlx/opsweep/types/tensors"
)

// Net is a single-operator network builder bound to specific dimensions.
// Build is pure given the seed: two calls with the same seed produce
// structurally identical graphs with identical initialization, which is the
// premise that makes the dual-execution comparison meaningful.
type Net struct {
	Kind  graph.OpType
	Name  string
	Dims  []int
	Build func(seed uint64) *graph.Graph
}

// String implements fmt.Stringer, e.g. "Conv2D[7 8 3]".
func (net Net) String() string {
	return fmt.Sprintf("%s%v", net.Kind, net.Dims)
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// ConvNet builds a network with a single convolution over a
// {1, size, size, depth} input with outChannels=depth, stride 1 and no
// padding. The filter and bias are constant-filled with 0.1 -- deterministic
// by construction, so weight initialization adds no variance between runs --
// and only the input is randomized, with a Xavier-scaled fill from the seeded
// generator.
func ConvNet(size, depth, kernel int) Net {
	return Net{
		Kind: graph.OpTypeConv2D,
		Name: "conv",
		Dims: []int{size, depth, kernel},
		Build: func(seed uint64) *graph.Graph {
			rng := newRNG(seed)
			g := graph.New("conv")
			input := g.Placeholder("input", shapes.Make(dtypes.Float32, 1, size, size, depth))
			input.Tensor().FillXavier(1, rng)
			filter := g.Placeholder("filter", shapes.Make(dtypes.Float32, depth, kernel, kernel, depth))
			filter.Tensor().FillConstant(0.1)
			bias := g.Placeholder("bias", shapes.Make(dtypes.Float32, depth))
			bias.Tensor().FillConstant(0.1)
			g.Save(g.Conv2D("conv", input, filter, bias, kernel, 1, 0))
			g.FreezeParameters(input)
			return g
		},
	}
}

// BatchMatMulNet builds a network with a single batched matrix
// multiplication: {n, a, z} x {n, z, b} -> {n, a, b}, with b = a. Both
// operands are Xavier-initialized from the seeded generator.
func BatchMatMulNet(n, a, z int) Net {
	b := a
	return Net{
		Kind: graph.OpTypeBatchMatMul,
		Name: "batchmatmul",
		Dims: []int{n, a, z},
		Build: func(seed uint64) *graph.Graph {
			rng := newRNG(seed)
			g := graph.New("batchmatmul")
			lhs := g.Placeholder("lhs", shapes.Make(dtypes.Float32, n, a, z))
			lhs.Tensor().FillXavier(10, rng)
			rhs := g.Placeholder("rhs", shapes.Make(dtypes.Float32, n, z, b))
			rhs.Tensor().FillXavier(10, rng)
			g.Save(g.BatchMatMul("batchmatmul", lhs, rhs))
			return g
		},
	}
}

// FCNet builds a network with a single fully-connected layer:
// input {a, z} x weights {z, b} + bias {b}. The bias range is near zero so
// additive bias error cannot mask multiplicative error in the product.
func FCNet(a, z, b int) Net {
	return Net{
		Kind: graph.OpTypeFullyConnected,
		Name: "fc",
		Dims: []int{a, z, b},
		Build: func(seed uint64) *graph.Graph {
			rng := newRNG(seed)
			g := graph.New("fc")
			input := g.Placeholder("input", shapes.Make(dtypes.Float32, a, z))
			input.Tensor().FillUniform(-0.2, 0.2, rng)
			bias := g.Constant("bias",
				tensors.FromShape(shapes.Make(dtypes.Float32, b)).FillUniform(0, 0.000005, rng))
			weights := g.Constant("weights",
				tensors.FromShape(shapes.Make(dtypes.Float32, z, b)).FillUniform(-0.4, 0.4, rng))
			g.Save(g.FullyConnected("fc", input, weights, bias))
			return g
		},
	}
}
