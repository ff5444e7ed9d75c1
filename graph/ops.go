package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/opsweep/types/shapes"
)

// Conv2D creates the single convolution node of the graph.
//
// input must be {batch, size, size, inChannels} (NHWC), filter
// {outChannels, kernel, kernel, inChannels} and bias {outChannels}.
// The output shape is {batch, outSize, outSize, outChannels} with
// outSize = (size + 2*pad - kernel)/stride + 1.
func (g *Graph) Conv2D(name string, input, filter, bias *Node, kernel, stride, pad int) *Node {
	if input.shape.Rank() != 4 || input.shape.Dim(1) != input.shape.Dim(2) {
		exceptions.Panicf("Conv2D %q: input must be {batch, size, size, channels}, got %s", name, input.shape)
	}
	inChannels := input.shape.Dim(-1)
	if filter.shape.Rank() != 4 ||
		filter.shape.Dim(1) != kernel || filter.shape.Dim(2) != kernel ||
		filter.shape.Dim(3) != inChannels {
		exceptions.Panicf("Conv2D %q: filter must be {outChannels, %d, %d, %d}, got %s",
			name, kernel, kernel, inChannels, filter.shape)
	}
	outChannels := filter.shape.Dim(0)
	if bias.shape.Rank() != 1 || bias.shape.Dim(0) != outChannels {
		exceptions.Panicf("Conv2D %q: bias must be {%d}, got %s", name, outChannels, bias.shape)
	}
	if stride <= 0 || pad < 0 {
		exceptions.Panicf("Conv2D %q: invalid stride=%d / pad=%d", name, stride, pad)
	}
	size := input.shape.Dim(1)
	outSize := (size+2*pad-kernel)/stride + 1
	if outSize <= 0 {
		exceptions.Panicf("Conv2D %q: kernel %d does not fit input of size %d (pad=%d)", name, kernel, size, pad)
	}
	outShape := shapes.Make(g.dtype, input.shape.Dim(0), outSize, outSize, outChannels)
	n := g.newOpNode(name, OpTypeConv2D, outShape, input, filter, bias)
	n.conv = &ConvAttrs{OutChannels: outChannels, Kernel: kernel, Stride: stride, Pad: pad}
	return n
}

// BatchMatMul creates the single batched matrix multiplication node:
// lhs {n, a, z} times rhs {n, z, b} producing {n, a, b}.
func (g *Graph) BatchMatMul(name string, lhs, rhs *Node) *Node {
	if lhs.shape.Rank() != 3 || rhs.shape.Rank() != 3 {
		exceptions.Panicf("BatchMatMul %q: operands must be rank-3, got %s and %s", name, lhs.shape, rhs.shape)
	}
	if lhs.shape.Dim(0) != rhs.shape.Dim(0) {
		exceptions.Panicf("BatchMatMul %q: batch dimensions differ, %s vs %s", name, lhs.shape, rhs.shape)
	}
	if lhs.shape.Dim(2) != rhs.shape.Dim(1) {
		exceptions.Panicf("BatchMatMul %q: contracting dimensions differ, %s vs %s", name, lhs.shape, rhs.shape)
	}
	outShape := shapes.Make(g.dtype, lhs.shape.Dim(0), lhs.shape.Dim(1), rhs.shape.Dim(2))
	return g.newOpNode(name, OpTypeBatchMatMul, outShape, lhs, rhs)
}

// FullyConnected creates the single dense node: input {a, z} times
// weights {z, b} plus bias {b}, producing {a, b}.
func (g *Graph) FullyConnected(name string, input, weights, bias *Node) *Node {
	if input.shape.Rank() != 2 || weights.shape.Rank() != 2 {
		exceptions.Panicf("FullyConnected %q: input and weights must be rank-2, got %s and %s",
			name, input.shape, weights.shape)
	}
	if input.shape.Dim(1) != weights.shape.Dim(0) {
		exceptions.Panicf("FullyConnected %q: contracting dimensions differ, %s vs %s",
			name, input.shape, weights.shape)
	}
	if bias.shape.Rank() != 1 || bias.shape.Dim(0) != weights.shape.Dim(1) {
		exceptions.Panicf("FullyConnected %q: bias must be {%d}, got %s", name, weights.shape.Dim(1), bias.shape)
	}
	outShape := shapes.Make(g.dtype, input.shape.Dim(0), weights.shape.Dim(1))
	return g.newOpNode(name, OpTypeFullyConnected, outShape, input, weights, bias)
}
