package graph

import (
	"fmt"

	"github.com/gomlx/opsweep/types/shapes"
	"github.com/gomlx/opsweep/types/tensors"
)

// OpType identifies the operator family of a computation node.
type OpType int

const (
	OpTypeInvalid OpType = iota
	OpTypeConv2D
	OpTypeBatchMatMul
	OpTypeFullyConnected
)

// String implements fmt.Stringer.
func (op OpType) String() string {
	switch op {
	case OpTypeConv2D:
		return "Conv2D"
	case OpTypeBatchMatMul:
		return "BatchMatMul"
	case OpTypeFullyConnected:
		return "FullyConnected"
	}
	return fmt.Sprintf("OpType(%d)", int(op))
}

type nodeKind int

const (
	kindPlaceholder nodeKind = iota
	kindConstant
	kindOp
)

// Node is one vertex of a Graph: a placeholder, a constant or the single
// computation node.
type Node struct {
	graph  *Graph
	name   string
	kind   nodeKind
	opType OpType
	shape  shapes.Shape
	inputs []*Node

	// tensor is the bound value for placeholders and constants; nil for ops.
	tensor *tensors.Tensor

	// conv holds the attributes of an OpTypeConv2D node.
	conv *ConvAttrs
}

// ConvAttrs are the hyperparameters of a Conv2D node.
type ConvAttrs struct {
	OutChannels, Kernel, Stride, Pad int
}

// Name of the node.
func (n *Node) Name() string { return n.name }

// Shape the node's value takes.
func (n *Node) Shape() shapes.Shape { return n.shape }

// Graph that owns the node.
func (n *Node) Graph() *Graph { return n.graph }

// Inputs of a computation node, nil otherwise.
func (n *Node) Inputs() []*Node { return n.inputs }

// OpType of a computation node, OpTypeInvalid for placeholders and constants.
func (n *Node) OpType() OpType {
	if n.kind != kindOp {
		return OpTypeInvalid
	}
	return n.opType
}

// IsConstant reports whether the node holds an immutable value.
func (n *Node) IsConstant() bool { return n.kind == kindConstant }

// Tensor returns the value bound to a placeholder or constant node. Nil for ops.
func (n *Node) Tensor() *tensors.Tensor { return n.tensor }

// ConvAttrs of an OpTypeConv2D node, nil otherwise.
func (n *Node) ConvAttrs() *ConvAttrs { return n.conv }

// String implements fmt.Stringer.
func (n *Node) String() string {
	switch n.kind {
	case kindPlaceholder:
		return fmt.Sprintf("%s: placeholder %s", n.name, n.shape)
	case kindConstant:
		return fmt.Sprintf("%s: constant %s", n.name, n.shape)
	default:
		return fmt.Sprintf("%s: %s -> %s", n.name, n.opType, n.shape)
	}
}
