// Package graph implements the minimal computation graphs executed by the
// sweep harness: a set of placeholder and constant tensors feeding exactly one
// operator node, with one designated output.
//
// A Graph is built at Float32 and can then be converted as a whole to another
// dtype with Graph.ConvertTo: this is how the same logical network is executed
// at different precisions. Graphs are cheap and single-use: each execution
// builds its own instance, nothing is shared between runs.
//
// Shape or usage errors during construction are programming errors and panic
// with a stack trace, see github.com/gomlx/exceptions.
package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/types/shapes"
	"github.com/gomlx/opsweep/types/tensors"
)

// Graph is a single-operator computation: placeholders and constants feeding
// one op node, with one saved output.
type Graph struct {
	name   string
	dtype  dtypes.DType
	nodes  []*Node
	op     *Node
	output *Node
}

// New creates an empty graph with the given name, at Float32.
func New(name string) *Graph {
	return &Graph{name: name, dtype: dtypes.Float32}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// DType of the graph tensors. Float32 until Graph.ConvertTo changes it.
func (g *Graph) DType() dtypes.DType { return g.dtype }

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Op returns the single computation node, or nil if none was created yet.
func (g *Graph) Op() *Node { return g.op }

// OpType returns the type of the single computation node.
func (g *Graph) OpType() OpType {
	if g.op == nil {
		return OpTypeInvalid
	}
	return g.op.opType
}

// Output returns the node designated by Save, or nil.
func (g *Graph) Output() *Node { return g.output }

// Placeholder creates an input node with an allocated, zero-initialized tensor
// bound to it. Fill the tensor right after creation.
func (g *Graph) Placeholder(name string, shape shapes.Shape) *Node {
	if shape.DType != g.dtype {
		exceptions.Panicf("graph %q: placeholder %q dtype %s does not match graph dtype %s",
			g.name, name, shape.DType, g.dtype)
	}
	n := &Node{
		graph:  g,
		name:   name,
		kind:   kindPlaceholder,
		shape:  shape,
		tensor: tensors.FromShape(shape),
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Constant creates a node holding the given immutable tensor value.
func (g *Graph) Constant(name string, value *tensors.Tensor) *Node {
	if value.DType() != g.dtype {
		exceptions.Panicf("graph %q: constant %q dtype %s does not match graph dtype %s",
			g.name, name, value.DType(), g.dtype)
	}
	n := &Node{
		graph:  g,
		name:   name,
		kind:   kindConstant,
		shape:  value.Shape(),
		tensor: value,
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Save designates the output of the graph. It must be called exactly once,
// with the computation node.
func (g *Graph) Save(node *Node) *Node {
	if g.output != nil {
		exceptions.Panicf("graph %q: Save called twice", g.name)
	}
	if node.graph != g {
		exceptions.Panicf("graph %q: Save with a node from graph %q", g.name, node.graph.name)
	}
	g.output = node
	return node
}

// FreezeParameters converts every placeholder into a constant, except those
// listed in keep. Run it after initialization so repeated executions see
// immutable parameters.
func (g *Graph) FreezeParameters(keep ...*Node) {
	for _, n := range g.nodes {
		if n.kind != kindPlaceholder {
			continue
		}
		kept := false
		for _, k := range keep {
			if n == k {
				kept = true
				break
			}
		}
		if !kept {
			n.kind = kindConstant
		}
	}
}

// ConvertTo converts all placeholder and constant tensors of the graph to the
// given dtype, in place. Converting to Float32 on a Float32 graph is a no-op.
// It must be called after the graph is fully built.
func (g *Graph) ConvertTo(dtype dtypes.DType) {
	if dtype == g.dtype {
		return
	}
	if g.op == nil || g.output == nil {
		exceptions.Panicf("graph %q: ConvertTo called on an unfinished graph", g.name)
	}
	for _, n := range g.nodes {
		n.shape = n.shape.WithDType(dtype)
		if n.tensor != nil {
			n.tensor = n.tensor.ConvertTo(dtype)
		}
	}
	g.dtype = dtype
}

// String lists the graph nodes, for error messages.
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph %q (%s):\n", g.name, g.dtype)
	for _, n := range g.nodes {
		fmt.Fprintf(&b, "\t%s\n", n)
	}
	return b.String()
}

// newOpNode registers the single computation node of the graph.
func (g *Graph) newOpNode(name string, opType OpType, shape shapes.Shape, inputs ...*Node) *Node {
	if g.op != nil {
		exceptions.Panicf("graph %q: already has a computation node (%s), cannot add %s",
			g.name, g.op.opType, opType)
	}
	for _, input := range inputs {
		if input.graph != g {
			exceptions.Panicf("graph %q: op %s takes input %q owned by graph %q",
				g.name, opType, input.name, input.graph.name)
		}
	}
	n := &Node{
		graph:  g,
		name:   name,
		kind:   kindOp,
		opType: opType,
		shape:  shape,
		inputs: inputs,
	}
	g.nodes = append(g.nodes, n)
	g.op = n
	return n
}
