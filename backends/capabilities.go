package backends

import (
	"maps"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/graph"
)

// Capabilities holds mappings of what is supported by a backend.
type Capabilities struct {
	// Operations supported by a backend.
	// If not listed, it's assumed to be false, hence not supported.
	Operations map[graph.OpType]bool

	// DTypes list the data types supported by a backend.
	// If not listed, it's assumed to be false, hence not supported.
	DTypes map[dtypes.DType]bool
}

// Clone makes a deep copy of the Capabilities.
func (c Capabilities) Clone() Capabilities {
	var c2 Capabilities
	c2.Operations = make(map[graph.OpType]bool, len(c.Operations))
	maps.Copy(c2.Operations, c.Operations)
	c2.DTypes = make(map[dtypes.DType]bool, len(c.DTypes))
	maps.Copy(c2.DTypes, c.DTypes)
	return c2
}

// Supports reports whether both the operation and the dtype are supported.
func (c Capabilities) Supports(op graph.OpType, dtype dtypes.DType) bool {
	return c.Operations[op] && c.DTypes[dtype]
}
