// Package sweep is a differential correctness harness for the execution
// backends: it expands a Cartesian space of operator shape configurations,
// builds the same single-operator network twice from one seed, runs one copy
// on the reference interpreter and the other on a candidate backend at a
// possibly reduced precision, and checks that the outputs agree within a
// per-operator, per-precision tolerance.
package sweep

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// PrecisionMode selects the numeric representation of a graph's tensors for
// one execution.
type PrecisionMode int

const (
	// Reference runs at full float32, the representation graphs are built at.
	Reference PrecisionMode = iota

	// ReducedFloat rounds every tensor to float16.
	ReducedFloat

	// Quantized maps every tensor to int8 with a per-tensor scale/zero-point.
	Quantized
)

// Modes lists all precision modes, in a stable order.
func Modes() []PrecisionMode {
	return []PrecisionMode{Reference, ReducedFloat, Quantized}
}

// DType returns the element representation tensors take under this mode.
func (m PrecisionMode) DType() dtypes.DType {
	switch m {
	case Reference:
		return dtypes.Float32
	case ReducedFloat:
		return dtypes.Float16
	case Quantized:
		return dtypes.Int8
	}
	return dtypes.InvalidDType
}

// String implements fmt.Stringer.
func (m PrecisionMode) String() string {
	switch m {
	case Reference:
		return "Float"
	case ReducedFloat:
		return "Float16"
	case Quantized:
		return "Int8"
	}
	return fmt.Sprintf("PrecisionMode(%d)", int(m))
}
