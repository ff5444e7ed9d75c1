package sweep

import (
	"math"

	"github.com/gomlx/opsweep/types/tensors"
	"github.com/pkg/errors"
)

// Compare checks two output tensors element by element and returns the
// maximum absolute difference observed.
//
// Both tensors are read in a common float64 representation -- quantized
// tensors dequantize with their own scale/zero-point -- so the tolerance is
// expressed in the operator's natural output units regardless of which side
// is quantized. The maximum (not mean) difference is compared against the
// tolerance: a single diverging element, e.g. one misrounded quantized
// bucket, must fail the configuration.
//
// It returns ErrShapeMismatch (wrapped) when the dimensions differ, and
// ErrToleranceExceeded (wrapped, with the observed maximum) when the
// comparison fails. Compare is monotonic in tolerance: if it passes at t, it
// passes at any t' > t.
func Compare(reference, candidate *tensors.Tensor, tolerance float64) (maxDiff float64, err error) {
	if !reference.Shape().EqDimensions(candidate.Shape()) {
		return 0, errors.Wrapf(ErrShapeMismatch, "reference %s vs candidate %s",
			reference.Shape(), candidate.Shape())
	}
	refFlat := reference.Float64s()
	candFlat := candidate.Float64s()
	for ii := range refFlat {
		maxDiff = math.Max(maxDiff, math.Abs(refFlat[ii]-candFlat[ii]))
	}
	if maxDiff > tolerance {
		return maxDiff, errors.Wrapf(ErrToleranceExceeded, "max |diff|=%g > tolerance %g",
			maxDiff, tolerance)
	}
	return maxDiff, nil
}
