package sweep

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/types/shapes"
	"github.com/gomlx/opsweep/types/tensors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCompareIdentical(t *testing.T) {
	a := tensors.FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
	maxDiff, err := Compare(a, a.Clone(), 0)
	require.NoError(t, err)
	require.Zero(t, maxDiff)
}

func TestCompareMaxNotMean(t *testing.T) {
	// One outlier must fail even when the mean difference is tiny.
	a := tensors.FromFlatDataAndDimensions(make([]float32, 1000), 1000)
	flat := make([]float32, 1000)
	flat[517] = 0.5
	b := tensors.FromFlatDataAndDimensions(flat, 1000)

	maxDiff, err := Compare(a, b, 0.1)
	require.ErrorIs(t, err, ErrToleranceExceeded)
	require.Equal(t, 0.5, maxDiff)
}

func TestCompareShapeMismatch(t *testing.T) {
	a := tensors.FromFlatDataAndDimensions(make([]float32, 6), 2, 3)
	b := tensors.FromFlatDataAndDimensions(make([]float32, 6), 3, 2)
	_, err := Compare(a, b, 1e6)
	require.ErrorIs(t, err, ErrShapeMismatch)

	// Same dimensions at different dtypes compare fine.
	c := a.ConvertTo(dtypes.Float16)
	_, err = Compare(a, c, 1)
	require.NoError(t, err)
}

func TestCompareToleranceMonotonicity(t *testing.T) {
	a := tensors.FromFlatDataAndDimensions([]float32{0, 0.01, -0.02}, 3)
	b := tensors.FromFlatDataAndDimensions([]float32{0, 0, 0}, 3)

	maxDiff, err := Compare(a, b, 0.02)
	require.NoError(t, err)
	require.InDelta(t, 0.02, maxDiff, 1e-9)

	// Passing at t implies passing at any t' > t.
	for _, tolerance := range []float64{0.03, 0.1, 1} {
		_, err := Compare(a, b, tolerance)
		require.NoError(t, err)
	}
	// And below the observed difference it fails.
	_, err = Compare(a, b, 0.01)
	require.ErrorIs(t, err, ErrToleranceExceeded)
}

func TestCompareDequantizesBothSides(t *testing.T) {
	a := tensors.FromFlatDataAndDimensions([]float32{-0.4, -0.1, 0, 0.1, 0.4}, 5)
	quantized := a.ConvertTo(dtypes.Int8)
	scale, _ := quantized.QuantizationParams()

	maxDiff, err := Compare(a, quantized, scale)
	require.NoError(t, err)
	require.LessOrEqual(t, maxDiff, scale/2)
}

func TestCompareAllZeroQuantizedCandidateFails(t *testing.T) {
	// An all-zero candidate dequantizes to zeros: the difference equals the
	// true output magnitude, which exceeds any sane tolerance for a
	// non-trivial reference.
	seed := uint64(42)
	reference, _, applicable, err := Run(FCNet(1, 256, 64), "parallel", Reference, Reference, seed)
	require.NoError(t, err)
	require.True(t, applicable)

	zeros := tensors.FromShape(shapes.Make(dtypes.Float32, 1, 64)).ConvertTo(dtypes.Int8)
	_, err = Compare(reference, zeros, Tolerance(FCNet(1, 256, 64).Kind, Quantized))
	require.ErrorIs(t, err, ErrToleranceExceeded)
}

func TestErrorWrapsStayClassifiable(t *testing.T) {
	wrapped := errors.WithMessage(errors.Wrapf(ErrToleranceExceeded, "max |diff|=%g", 0.5), "context")
	require.ErrorIs(t, wrapped, ErrToleranceExceeded)
	require.NotErrorIs(t, wrapped, ErrShapeMismatch)
}
