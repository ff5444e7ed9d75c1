package sweep

import (
	"github.com/gomlx/opsweep/backends"
	"github.com/gomlx/opsweep/backends/interp"
	"github.com/gomlx/opsweep/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ReferenceBackend is the engine every candidate is compared against.
const ReferenceBackend = interp.BackendName

// Result of one dual execution and comparison.
type Result struct {
	Net     Net
	Backend string

	// Applicable is false when the gate excluded this combination; nothing was
	// executed and the remaining fields are zero.
	Applicable bool

	Reference *tensors.Tensor
	Candidate *tensors.Tensor

	MaxDiff   float64
	Tolerance float64
}

// Run builds the network twice from the same seed and executes it on the
// reference backend at refMode and on the named backend at candMode. Both
// output tensors are returned; each execution operates on its own graph
// instance, no state is shared between the two or between calls.
//
// When the gate excludes the combination, applicable is false and nothing
// runs. When the backend cannot realize candMode for this operator the error
// wraps ErrUnsupportedConfiguration; execution failures wrap
// ErrBackendExecution.
func Run(net Net, backendID string, refMode, candMode PrecisionMode, seed uint64) (reference, candidate *tensors.Tensor, applicable bool, err error) {
	if !IsApplicable(backendID, net.Kind, candMode) {
		return nil, nil, false, nil
	}

	refBackend, err := backends.New(ReferenceBackend)
	if err != nil {
		return nil, nil, true, errors.Wrapf(ErrBackendExecution, "creating reference backend: %v", err)
	}
	candBackend, err := backends.New(backendID)
	if err != nil {
		return nil, nil, true, errors.Wrapf(ErrBackendExecution, "creating backend %q: %v", backendID, err)
	}
	if !candBackend.Capabilities().Supports(net.Kind, candMode.DType()) {
		return nil, nil, true, errors.Wrapf(ErrUnsupportedConfiguration, "backend %q, op %s, mode %s",
			backendID, net.Kind, candMode)
	}

	refGraph := net.Build(seed)
	refGraph.ConvertTo(refMode.DType())
	reference, err = refBackend.Execute(refGraph)
	if err != nil {
		return nil, nil, true, errors.Wrapf(ErrBackendExecution, "reference execution of %s: %v", net, err)
	}

	candGraph := net.Build(seed)
	candGraph.ConvertTo(candMode.DType())
	candidate, err = candBackend.Execute(candGraph)
	if err != nil {
		return reference, nil, true, errors.Wrapf(ErrBackendExecution, "backend %q execution of %s: %v",
			backendID, net, err)
	}
	return reference, candidate, true, nil
}

// CompareAgainstReference runs the dual execution and compares the outputs
// against the tolerance. It is the complete evaluation of one sweep
// configuration; failures report the exact network dimensions and backend so
// a single numeric regression can be reproduced without re-running the sweep.
func CompareAgainstReference(net Net, backendID string, refMode, candMode PrecisionMode, tolerance float64, seed uint64) (Result, error) {
	klog.V(1).Infof("Testing %s on %q: %s vs %s, tolerance=%g", net, backendID, refMode, candMode, tolerance)
	result := Result{Net: net, Backend: backendID, Tolerance: tolerance}
	reference, candidate, applicable, err := Run(net, backendID, refMode, candMode, seed)
	result.Applicable = applicable
	result.Reference = reference
	result.Candidate = candidate
	if err != nil || !applicable {
		return result, err
	}
	result.MaxDiff, err = Compare(reference, candidate, tolerance)
	if err != nil {
		return result, errors.WithMessagef(err, "%s on %q (%s vs %s)", net, backendID, refMode, candMode)
	}
	return result, nil
}
