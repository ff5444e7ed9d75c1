package sweep

import (
	"github.com/pkg/errors"
)

// The four failure classes of a sweep run. Use errors.Is to classify wrapped
// errors; the wraps carry the configuration details.
var (
	// ErrShapeMismatch means the two output tensors have different dimensions.
	// This is a harness or builder defect, never an expected outcome.
	ErrShapeMismatch = errors.New("output shapes differ between reference and candidate")

	// ErrUnsupportedConfiguration means the backend cannot realize the
	// candidate precision for this operator. The configuration is skipped, not
	// failed.
	ErrUnsupportedConfiguration = errors.New("backend does not support this operator/precision")

	// ErrToleranceExceeded is the substantive test failure: the maximum
	// absolute element difference is above the allowed tolerance.
	ErrToleranceExceeded = errors.New("maximum element difference exceeds tolerance")

	// ErrBackendExecution wraps opaque failures from an execution engine. It
	// fails the configuration, not the harness.
	ErrBackendExecution = errors.New("backend execution failed")
)
