package service

import (
	"errors"
	"fmt"

	"photojournal/internal/idgen"
)

// Failure kinds of a capture run. Every error returned by the pipeline is a
// *StageError whose Kind is one of these, so errors.Is can classify it.
var (
	ErrPermissionDenied           = errors.New("permission denied")
	ErrRandomnessUnavailable      = idgen.ErrRandomnessUnavailable
	ErrLocationResolutionFailed   = errors.New("location resolution failed")
	ErrPersistenceFailed          = errors.New("persistence failed")
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
	ErrCaptureCancelled           = errors.New("capture cancelled")
	ErrCaptureFailed              = errors.New("capture failed")
	ErrPipelineBusy               = errors.New("capture already in progress")
	ErrNothingToRetry             = errors.New("no failed save to retry")
)

// StageError reports the stage a capture run stopped in and why.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Retryable reports whether the failed save can be retried without recapturing.
func (e *StageError) Retryable() bool {
	return errors.Is(e.Kind, ErrPersistenceFailed)
}

func outcomeLabel(kind error) string {
	switch {
	case kind == nil:
		return "saved"
	case errors.Is(kind, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(kind, ErrRandomnessUnavailable):
		return "randomness_unavailable"
	case errors.Is(kind, ErrPersistenceFailed):
		return "persistence_failed"
	case errors.Is(kind, ErrCaptureCancelled):
		return "cancelled"
	case errors.Is(kind, ErrPipelineBusy):
		return "busy"
	case errors.Is(kind, ErrNothingToRetry):
		return "nothing_to_retry"
	}
	return "capture_failed"
}
