package recruiting

import (
	"errors"
	"fmt"
)

// ErrQueueDisabled is returned by Enqueue when no queue is configured.
var ErrQueueDisabled = errors.New("matching queue is not configured")

// ValidationError reports a request that cannot be processed as given.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateResumeError is returned when an identical file was already uploaded.
type DuplicateResumeError struct {
	FileName string
}

func (e *DuplicateResumeError) Error() string {
	return fmt.Sprintf("CV candidate is exists! File name: %s", e.FileName)
}

// DuplicateJobError is returned when a job with the same name exists.
type DuplicateJobError struct {
	Name string
}

func (e *DuplicateJobError) Error() string {
	return fmt.Sprintf("job %q already exists", e.Name)
}
