package service

import "fmt"

// ProcessingError wraps a failure to obtain data for processing. Item-level
// processing failures are never wrapped in this; they are counted in the
// batch result instead.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
