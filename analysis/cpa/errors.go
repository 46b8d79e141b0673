package cpa

import (
	"context"
	"errors"
	"fmt"
)

// ErrInterrupted is reported when an analysis is cancelled from outside.
var ErrInterrupted = errors.New("analysis interrupted")

// AnalysisError is a fatal misconfiguration or contract violation detected
// while running an analysis.
type AnalysisError struct {
	Msg string
	Err error
}

func NewAnalysisError(format string, args ...any) *AnalysisError {
	err := fmt.Errorf(format, args...)
	return &AnalysisError{Msg: err.Error(), Err: errors.Unwrap(err)}
}

func (e *AnalysisError) Error() string { return "analysis error: " + e.Msg }

func (e *AnalysisError) Unwrap() error { return e.Err }

// SolverError wraps a failure of an external decision procedure. It is
// handled like an interruption.
type SolverError struct {
	Err error
}

func (e *SolverError) Error() string { return fmt.Sprintf("solver failure: %v", e.Err) }

func (e *SolverError) Unwrap() error { return e.Err }

func (e *SolverError) Is(target error) bool { return target == ErrInterrupted }

// CheckInterrupt returns an error wrapping ErrInterrupted once ctx is done.
func CheckInterrupt(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
	}
	return nil
}
