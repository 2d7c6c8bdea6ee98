package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrAlignment is returned when two feature matrices share no sample columns.
	ErrAlignment = errors.New("sample columns do not intersect")

	// ErrDegenerateFeature marks a pair whose correlation is undefined because one
	// side has zero variance. It never aborts a run; the record is flagged invalid.
	ErrDegenerateFeature = errors.New("feature has zero variance")

	// ErrWorkerFailure aborts a correlation run when one task fails for any
	// reason other than degeneracy.
	ErrWorkerFailure = errors.New("correlation worker failed")

	// Validation errors
	ErrInvalidMatrix         = errors.New("invalid feature matrix")
	ErrNoInformativeFeatures = errors.New("no informative genomic features")
	ErrUnknownRun            = errors.New("unknown correlation run")
	ErrNotFound              = errors.New("resource not found")
)

// Error constructors with context
func NewAlignmentError(leftCols, rightCols int) error {
	return fmt.Errorf("%w: %d and %d columns, none shared", ErrAlignment, leftCols, rightCols)
}

func NewInvalidMatrixError(name string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidMatrix, name, reason)
}

func NewWorkerFailure(variable string, err error) error {
	return fmt.Errorf("%w for feature %s: %v", ErrWorkerFailure, variable, err)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsAlignmentError(err error) bool {
	return errors.Is(err, ErrAlignment)
}

func IsWorkerFailure(err error) bool {
	return errors.Is(err, ErrWorkerFailure)
}

func IsInvalidMatrix(err error) bool {
	return errors.Is(err, ErrInvalidMatrix)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrAlignment) ||
		errors.Is(err, ErrInvalidMatrix) ||
		errors.Is(err, ErrNoInformativeFeatures)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
