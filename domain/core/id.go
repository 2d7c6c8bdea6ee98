package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// RunID identifies one analysis session (target + decoy + FDR).
type RunID ID

func NewRunID() RunID { return RunID(NewID()) }

func (id RunID) String() string { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// RunKind distinguishes the real and the null correlation pass.
type RunKind string

const (
	RunTarget RunKind = "target"
	RunDecoy  RunKind = "decoy"
)

// ParseRunKind parses "target" or "decoy".
func ParseRunKind(s string) (RunKind, error) {
	switch RunKind(strings.ToLower(strings.TrimSpace(s))) {
	case RunTarget:
		return RunTarget, nil
	case RunDecoy:
		return RunDecoy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRun, s)
}
