package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrTimeout is returned when a retry budget is exhausted.
	ErrTimeout = errors.New("timed out")
	// ErrInteractionBlocked is returned when both the primary and the
	// fallback activation paths failed on a UI target.
	ErrInteractionBlocked = errors.New("interaction blocked")
)

// ValidationError is returned when session validation proves that required
// identifiers were never processed. It is the only workflow error meant to
// propagate to the caller: its whole purpose is failing the run loudly.
type ValidationError struct {
	MissingIDs []string
	Expected   int
}

func (e *ValidationError) Error() string {
	missing := append([]string(nil), e.MissingIDs...)
	sort.Strings(missing)
	return fmt.Sprintf("validation failed: %d/%d expected identifiers were not processed: %s",
		len(missing), e.Expected, strings.Join(missing, ", "))
}
