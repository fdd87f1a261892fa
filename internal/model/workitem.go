package model

import (
	"fmt"
	"regexp"
	"time"
)

// WorkItemStatus represents the lifecycle state of a work item.
type WorkItemStatus string

const (
	// WorkItemStatusQueued indicates the item is waiting to be processed.
	WorkItemStatusQueued WorkItemStatus = "queued"
	// WorkItemStatusInProgress indicates the item is being processed.
	WorkItemStatusInProgress WorkItemStatus = "in_progress"
	// WorkItemStatusCompleted indicates the item was processed successfully.
	WorkItemStatusCompleted WorkItemStatus = "completed"
	// WorkItemStatusSkipped indicates the item did not need processing.
	WorkItemStatusSkipped WorkItemStatus = "skipped"
	// WorkItemStatusFailed indicates processing the item failed.
	WorkItemStatusFailed WorkItemStatus = "failed"
)

// Terminal returns true when the status is a final one.
func (s WorkItemStatus) Terminal() bool {
	switch s {
	case WorkItemStatusCompleted, WorkItemStatusSkipped, WorkItemStatusFailed:
		return true
	}
	return false
}

// WorkItem represents one unit of queued business work, identified by a
// single external identifier (a vehicle MVA number).
type WorkItem struct {
	ID         string
	Status     WorkItemStatus
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// workItemIDRegexp matches the accepted identifier format: numeric, 6-10 digits.
var workItemIDRegexp = regexp.MustCompile(`^[0-9]{6,10}$`)

// ValidateWorkItemID checks an identifier before it is accepted into the queue.
// Invalid identifiers are rejected before any UI interaction begins.
func ValidateWorkItemID(id string) error {
	if id == "" {
		return fmt.Errorf("identifier is empty: %w", ErrNotValid)
	}

	if !workItemIDRegexp.MatchString(id) {
		return fmt.Errorf("identifier %q is not a 6-10 digit number: %w", id, ErrNotValid)
	}

	return nil
}

// TriageMarkerState represents the state of an existing triage record.
type TriageMarkerState string

const (
	// TriageMarkerStateOpen indicates an open triage record.
	TriageMarkerStateOpen TriageMarkerState = "open"
	// TriageMarkerStateClosed indicates a closed triage record.
	TriageMarkerStateClosed TriageMarkerState = "closed"
)

// TriageMarker is an existing-record flag discovered on the work item detail
// view. It decides which branch of the workflow executes.
type TriageMarker struct {
	State     TriageMarkerState
	Kind      string
	CreatedAt time.Time
}

// Age returns how old the marker is at the given instant.
func (m TriageMarker) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}
