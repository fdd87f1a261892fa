package model

import (
	"sort"
	"time"
)

// ValidationReport is the result of reconciling an expected identifier set
// against the identifiers the log stream proves were processed. It is
// recomputed on every validation call and never persisted.
type ValidationReport struct {
	SessionID     string
	ExpectedIDs   []string
	ProcessedIDs  []string
	MissingIDs    []string
	UnexpectedIDs []string
	SuccessRate   float64
}

// NewValidationReport builds a report from the expected and processed sets.
func NewValidationReport(sessionID string, expected, processed map[string]struct{}) ValidationReport {
	r := ValidationReport{SessionID: sessionID}

	matched := 0
	for id := range expected {
		r.ExpectedIDs = append(r.ExpectedIDs, id)
		if _, ok := processed[id]; ok {
			matched++
		} else {
			r.MissingIDs = append(r.MissingIDs, id)
		}
	}

	for id := range processed {
		r.ProcessedIDs = append(r.ProcessedIDs, id)
		if _, ok := expected[id]; !ok {
			r.UnexpectedIDs = append(r.UnexpectedIDs, id)
		}
	}

	if len(expected) > 0 {
		r.SuccessRate = float64(matched) / float64(len(expected))
	}

	// Deterministic output for printers and tests.
	sort.Strings(r.ExpectedIDs)
	sort.Strings(r.ProcessedIDs)
	sort.Strings(r.MissingIDs)
	sort.Strings(r.UnexpectedIDs)

	return r
}

// Passed returns true when every expected identifier was processed.
func (r ValidationReport) Passed() bool {
	return len(r.MissingIDs) == 0
}

// RunSummary aggregates the terminal states of one engine run.
type RunSummary struct {
	SessionID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []WorkItem
}

// Count returns how many items finished in the given status.
func (s RunSummary) Count(status WorkItemStatus) int {
	n := 0
	for _, it := range s.Items {
		if it.Status == status {
			n++
		}
	}
	return n
}
