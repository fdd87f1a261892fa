package journal

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

const (
	defaultSource  = "APP"
	sessionSource  = "SESSION"
	workItemSource = "WORKITEM"

	sessionMarkerPrefix = "session marker "
	startedPrefix       = "started processing "
)

// Line layout: [HH:MM:SS][CRIT_VERB][SOURCE][CONTEXT]<message>
var (
	lineRegexp    = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\[([A-Z]{3})_(MIN|MED|FULL)\]\[([^\]]*)\]\[([^\]]*)\]<(.*)>$`)
	markerRegexp  = regexp.MustCompile(`^session marker (\S+)$`)
	startedRegexp = regexp.MustCompile(`^started processing ([0-9]+)$`)
)

// SessionScan is the evidence extracted from a log stream for the most
// recent session.
type SessionScan struct {
	// MarkerFound reports whether any session marker was present at all.
	MarkerFound bool
	// MarkerID is the unique id of the last session marker.
	MarkerID string
	// StartedIDs are the identifiers with a start-of-processing event after
	// the last marker, in first-seen order.
	StartedIDs []string
}

// Scan reads a journal stream and returns the evidence belonging to the
// last session marker. Everything before the last marker is historical
// content from previous runs and is discarded.
func Scan(r io.Reader) (*SessionScan, error) {
	var (
		scan    SessionScan
		started []string
		seen    map[string]struct{}
	)

	reset := func(markerID string) {
		scan.MarkerFound = true
		scan.MarkerID = markerID
		started = nil
		seen = map[string]struct{}{}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		groups := lineRegexp.FindStringSubmatch(sc.Text())
		if groups == nil {
			// Session headers and foreign lines carry no evidence.
			continue
		}
		msg := groups[6]

		if m := markerRegexp.FindStringSubmatch(msg); m != nil {
			// A newer marker invalidates everything collected so far.
			reset(m[1])
			continue
		}

		if !scan.MarkerFound {
			continue
		}

		if m := startedRegexp.FindStringSubmatch(msg); m != nil {
			id := m[1]
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				started = append(started, id)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read log stream: %w", err)
	}

	scan.StartedIDs = started

	return &scan, nil
}
