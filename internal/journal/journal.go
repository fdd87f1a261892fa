package journal

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dirkste/compass-automation/internal/model"
)

// Criticality is the severity axis of a journal event.
type Criticality int

const (
	// CritInfo is the lowest criticality.
	CritInfo Criticality = iota
	// CritWarning indicates a recoverable anomaly.
	CritWarning
	// CritError indicates a failed operation.
	CritError
	// CritCritical indicates the run cannot continue.
	CritCritical
)

var critAbbrs = map[Criticality]string{
	CritInfo:     "INF",
	CritWarning:  "WRN",
	CritError:    "ERR",
	CritCritical: "CRT",
}

var critNames = map[string]Criticality{
	"INFO":     CritInfo,
	"WARNING":  CritWarning,
	"ERROR":    CritError,
	"CRITICAL": CritCritical,
}

func (c Criticality) String() string {
	for name, crit := range critNames {
		if crit == c {
			return name
		}
	}
	return "INFO"
}

// ParseCriticality maps a configuration string to a criticality. Unknown
// values default to INFO.
func ParseCriticality(s string) Criticality {
	if c, ok := critNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return c
	}
	return CritInfo
}

// Verbosity is the detail axis of a journal event. MIN events are always
// the tersest, FULL events carry atomic detail.
type Verbosity int

const (
	// VerbMin is the tersest verbosity.
	VerbMin Verbosity = iota
	// VerbMed is the default verbosity.
	VerbMed
	// VerbFull carries full diagnostic detail.
	VerbFull
)

var verbNames = map[string]Verbosity{
	"MIN":  VerbMin,
	"MED":  VerbMed,
	"FULL": VerbFull,
}

func (v Verbosity) String() string {
	for name, verb := range verbNames {
		if verb == v {
			return name
		}
	}
	return "MED"
}

// ParseVerbosity maps a configuration string to a verbosity. Unknown values
// default to MED.
func ParseVerbosity(s string) Verbosity {
	if v, ok := verbNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return v
	}
	return VerbMed
}

// Config is the configuration for a Journal.
type Config struct {
	// Out receives the journal lines. Required.
	Out io.Writer
	// MinCriticality is the floor: events below it are dropped.
	MinCriticality Criticality
	// MaxVerbosity is the ceiling: events above it are dropped.
	MaxVerbosity Verbosity
	// Now is the clock used for timestamps and the session marker id.
	Now func() time.Time
}

func (c *Config) defaults() error {
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return nil
}

// Journal is the structured event log and the system of record for session
// validation. The per-line layout is a hard contract: validation parses it
// back, so any format change must keep Scan in sync.
type Journal struct {
	out       io.Writer
	minCrit   Criticality
	maxVerb   Verbosity
	now       func() time.Time
	sessionID string

	mu sync.Mutex
}

// New creates a Journal and writes the session header and the session
// marker line. Header and marker bypass the thresholds: without them a log
// region cannot be attributed to this run.
func New(cfg Config) (*Journal, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	now := cfg.Now()
	j := &Journal{
		out:       cfg.Out,
		minCrit:   cfg.MinCriticality,
		maxVerb:   cfg.MaxVerbosity,
		now:       cfg.Now,
		sessionID: ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	fmt.Fprintf(j.out, "=== Log Session Started: %s ===\n", now.Format("2006-01-02"))
	j.write(now, CritInfo, VerbMin, sessionSource, "StartRun", sessionMarkerPrefix+j.sessionID)

	return j, nil
}

// SessionID returns the unique id of the session marker written by this journal.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Emit writes one event iff criticality >= floor and verbosity <= ceiling.
// Both checks happen before formatting so suppressed calls build no strings.
func (j *Journal) Emit(crit Criticality, verb Verbosity, source, context, format string, args ...interface{}) {
	if crit < j.minCrit || verb > j.maxVerb {
		return
	}

	if source == "" {
		source = defaultSource
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.write(j.now(), crit, verb, source, context, msg)
}

// write appends one line. Callers hold j.mu.
func (j *Journal) write(t time.Time, crit Criticality, verb Verbosity, source, context, msg string) {
	fmt.Fprintf(j.out, "[%s][%s_%s][%s][%s]<%s>\n",
		t.Format("15:04:05"), critAbbrs[crit], verb, source, context, msg)
}

// ItemStarted emits the start-of-processing event for a work item. This is
// the line session validation keys on to prove the item was picked up.
func (j *Journal) ItemStarted(id string) {
	j.Emit(CritInfo, VerbMin, workItemSource, "StartItem", startedPrefix+"%s", id)
}

// ItemFinished emits the single terminal event for a work item.
func (j *Journal) ItemFinished(it model.WorkItem) {
	crit := CritInfo
	if it.Status == model.WorkItemStatusFailed {
		crit = CritError
	}
	j.Emit(crit, VerbMin, workItemSource, "FinishItem",
		"finished processing %s state=%s reason=%s", it.ID, it.Status, it.Reason)
}
