package journal_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/model"
)

func staticClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJournalNew(t *testing.T) {
	tests := map[string]struct {
		config func(out *bytes.Buffer) journal.Config
		expErr bool
	}{
		"Missing output writer should fail": {
			config: func(out *bytes.Buffer) journal.Config {
				return journal.Config{}
			},
			expErr: true,
		},

		"A valid config should write the session header and marker": {
			config: func(out *bytes.Buffer) journal.Config {
				return journal.Config{
					Out: out,
					Now: staticClock(time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)),
				}
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			j, err := journal.New(test.config(&out))

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
			require.Len(t, lines, 2)
			assert.Equal(t, "=== Log Session Started: 2026-08-28 ===", lines[0])
			assert.Equal(t, "[09:30:00][INF_MIN][SESSION][StartRun]<session marker "+j.SessionID()+">", lines[1])
			assert.NotEmpty(t, j.SessionID())
		})
	}
}

func TestJournalEmit(t *testing.T) {
	tests := map[string]struct {
		minCrit journal.Criticality
		maxVerb journal.Verbosity
		crit    journal.Criticality
		verb    journal.Verbosity
		expEmit bool
	}{
		"An event below the criticality floor should be dropped": {
			minCrit: journal.CritWarning,
			maxVerb: journal.VerbMed,
			crit:    journal.CritInfo,
			verb:    journal.VerbMin,
			expEmit: false,
		},

		"An event above the verbosity ceiling should be dropped": {
			minCrit: journal.CritWarning,
			maxVerb: journal.VerbMed,
			crit:    journal.CritWarning,
			verb:    journal.VerbFull,
			expEmit: false,
		},

		"An event inside both thresholds should be emitted": {
			minCrit: journal.CritWarning,
			maxVerb: journal.VerbMed,
			crit:    journal.CritWarning,
			verb:    journal.VerbMed,
			expEmit: true,
		},

		"An event at the floor and ceiling exactly should be emitted": {
			minCrit: journal.CritError,
			maxVerb: journal.VerbMin,
			crit:    journal.CritError,
			verb:    journal.VerbMin,
			expEmit: true,
		},

		"A critical event should pass any floor": {
			minCrit: journal.CritError,
			maxVerb: journal.VerbFull,
			crit:    journal.CritCritical,
			verb:    journal.VerbFull,
			expEmit: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			j, err := journal.New(journal.Config{
				Out:            &out,
				MinCriticality: test.minCrit,
				MaxVerbosity:   test.maxVerb,
				Now:            staticClock(time.Date(2026, 8, 28, 14, 5, 9, 0, time.UTC)),
			})
			require.NoError(t, err)
			out.Reset()

			j.Emit(test.crit, test.verb, "UI", "Probe", "candidate %d of %d", 2, 5)

			if test.expEmit {
				assert.Contains(t, out.String(), "<candidate 2 of 5>")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestJournalEmitFormat(t *testing.T) {
	var out bytes.Buffer
	j, err := journal.New(journal.Config{
		Out: &out,
		Now: staticClock(time.Date(2026, 8, 28, 14, 5, 9, 0, time.UTC)),
	})
	require.NoError(t, err)
	out.Reset()

	j.Emit(journal.CritWarning, journal.VerbFull, "UI", "EnterText", "read-back mismatch")
	assert.Equal(t, "[14:05:09][WRN_FULL][UI][EnterText]<read-back mismatch>\n", out.String())

	out.Reset()
	j.Emit(journal.CritError, journal.VerbMed, "", "Activate", "blocked")
	assert.Equal(t, "[14:05:09][ERR_MED][APP][Activate]<blocked>\n", out.String())
}

func TestJournalItemEvents(t *testing.T) {
	tests := map[string]struct {
		emit    func(j *journal.Journal)
		expLine string
	}{
		"Start of processing should be INF MIN with the contract message": {
			emit: func(j *journal.Journal) {
				j.ItemStarted("51299161")
			},
			expLine: "[10:00:00][INF_MIN][WORKITEM][StartItem]<started processing 51299161>\n",
		},

		"A completed item should finish as INF": {
			emit: func(j *journal.Journal) {
				j.ItemFinished(model.WorkItem{ID: "51299161", Status: model.WorkItemStatusCompleted, Reason: "created_new"})
			},
			expLine: "[10:00:00][INF_MIN][WORKITEM][FinishItem]<finished processing 51299161 state=completed reason=created_new>\n",
		},

		"A failed item should finish as ERR": {
			emit: func(j *journal.Journal) {
				j.ItemFinished(model.WorkItem{ID: "54252855", Status: model.WorkItemStatusFailed, Reason: "open_detail"})
			},
			expLine: "[10:00:00][ERR_MIN][WORKITEM][FinishItem]<finished processing 54252855 state=failed reason=open_detail>\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			j, err := journal.New(journal.Config{
				Out: &out,
				Now: staticClock(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)),
			})
			require.NoError(t, err)
			out.Reset()

			test.emit(j)

			assert.Equal(t, test.expLine, out.String())
		})
	}
}

func TestParseCriticality(t *testing.T) {
	tests := map[string]struct {
		value string
		exp   journal.Criticality
	}{
		"WARNING should parse":          {value: "WARNING", exp: journal.CritWarning},
		"Lowercase should parse":        {value: "error", exp: journal.CritError},
		"Padded input should parse":     {value: " CRITICAL ", exp: journal.CritCritical},
		"Unknown should default to INFO": {value: "whatever", exp: journal.CritInfo},
		"Empty should default to INFO":   {value: "", exp: journal.CritInfo},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, journal.ParseCriticality(test.value))
		})
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]struct {
		value string
		exp   journal.Verbosity
	}{
		"FULL should parse":            {value: "FULL", exp: journal.VerbFull},
		"Lowercase should parse":       {value: "min", exp: journal.VerbMin},
		"Unknown should default to MED": {value: "loud", exp: journal.VerbMed},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, journal.ParseVerbosity(test.value))
		})
	}
}
