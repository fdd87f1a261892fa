package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/retry"
	"github.com/dirkste/compass-automation/internal/ui"
	"github.com/dirkste/compass-automation/internal/ui/fake"
	"github.com/dirkste/compass-automation/internal/workflow"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

// fakeClock advances only on scheduler sleeps so polling loops finish
// instantly in tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) { c.now = c.now.Add(d) }

// testPages replaces the production locator catalog with one trivial query
// per target so stubs are easy to wire.
func testPages() *workflow.Pages {
	q := func(expr, desc string) workflow.Target {
		return workflow.Target{Queries: []ui.Query{{Kind: ui.QueryCSS, Expr: expr, Desc: desc}}}
	}

	return &workflow.Pages{
		OpenTriageTile:  q("#triage-tile", "open triage tile"),
		MarkComplete:    q("#mark-complete", "mark complete"),
		CompletionNote:  q("#note", "completion note"),
		CompleteConfirm: q("#confirm", "confirm completion"),
		AddWorkItem:     q("#add", "add work item"),
		ComplaintTile:   q("#complaint", "complaint tile"),
		ComplaintNext:   q("#complaint-next", "complaint next"),
		MileageInput:    q("#mileage", "mileage input"),
		MileageNext:     q("#mileage-next", "mileage next"),
		OperationCode:   q("#opcode", "operation code"),
		Finalize:        q("#finalize", "finalize"),
	}
}

type harness struct {
	session *fake.Session
	journal *bytes.Buffer
	els     map[string]*fake.Element
}

// stubAllTargets registers one enabled element per target expression and
// returns them keyed by expression for interaction assertions.
func (h *harness) stubAllTargets(operationCode string) {
	for _, expr := range []string{
		"#triage-tile", "#mark-complete", "#note", "#confirm",
		"#add", "#complaint", "#complaint-next", "#mileage", "#mileage-next", "#finalize",
	} {
		el := fake.NewElement(fake.ElementConfig{Key: expr})
		h.els[expr] = el
		h.session.StubQuery(expr, el)
	}

	opcode := fake.NewElement(fake.ElementConfig{Key: "#opcode", Text: operationCode})
	h.els["#opcode"] = opcode
	h.session.StubQuery("#opcode", opcode)
}

func (h *harness) clicks(expr string) int {
	el, ok := h.els[expr]
	if !ok {
		return 0
	}
	return el.Clicks() + el.Invokes()
}

func newHarness(t *testing.T, triage workflow.TriageSource, known []string) (*harness, *workflow.Engine) {
	h := &harness{
		journal: &bytes.Buffer{},
		els:     map[string]*fake.Element{},
	}

	session, err := fake.NewSession(fake.SessionConfig{KnownItems: known})
	require.NoError(t, err)
	h.session = session

	jrnl, err := journal.New(journal.Config{Out: h.journal, Now: func() time.Time { return testNow }})
	require.NoError(t, err)

	clock := &fakeClock{now: testNow}
	scheduler, err := retry.NewScheduler(retry.SchedulerConfig{Now: clock.Now, Sleep: clock.Sleep})
	require.NoError(t, err)

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Session:       session,
		Triage:        triage,
		Journal:       jrnl,
		Pages:         testPages(),
		Scheduler:     scheduler,
		Timeout:       time.Second,
		Interval:      100 * time.Millisecond,
		OperationCode: "PM Gas",
		Now:           func() time.Time { return testNow },
	})
	require.NoError(t, err)

	return h, engine
}

func staticMarkers(markers ...model.TriageMarker) workflow.TriageSource {
	return workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
		return markers, nil
	})
}

func TestEngineProcessItem(t *testing.T) {
	completeChain := []string{"#triage-tile", "#mark-complete", "#confirm"}
	createChain := []string{"#add", "#complaint", "#complaint-next", "#mileage-next", "#opcode", "#finalize"}

	tests := map[string]struct {
		triage       workflow.TriageSource
		known        []string
		expStatus    model.WorkItemStatus
		expReason    string
		expActivated []string
		expUntouched []string
	}{
		"An unknown identifier should be skipped without touching the page": {
			triage:       staticMarkers(),
			known:        []string{"99999999"},
			expStatus:    model.WorkItemStatusSkipped,
			expReason:    "invalid identifier",
			expUntouched: append(completeChain, createChain...),
		},

		"An open triage marker should route to completing the existing item": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateOpen, Kind: "PM", CreatedAt: testNow.Add(-48 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusCompleted,
			expReason:    "completed_open",
			expActivated: completeChain,
			expUntouched: createChain,
		},

		"A closed marker inside the freshness window should skip the item entirely": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-10 * 24 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusSkipped,
			expReason:    "recently_completed",
			expUntouched: append(completeChain, createChain...),
		},

		"A closed marker older than the freshness window should route to the create-new chain": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-40 * 24 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusCompleted,
			expReason:    "created_new",
			expActivated: createChain,
			expUntouched: completeChain,
		},

		"A closed marker aged exactly at the boundary should route to the create-new chain": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-30 * 24 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusCompleted,
			expReason:    "created_new",
			expActivated: createChain,
		},

		"The newest closed marker should decide freshness": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-90 * 24 * time.Hour)},
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-5 * 24 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusSkipped,
			expReason:    "recently_completed",
			expUntouched: append(completeChain, createChain...),
		},

		"An open marker should win over any closed marker": {
			triage: staticMarkers(
				model.TriageMarker{State: model.TriageMarkerStateClosed, Kind: "PM", CreatedAt: testNow.Add(-5 * 24 * time.Hour)},
				model.TriageMarker{State: model.TriageMarkerStateOpen, Kind: "PM", CreatedAt: testNow.Add(-1 * 24 * time.Hour)},
			),
			expStatus:    model.WorkItemStatusCompleted,
			expReason:    "completed_open",
			expActivated: completeChain,
			expUntouched: createChain,
		},

		"No markers at all should route to the create-new chain": {
			triage:       staticMarkers(),
			expStatus:    model.WorkItemStatusCompleted,
			expReason:    "created_new",
			expActivated: createChain,
			expUntouched: completeChain,
		},

		"A triage read failure should fail the item": {
			triage: workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
				return nil, errors.New("pane did not render")
			}),
			expStatus:    model.WorkItemStatusFailed,
			expReason:    "triage_read",
			expUntouched: append(completeChain, createChain...),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h, engine := newHarness(t, test.triage, test.known)
			h.stubAllTargets("PM Gas")

			item := engine.ProcessItem(context.Background(), "51299161")

			assert.Equal(t, test.expStatus, item.Status)
			assert.Equal(t, test.expReason, item.Reason)
			for _, expr := range test.expActivated {
				assert.Positive(t, h.clicks(expr), "expected %s to be activated", expr)
			}
			for _, expr := range test.expUntouched {
				assert.Zero(t, h.clicks(expr), "expected %s to stay untouched", expr)
			}
		})
	}
}

func TestEngineProcessItemPhaseFailureShortCircuits(t *testing.T) {
	// The complaint tile never appears: the first create-new phase times out
	// and nothing after it runs.
	h, engine := newHarness(t, staticMarkers(), nil)
	h.stubAllTargets("PM Gas")
	h.session.StubQuery("#complaint") // present but empty result set.

	item := engine.ProcessItem(context.Background(), "51299161")

	assert.Equal(t, model.WorkItemStatusFailed, item.Status)
	assert.Equal(t, "associate_complaint", item.Reason)
	assert.Positive(t, h.clicks("#add"))
	assert.Zero(t, h.clicks("#complaint-next"))
	assert.Zero(t, h.clicks("#mileage-next"))
	assert.Zero(t, h.clicks("#opcode"))
	assert.Zero(t, h.clicks("#finalize"))
	assert.Contains(t, h.journal.String(), "phase failed")
}

func TestEngineProcessItemOperationCodeMismatch(t *testing.T) {
	// A tile grid without the configured code must time out, not select an
	// arbitrary tile.
	h, engine := newHarness(t, staticMarkers(), nil)
	h.stubAllTargets("Brake Inspection")

	item := engine.ProcessItem(context.Background(), "51299161")

	assert.Equal(t, model.WorkItemStatusFailed, item.Status)
	assert.Equal(t, "select_operation_code", item.Reason)
	assert.Zero(t, h.clicks("#opcode"))
	assert.Zero(t, h.clicks("#finalize"))
}

func TestEngineProcessItemCompletionNote(t *testing.T) {
	h, engine := newHarness(t, staticMarkers(
		model.TriageMarker{State: model.TriageMarkerStateOpen, Kind: "PM", CreatedAt: testNow.Add(-48 * time.Hour)},
	), nil)
	h.stubAllTargets("PM Gas")

	item := engine.ProcessItem(context.Background(), "51299161")

	require.Equal(t, model.WorkItemStatusCompleted, item.Status)
	assert.Equal(t, "Done", h.els["#note"].Value())
}

func TestEngineProcessItemPanicRecovery(t *testing.T) {
	h, engine := newHarness(t, workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
		panic("boom")
	}), nil)
	h.stubAllTargets("PM Gas")

	item := engine.ProcessItem(context.Background(), "51299161")

	assert.Equal(t, model.WorkItemStatusFailed, item.Status)
	assert.Contains(t, item.Reason, "unexpected")
	// Even a panicking item reaches its terminal journal event.
	assert.Contains(t, h.journal.String(), "started processing 51299161")
	assert.Contains(t, h.journal.String(), "finished processing 51299161 state=failed")
}

func TestEngineRunBatchIsolation(t *testing.T) {
	// A failing item must not abort the batch.
	failingID := "22222222"
	triage := workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
		if id == failingID {
			return nil, errors.New("pane did not render")
		}
		return nil, nil
	})

	h, engine := newHarness(t, triage, nil)
	h.stubAllTargets("PM Gas")

	summary, err := engine.Run(context.Background(), []string{"11111111", failingID, "33333333"})

	require.NoError(t, err)
	require.Len(t, summary.Items, 3)
	assert.Equal(t, model.WorkItemStatusCompleted, summary.Items[0].Status)
	assert.Equal(t, model.WorkItemStatusFailed, summary.Items[1].Status)
	assert.Equal(t, model.WorkItemStatusCompleted, summary.Items[2].Status)
	assert.Equal(t, 2, summary.Count(model.WorkItemStatusCompleted))
	assert.Equal(t, 1, summary.Count(model.WorkItemStatusFailed))

	for _, id := range []string{"11111111", failingID, "33333333"} {
		assert.Contains(t, h.journal.String(), "started processing "+id)
		assert.Contains(t, h.journal.String(), "finished processing "+id)
	}
}

func TestEngineProcessItemReturnsHome(t *testing.T) {
	// Every item navigates back to the entry screen so the next one starts
	// from a known state, whatever its terminal outcome was.
	h, engine := newHarness(t, staticMarkers(), nil)
	h.stubAllTargets("PM Gas")

	engine.ProcessItem(context.Background(), "51299161")
	engine.ProcessItem(context.Background(), "54252855")

	assert.Equal(t, 2, h.session.Homes())
}

func TestEngineRunMidItemCancellation(t *testing.T) {
	// An abort landing while an item is in flight must still drive that item
	// to a terminal state; only the items not yet started stay queued.
	ctx, cancel := context.WithCancel(context.Background())
	triage := workflow.TriageSourceFunc(func(ctx context.Context, id string) ([]model.TriageMarker, error) {
		cancel()
		return nil, nil
	})

	h, engine := newHarness(t, triage, nil)
	h.stubAllTargets("PM Gas")
	h.session.StubQuery("#complaint") // never renders once the abort lands.

	summary, err := engine.Run(ctx, []string{"11111111", "22222222"})

	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, model.WorkItemStatusFailed, summary.Items[0].Status)
	assert.Equal(t, "associate_complaint", summary.Items[0].Reason)
	assert.Equal(t, model.WorkItemStatusQueued, summary.Items[1].Status)
	assert.Contains(t, h.journal.String(), "finished processing 11111111 state=failed")
	assert.NotContains(t, h.journal.String(), "started processing 22222222")
}

func TestEngineRunCancelledContext(t *testing.T) {
	h, engine := newHarness(t, staticMarkers(), nil)
	h.stubAllTargets("PM Gas")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := engine.Run(ctx, []string{"11111111", "22222222"})

	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	for _, item := range summary.Items {
		assert.Equal(t, model.WorkItemStatusQueued, item.Status)
	}
	assert.Empty(t, h.session.Opened())
}

func TestEngineRunSummaryEvents(t *testing.T) {
	h, engine := newHarness(t, staticMarkers(), nil)
	h.stubAllTargets("PM Gas")

	summary, err := engine.Run(context.Background(), []string{"11111111"})

	require.NoError(t, err)
	assert.NotEmpty(t, summary.SessionID)
	assert.Contains(t, h.journal.String(), "run started with 1 item(s)")
	assert.Contains(t, h.journal.String(), "run finished: 1 completed, 0 skipped, 0 failed")
}

func TestEngineNew(t *testing.T) {
	tests := map[string]struct {
		config func(t *testing.T) workflow.EngineConfig
		expErr bool
	}{
		"Missing session should fail": {
			config: func(t *testing.T) workflow.EngineConfig {
				return workflow.EngineConfig{}
			},
			expErr: true,
		},

		"Missing triage source should fail": {
			config: func(t *testing.T) workflow.EngineConfig {
				s, _ := fake.NewSession(fake.SessionConfig{})
				return workflow.EngineConfig{Session: s}
			},
			expErr: true,
		},

		"Missing journal should fail": {
			config: func(t *testing.T) workflow.EngineConfig {
				s, _ := fake.NewSession(fake.SessionConfig{})
				return workflow.EngineConfig{Session: s, Triage: staticMarkers()}
			},
			expErr: true,
		},

		"A minimal valid config should default the collaborators": {
			config: func(t *testing.T) workflow.EngineConfig {
				s, _ := fake.NewSession(fake.SessionConfig{})
				j, err := journal.New(journal.Config{Out: &bytes.Buffer{}})
				require.NoError(t, err)
				return workflow.EngineConfig{Session: s, Triage: staticMarkers(), Journal: j}
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := workflow.NewEngine(test.config(t))

			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
