package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/log"
	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/retry"
	"github.com/dirkste/compass-automation/internal/ui"
)

// triageFreshness is the window in which a closed triage marker still
// counts as recent work: items with a younger closed marker are skipped.
// The boundary is exclusive, a marker aged exactly 30 days routes to the
// create-new chain.
const triageFreshness = 30 * 24 * time.Hour

// DefaultOperationCode is the operation code tile selected when none is
// configured.
const DefaultOperationCode = "PM Gas"

// EngineConfig is the configuration for the workflow engine.
type EngineConfig struct {
	Session ui.Session
	Triage  TriageSource
	Journal *journal.Journal
	Logger  log.Logger

	Pages     *Pages
	Resolver  *ui.Resolver
	Executor  *ui.Executor
	Scheduler *retry.Scheduler

	// Timeout and Interval bound every single element resolution. Timeouts
	// are always local to one poll call, never global across the batch.
	Timeout  time.Duration
	Interval time.Duration

	// MileageValue, when set, is typed into the mileage input instead of
	// accepting the prefilled value.
	MileageValue string
	// OperationCode is the code tile selected in the create-new chain.
	OperationCode string
	// CompletionNote is the note entered when completing an open item.
	CompletionNote string

	Now func() time.Time
}

func (c *EngineConfig) defaults() error {
	if c.Session == nil {
		return fmt.Errorf("session is required")
	}

	if c.Triage == nil {
		return fmt.Errorf("triage source is required")
	}

	if c.Journal == nil {
		return fmt.Errorf("journal is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Engine"})

	if c.Pages == nil {
		c.Pages = DefaultPages()
	}

	if c.Resolver == nil {
		r, err := ui.NewResolver(ui.ResolverConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create resolver: %w", err)
		}
		c.Resolver = r
	}

	if c.Executor == nil {
		e, err := ui.NewExecutor(ui.ExecutorConfig{Journal: c.Journal, Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create executor: %w", err)
		}
		c.Executor = e
	}

	if c.Scheduler == nil {
		s, err := retry.NewScheduler(retry.SchedulerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create scheduler: %w", err)
		}
		c.Scheduler = s
	}

	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	if c.Interval <= 0 {
		c.Interval = 200 * time.Millisecond
	}

	if c.OperationCode == "" {
		c.OperationCode = DefaultOperationCode
	}

	if c.CompletionNote == "" {
		c.CompletionNote = "Done"
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return nil
}

// Engine sequences the business phases for every queued work item. It owns
// the UI session for the duration of a run and processes one item at a
// time, one phase at a time.
type Engine struct {
	session   ui.Session
	triage    TriageSource
	journal   *journal.Journal
	logger    log.Logger
	pages     *Pages
	resolver  *ui.Resolver
	executor  *ui.Executor
	scheduler *retry.Scheduler

	timeout  time.Duration
	interval time.Duration

	mileageValue   string
	operationCode  string
	completionNote string

	now func() time.Time
}

// NewEngine creates a new workflow engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		session:        cfg.Session,
		triage:         cfg.Triage,
		journal:        cfg.Journal,
		logger:         cfg.Logger,
		pages:          cfg.Pages,
		resolver:       cfg.Resolver,
		executor:       cfg.Executor,
		scheduler:      cfg.Scheduler,
		timeout:        cfg.Timeout,
		interval:       cfg.Interval,
		mileageValue:   cfg.MileageValue,
		operationCode:  cfg.OperationCode,
		completionNote: cfg.CompletionNote,
		now:            cfg.Now,
	}, nil
}

// Run processes the queue in order. One bad item never aborts the batch:
// every item reaches its own terminal state and the loop moves on. On
// context cancellation the in-flight item is failed (never left queued or
// in progress) and the remaining items stay queued.
func (e *Engine) Run(ctx context.Context, ids []string) (model.RunSummary, error) {
	summary := model.RunSummary{
		SessionID: e.journal.SessionID(),
		StartedAt: e.now(),
	}

	e.journal.Emit(journal.CritInfo, journal.VerbMin, "SESSION", "Run", "run started with %d item(s)", len(ids))

	for i, id := range ids {
		if ctx.Err() != nil {
			e.logger.Warningf("Run aborted, %d item(s) left queued", len(ids)-i)
			for _, rest := range ids[i:] {
				summary.Items = append(summary.Items, model.WorkItem{ID: rest, Status: model.WorkItemStatusQueued})
			}
			break
		}

		summary.Items = append(summary.Items, e.ProcessItem(ctx, id))
	}

	summary.FinishedAt = e.now()
	e.journal.Emit(journal.CritInfo, journal.VerbMin, "SESSION", "Run",
		"run finished: %d completed, %d skipped, %d failed",
		summary.Count(model.WorkItemStatusCompleted),
		summary.Count(model.WorkItemStatusSkipped),
		summary.Count(model.WorkItemStatusFailed))

	return summary, nil
}

// ProcessItem runs the decision tree for one work item and returns it in a
// terminal state. All phase-local failures and panics are absorbed here:
// they become a Failed result, never an escaped error.
func (e *Engine) ProcessItem(ctx context.Context, id string) (item model.WorkItem) {
	item = model.WorkItem{
		ID:        id,
		Status:    model.WorkItemStatusInProgress,
		StartedAt: e.now(),
	}

	e.journal.ItemStarted(id)
	e.logger.Infof("Processing work item %s", id)

	// Last-resort boundary for anything the phases did not classify.
	defer func() {
		if r := recover(); r != nil {
			item.Status = model.WorkItemStatusFailed
			item.Reason = fmt.Sprintf("unexpected: %v", r)
		}
		item.FinishedAt = e.now()
		e.journal.ItemFinished(item)
	}()

	status, reason := e.runDecisionTree(ctx, id)
	item.Status = status
	item.Reason = reason

	// Return to the entry screen so the next item starts from a known
	// state. Best effort: the item already has its terminal state.
	if err := e.session.Home(ctx); err != nil {
		e.logger.Warningf("Could not navigate back home after %s: %v", id, err)
	}

	return item
}
