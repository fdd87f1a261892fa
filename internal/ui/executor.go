package ui

import (
	"context"
	"fmt"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/log"
	"github.com/dirkste/compass-automation/internal/model"
)

// ExecutorConfig is the configuration for the action executor.
type ExecutorConfig struct {
	Journal *journal.Journal
	Logger  log.Logger
}

func (c *ExecutorConfig) defaults() error {
	if c.Journal == nil {
		return fmt.Errorf("journal is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "ui.Executor"})

	return nil
}

// Executor applies interactions to resolved elements, with a programmatic
// fallback path for obstructed targets.
type Executor struct {
	journal *journal.Journal
	logger  log.Logger
}

// NewExecutor creates a new action executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Executor{
		journal: cfg.Journal,
		logger:  cfg.Logger,
	}, nil
}

// Activate scrolls the element into view and clicks it. Scrolling is best
// effort. When the direct click is obstructed by an overlapping element,
// the programmatic invocation is used instead. Only both paths failing is
// an error, reported as model.ErrInteractionBlocked.
func (e *Executor) Activate(ctx context.Context, el Element) error {
	if err := el.ScrollIntoView(ctx); err != nil {
		e.logger.Debugf("Could not scroll %q into view: %v", el.Key(), err)
	}

	clickErr := el.Click(ctx)
	if clickErr == nil {
		return nil
	}
	e.logger.Debugf("Direct click on %q failed, using programmatic fallback: %v", el.Key(), clickErr)

	if invokeErr := el.Invoke(ctx); invokeErr != nil {
		e.journal.Emit(journal.CritError, journal.VerbMed, "UI", "Activate",
			"activation failed on %q: click=%v invoke=%v", el.Key(), clickErr, invokeErr)
		return fmt.Errorf("element %q: click: %v, fallback invoke: %v: %w",
			el.Key(), clickErr, invokeErr, model.ErrInteractionBlocked)
	}

	return nil
}

// EnterText sets the element's value and verifies the read-back matches.
func (e *Executor) EnterText(ctx context.Context, el Element, text string) error {
	if err := el.SetText(ctx, text); err != nil {
		e.journal.Emit(journal.CritError, journal.VerbMed, "UI", "EnterText",
			"could not enter text on %q: %v", el.Key(), err)
		return fmt.Errorf("could not enter text: %w", err)
	}

	if typed := el.Attr("value"); typed != text {
		e.journal.Emit(journal.CritWarning, journal.VerbFull, "UI", "EnterText",
			"value mismatch on %q: expected=%q got=%q", el.Key(), text, typed)
		return fmt.Errorf("entered text did not stick on %q: %w", el.Key(), model.ErrNotValid)
	}

	return nil
}
