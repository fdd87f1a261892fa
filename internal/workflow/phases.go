package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/retry"
	"github.com/dirkste/compass-automation/internal/ui"
)

// runDecisionTree executes the business decision tree for one opened item:
//
//  1. Unknown identifier -> skipped, nothing else runs.
//  2. Open triage marker -> complete the existing item.
//  3. Closed triage marker younger than the freshness window -> skipped.
//  4. Otherwise the create-new chain, strictly in order.
func (e *Engine) runDecisionTree(ctx context.Context, id string) (model.WorkItemStatus, string) {
	if err := e.session.Open(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			e.journal.Emit(journal.CritWarning, journal.VerbMed, "WORKITEM", "OpenDetail",
				"%s - unknown identifier, skipping", id)
			return model.WorkItemStatusSkipped, "invalid identifier"
		}
		e.journal.Emit(journal.CritError, journal.VerbMed, "WORKITEM", "OpenDetail",
			"%s - could not open detail view: %v", id, err)
		return model.WorkItemStatusFailed, "open_detail"
	}

	markers, err := e.triage.Markers(ctx, id)
	if err != nil {
		e.journal.Emit(journal.CritError, journal.VerbMed, "TRIAGE", "ReadMarkers",
			"%s - could not read triage markers: %v", id, err)
		return model.WorkItemStatusFailed, "triage_read"
	}
	e.journal.Emit(journal.CritInfo, journal.VerbFull, "TRIAGE", "ReadMarkers",
		"%s - collected %d marker(s)", id, len(markers))

	if hasOpenMarker(markers) {
		e.journal.Emit(journal.CritInfo, journal.VerbMin, "WORKITEM", "Triage",
			"%s - open item found, completing it", id)
		if err := e.completeExistingItem(ctx, id); err != nil {
			e.logPhaseFailure(id, "CompleteExistingItem", err)
			return model.WorkItemStatusFailed, "complete_open_failed"
		}
		return model.WorkItemStatusCompleted, "completed_open"
	}

	if m, ok := newestClosedMarker(markers); ok && m.Age(e.now()) < triageFreshness {
		e.journal.Emit(journal.CritInfo, journal.VerbMin, "WORKITEM", "Triage",
			"%s - closed item is %s old, skipping", id, m.Age(e.now()).Truncate(24*time.Hour))
		return model.WorkItemStatusSkipped, "recently_completed"
	}

	return e.createNewItem(ctx, id)
}

// completeExistingItem opens the triage tile, marks the item complete and
// confirms the completion dialog with the configured note.
func (e *Engine) completeExistingItem(ctx context.Context, id string) error {
	if err := e.activateTarget(ctx, e.pages.OpenTriageTile, "open triage tile"); err != nil {
		return err
	}

	if err := e.activateTarget(ctx, e.pages.MarkComplete, "mark complete"); err != nil {
		return err
	}

	note, err := e.resolveTarget(ctx, e.pages.CompletionNote, "completion note")
	if err != nil {
		return err
	}
	if err := e.executor.EnterText(ctx, note, e.completionNote); err != nil {
		return err
	}

	if err := e.activateTarget(ctx, e.pages.CompleteConfirm, "confirm completion"); err != nil {
		return err
	}

	e.journal.Emit(journal.CritInfo, journal.VerbMin, "WORKITEM", "CompleteExistingItem",
		"%s - open item completed", id)

	return nil
}

// createNewItem runs the create-new phase chain. The first failing phase
// short-circuits everything after it.
func (e *Engine) createNewItem(ctx context.Context, id string) (model.WorkItemStatus, string) {
	phases := []struct {
		name   string
		reason string
		run    func(context.Context, string) error
	}{
		{"AssociateComplaint", "associate_complaint", e.associateComplaint},
		{"EnterMileage", "enter_mileage", e.enterMileage},
		{"SelectOperationCode", "select_operation_code", e.selectOperationCode},
		{"Finalize", "finalize", e.finalize},
	}

	for _, phase := range phases {
		if err := phase.run(ctx, id); err != nil {
			e.logPhaseFailure(id, phase.name, err)
			return model.WorkItemStatusFailed, phase.reason
		}
		e.journal.Emit(journal.CritInfo, journal.VerbMed, "WORKITEM", phase.name, "%s - phase done", id)
	}

	return model.WorkItemStatusCompleted, "created_new"
}

func (e *Engine) associateComplaint(ctx context.Context, id string) error {
	if err := e.activateTarget(ctx, e.pages.AddWorkItem, "add work item"); err != nil {
		return err
	}

	if err := e.activateTarget(ctx, e.pages.ComplaintTile, "complaint tile"); err != nil {
		return err
	}

	return e.activateTarget(ctx, e.pages.ComplaintNext, "complaint next")
}

func (e *Engine) enterMileage(ctx context.Context, id string) error {
	// The dialog prefills the current mileage. Only an explicit configured
	// value is typed over it.
	if e.mileageValue != "" {
		input, err := e.resolveTarget(ctx, e.pages.MileageInput, "mileage input")
		if err != nil {
			return err
		}
		if err := e.executor.EnterText(ctx, input, e.mileageValue); err != nil {
			return err
		}
	}

	return e.activateTarget(ctx, e.pages.MileageNext, "mileage next")
}

func (e *Engine) selectOperationCode(ctx context.Context, id string) error {
	outcome := e.poll(ctx, func(ctx context.Context) (ui.Element, bool, string) {
		els, diag := e.resolver.Resolve(ctx, e.session, e.pages.OperationCode.Queries)
		for _, el := range els {
			if el.Text() == e.operationCode {
				return el, true, diag.String()
			}
		}
		return nil, false, fmt.Sprintf("%s, none matching %q", diag, e.operationCode)
	})
	if !outcome.OK {
		return fmt.Errorf("operation code tile: %s: %w", outcome.LastDiagnostic, model.ErrTimeout)
	}

	return e.executor.Activate(ctx, outcome.Value)
}

func (e *Engine) finalize(ctx context.Context, id string) error {
	return e.activateTarget(ctx, e.pages.Finalize, "finalize")
}

// resolveTarget polls the target's strategies until one eligible candidate
// appears or the per-phase retry budget is exhausted.
func (e *Engine) resolveTarget(ctx context.Context, t Target, desc string) (ui.Element, error) {
	outcome := e.poll(ctx, func(ctx context.Context) (ui.Element, bool, string) {
		el, diag := e.resolver.First(ctx, e.session, t.Queries)
		return el, el != nil, diag.String()
	})
	if !outcome.OK {
		return nil, fmt.Errorf("%s: %s after %d attempt(s): %w",
			desc, outcome.LastDiagnostic, outcome.Attempts, model.ErrTimeout)
	}

	return outcome.Value, nil
}

// activateTarget resolves and activates a target, then verifies the UI
// advanced when the target declares an anchor for it.
func (e *Engine) activateTarget(ctx context.Context, t Target, desc string) error {
	el, err := e.resolveTarget(ctx, t, desc)
	if err != nil {
		return err
	}

	if err := e.executor.Activate(ctx, el); err != nil {
		return err
	}

	if len(t.Advanced) > 0 {
		outcome := e.poll(ctx, func(ctx context.Context) (ui.Element, bool, string) {
			anchor, diag := e.resolver.First(ctx, e.session, t.Advanced)
			return anchor, anchor != nil, diag.String()
		})
		if !outcome.OK {
			return fmt.Errorf("%s: UI did not advance (%s): %w", desc, outcome.LastDiagnostic, model.ErrTimeout)
		}
	}

	return nil
}

func (e *Engine) poll(ctx context.Context, probe retry.Probe[ui.Element]) retry.Outcome[ui.Element] {
	return retry.PollUntil(ctx, e.scheduler, probe, e.timeout, e.interval)
}

func (e *Engine) logPhaseFailure(id, phase string, err error) {
	e.journal.Emit(journal.CritError, journal.VerbMed, "WORKITEM", phase, "%s - phase failed: %v", id, err)
	e.logger.Errorf("Work item %s failed in %s: %v", id, phase, err)
}

func hasOpenMarker(markers []model.TriageMarker) bool {
	for _, m := range markers {
		if m.State == model.TriageMarkerStateOpen {
			return true
		}
	}
	return false
}

func newestClosedMarker(markers []model.TriageMarker) (model.TriageMarker, bool) {
	var newest model.TriageMarker
	found := false
	for _, m := range markers {
		if m.State != model.TriageMarkerStateClosed {
			continue
		}
		if !found || m.CreatedAt.After(newest.CreatedAt) {
			newest = m
			found = true
		}
	}
	return newest, found
}
