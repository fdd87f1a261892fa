package workflow

import (
	"context"

	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/ui"
)

// TriageSource reads the existing triage markers from the opened work item
// detail view. The concrete page layout behind it is owned elsewhere.
type TriageSource interface {
	Markers(ctx context.Context, id string) ([]model.TriageMarker, error)
}

// TriageSourceFunc is a function adapter for TriageSource.
type TriageSourceFunc func(ctx context.Context, id string) ([]model.TriageMarker, error)

func (f TriageSourceFunc) Markers(ctx context.Context, id string) ([]model.TriageMarker, error) {
	return f(ctx, id)
}

// Target is one logical UI target of a phase: the ordered query strategies
// that identify it, plus an optional anchor that proves the UI advanced
// after acting on it.
type Target struct {
	Queries []ui.Query
	// Advanced, when set, is polled after activation until it yields an
	// eligible candidate. Used to verify a dialog actually moved on.
	Advanced []ui.Query
}

// Pages is the locator catalog for every phase target. Locators are
// collaborator data: the engine only cares that each target resolves, not
// what markup is behind it.
type Pages struct {
	OpenTriageTile  Target
	MarkComplete    Target
	CompletionNote  Target
	CompleteConfirm Target

	AddWorkItem   Target
	ComplaintTile Target
	ComplaintNext Target
	MileageInput  Target
	MileageNext   Target
	OperationCode Target
	Finalize      Target
}

// DefaultPages returns the locator catalog for the current application
// markup. Strategies per target are ordered from most to least specific.
func DefaultPages() *Pages {
	next := []ui.Query{
		{Kind: ui.QueryCSS, Expr: "button.fleet-operations-pwa__nextButton", Desc: "Next button"},
		{Kind: ui.QueryXPath, Expr: "//button[.//p[normalize-space()='Next']]", Desc: "Next button"},
		{Kind: ui.QueryXPath, Expr: "//*[@role='button' and .//p[normalize-space()='Next']]", Desc: "Next button"},
		{Kind: ui.QueryText, Expr: "Next", Desc: "Next button"},
	}

	return &Pages{
		OpenTriageTile: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryXPath, Expr: "//div[contains(@class,'scan-record-header')][.//div[contains(@class,'title-right')][normalize-space()='Open']]", Desc: "open triage tile"},
			},
			Advanced: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "button.fleet-operations-pwa__mark-complete-button", Desc: "Mark Complete button"},
			},
		},
		MarkComplete: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "button.fleet-operations-pwa__mark-complete-button", Desc: "Mark Complete button"},
				{Kind: ui.QueryText, Expr: "Mark Complete", Desc: "Mark Complete button"},
			},
			Advanced: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "div.dialog textarea", Desc: "completion dialog"},
			},
		},
		CompletionNote: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "div.dialog textarea", Desc: "completion note"},
			},
		},
		CompleteConfirm: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryXPath, Expr: "//div[contains(@class,'dialog')]//button[normalize-space()='Complete Work Item']", Desc: "Complete Work Item button"},
				{Kind: ui.QueryText, Expr: "Complete Work Item", Desc: "Complete Work Item button"},
			},
		},

		AddWorkItem: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryText, Expr: "Add Work Item", Desc: "Add Work Item button"},
			},
			Advanced: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "div[class*='complaintItem']", Desc: "complaint picker"},
			},
		},
		ComplaintTile: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryXPath, Expr: "//div[contains(@class,'tileContent')][normalize-space()='PM - PM' or normalize-space()='PM Hard Hold - PM']/ancestor::div[contains(@class,'complaintItem')][1]", Desc: "PM complaint tile"},
				{Kind: ui.QueryCSS, Expr: "div[class*='complaintItem']", Desc: "PM complaint tile"},
			},
		},
		ComplaintNext: Target{Queries: next},
		MileageInput: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryXPath, Expr: "//input[contains(@class,'mileage-input')]", Desc: "mileage input"},
			},
		},
		MileageNext: Target{Queries: next},
		OperationCode: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryCSS, Expr: "div[class*='opCodeItem']", Desc: "operation code tile"},
			},
		},
		Finalize: Target{
			Queries: []ui.Query{
				{Kind: ui.QueryText, Expr: "Create Work Item", Desc: "Create Work Item button"},
				{Kind: ui.QueryXPath, Expr: "//div[contains(@class,'dialog')]//button[normalize-space()='Done']", Desc: "Done button"},
			},
		},
	}
}
