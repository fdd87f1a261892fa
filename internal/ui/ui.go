package ui

import (
	"context"
	"errors"
)

// ErrClickIntercepted is returned by Element.Click when an overlapping
// element obstructed the interaction.
var ErrClickIntercepted = errors.New("click intercepted")

// QueryKind selects the discovery mechanism of a query.
type QueryKind string

const (
	// QueryCSS discovers elements by CSS selector.
	QueryCSS QueryKind = "css"
	// QueryXPath discovers elements by XPath expression.
	QueryXPath QueryKind = "xpath"
	// QueryText discovers interactive elements by their visible text.
	QueryText QueryKind = "text"
)

// Query is one strategy for identifying a logical UI target. Strategies are
// redundant on purpose: component trees overlap and markup changes, so a
// target usually carries an ordered list of them.
type Query struct {
	Kind QueryKind
	Expr string
	// Desc names the logical target in logs and diagnostics.
	Desc string
}

// Element is an opaque handle to a rendered UI target. Handles are
// ephemeral: they are constructed fresh on every resolution attempt and
// never cached across workflow phases.
type Element interface {
	// Key returns a stable identity for deduplication. Re-querying the UI
	// can yield distinct handles for the same logical node, so identity is
	// never handle equality.
	Key() string
	Text() string
	Visible() bool
	Enabled() bool
	// Attr returns the value of the named attribute, or "" when absent.
	Attr(name string) string

	// Click issues the direct interaction.
	Click(ctx context.Context) error
	// Invoke issues the programmatic activation used as fallback when the
	// direct interaction is obstructed.
	Invoke(ctx context.Context) error
	// SetText replaces the element's value with the given text.
	SetText(ctx context.Context, text string) error
	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView(ctx context.Context) error
}

// Queryable is the capability of discovering elements.
type Queryable interface {
	// Find returns the elements currently matching the query. A query that
	// matches nothing returns an empty slice, not an error.
	Find(ctx context.Context, q Query) ([]Element, error)
}

// Session is the live UI session. It is exclusively owned by the workflow
// engine for the duration of a run; no other component issues interactions
// concurrently with it.
type Session interface {
	Queryable

	// Open navigates to the detail view of the given work item identifier.
	// Returns model.ErrNotFound (wrapped) when the identifier is unknown to
	// the application.
	Open(ctx context.Context, id string) error
	// Home navigates back to the entry screen.
	Home(ctx context.Context) error
}
