package fake

import (
	"context"
	"sync"
)

// ElementConfig is the configuration for a fake element.
type ElementConfig struct {
	Key      string
	Text     string
	Hidden   bool
	Disabled bool
	Attrs    map[string]string

	// ClickErr is returned by Click. With ClickErrTimes > 0 only the first
	// N clicks fail, which simulates a transiently obstructed target.
	ClickErr      error
	ClickErrTimes int
	InvokeErr     error
	SetTextErr    error
	ScrollErr     error
}

// Element is a fake implementation of the ui.Element interface.
type Element struct {
	cfg ElementConfig

	mu      sync.Mutex
	clicks  int
	invokes int
	scrolls int
	value   string
}

// NewElement creates a new fake element.
func NewElement(cfg ElementConfig) *Element {
	return &Element{cfg: cfg, value: cfg.Attrs["value"]}
}

func (e *Element) Key() string   { return e.cfg.Key }
func (e *Element) Text() string  { return e.cfg.Text }
func (e *Element) Visible() bool { return !e.cfg.Hidden }
func (e *Element) Enabled() bool { return !e.cfg.Disabled }

func (e *Element) Attr(name string) string {
	if name == "value" {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.value
	}
	return e.cfg.Attrs[name]
}

func (e *Element) Click(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks++
	if e.cfg.ClickErr != nil && (e.cfg.ClickErrTimes == 0 || e.clicks <= e.cfg.ClickErrTimes) {
		return e.cfg.ClickErr
	}
	return nil
}

func (e *Element) Invoke(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invokes++
	return e.cfg.InvokeErr
}

func (e *Element) SetText(ctx context.Context, text string) error {
	if e.cfg.SetTextErr != nil {
		return e.cfg.SetTextErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = text
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls++
	return e.cfg.ScrollErr
}

// Clicks returns how many direct clicks the element received.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Invokes returns how many programmatic activations the element received.
func (e *Element) Invokes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invokes
}

// Scrolls returns how many times the element was scrolled into view.
func (e *Element) Scrolls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolls
}

// Value returns the element's current value.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}
