package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/dirkste/compass-automation/internal/log"
	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/ui"
)

// SessionConfig is the configuration for the fake session.
type SessionConfig struct {
	Logger log.Logger
	// KnownItems are the identifiers Open accepts. Empty means every
	// identifier is known (dry-run mode).
	KnownItems []string
	// Permissive makes Find return a fresh enabled element for queries
	// without a stub, so full workflows can run without a live UI.
	Permissive bool
}

func (c *SessionConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "ui.Fake"})
	return nil
}

// Session is a fake implementation of the ui.Session interface. It serves
// scripted query results so workflows can run without a live UI.
type Session struct {
	logger     log.Logger
	known      map[string]struct{}
	permissive bool

	mu      sync.Mutex
	stubs   map[string][]ui.Element
	opened  []string
	homes   int
	counter int
}

// NewSession creates a new fake session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var known map[string]struct{}
	if len(cfg.KnownItems) > 0 {
		known = map[string]struct{}{}
		for _, id := range cfg.KnownItems {
			known[id] = struct{}{}
		}
	}

	return &Session{
		logger:     cfg.Logger,
		known:      known,
		permissive: cfg.Permissive,
		stubs:      map[string][]ui.Element{},
	}, nil
}

// StubQuery registers the elements returned for a query expression.
func (s *Session) StubQuery(expr string, els ...ui.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[expr] = els
}

// Find returns the stubbed elements for the query. In permissive mode an
// unstubbed query returns one fresh enabled element.
func (s *Session) Find(ctx context.Context, q ui.Query) ([]ui.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if els, ok := s.stubs[q.Expr]; ok {
		return els, nil
	}

	if s.permissive {
		s.counter++
		el := NewElement(ElementConfig{Key: fmt.Sprintf("fake-%s-%d", q.Kind, s.counter)})
		s.logger.Debugf("Permissive find for %q -> %s", q.Expr, el.Key())
		return []ui.Element{el}, nil
	}

	return nil, nil
}

// Open navigates to the detail view of a known identifier.
func (s *Session) Open(ctx context.Context, id string) error {
	if s.known != nil {
		if _, ok := s.known[id]; !ok {
			return fmt.Errorf("work item %s: %w", id, model.ErrNotFound)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, id)
	s.logger.Debugf("Opened item %s", id)

	return nil
}

// Home navigates back to the entry screen.
func (s *Session) Home(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.homes++
	return nil
}

// Opened returns the identifiers opened so far.
func (s *Session) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// Homes returns how many times the session navigated home.
func (s *Session) Homes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.homes
}
