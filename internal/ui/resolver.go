package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/dirkste/compass-automation/internal/log"
)

// Diagnostic records what a resolution attempt saw, so a later failure is
// explainable without re-running it.
type Diagnostic struct {
	Target   string
	Found    int
	Eligible int
}

func (d Diagnostic) String() string {
	target := d.Target
	if target == "" {
		target = "target"
	}
	return fmt.Sprintf("%s: %d candidates found, %d eligible", target, d.Found, d.Eligible)
}

// ResolverConfig is the configuration for the element resolver.
type ResolverConfig struct {
	Logger log.Logger
}

func (c *ResolverConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "ui.Resolver"})
	return nil
}

// Resolver discovers element candidates through an ordered list of
// overlapping query strategies, deduplicates them by stable identity and
// filters out everything that cannot be interacted with right now.
type Resolver struct {
	logger log.Logger
}

// NewResolver creates a new element resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Resolver{logger: cfg.Logger}, nil
}

// Resolve applies each strategy in order and returns the eligible
// candidates in discovery order. Strategy-level query errors are tolerated:
// a flaky strategy must not mask a working one.
func (r *Resolver) Resolve(ctx context.Context, q Queryable, strategies []Query) ([]Element, Diagnostic) {
	diag := Diagnostic{Target: targetDesc(strategies)}

	seen := map[string]struct{}{}
	eligible := []Element{}
	for _, strategy := range strategies {
		candidates, err := q.Find(ctx, strategy)
		if err != nil {
			r.logger.Debugf("Strategy %s (%s) failed: %v", strategy.Desc, strategy.Expr, err)
			continue
		}

		for _, el := range candidates {
			key := el.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			diag.Found++

			if !el.Visible() || !elementEnabled(el) {
				continue
			}
			diag.Eligible++
			eligible = append(eligible, el)
		}
	}

	if diag.Eligible == 0 {
		r.logger.Debugf("No eligible candidates (%s)", diag)
	}

	return eligible, diag
}

// First resolves and returns the first eligible candidate in strategy
// order, or nil when none is currently available. Discovery order is the
// whole selection policy: no further tie-break is needed.
func (r *Resolver) First(ctx context.Context, q Queryable, strategies []Query) (Element, Diagnostic) {
	els, diag := r.Resolve(ctx, q, strategies)
	if len(els) == 0 {
		return nil, diag
	}
	return els[0], diag
}

// elementEnabled reports whether the element can be interacted with. Any
// single disabled signal is sufficient to exclude it: the native state, an
// explicit ARIA flag, or a disabled class marker.
func elementEnabled(el Element) bool {
	if !el.Enabled() {
		return false
	}

	switch strings.ToLower(el.Attr("aria-disabled")) {
	case "true", "1":
		return false
	}

	if strings.Contains(strings.ToLower(el.Attr("class")), "disabled") {
		return false
	}

	return true
}

func targetDesc(strategies []Query) string {
	for _, s := range strategies {
		if s.Desc != "" {
			return s.Desc
		}
	}
	return ""
}
