package storage

import (
	"context"
	"time"
)

// QueueRepository loads the ordered identifier queue for a run.
type QueueRepository interface {
	// GetQueue returns the validated identifiers in file order. A single
	// malformed identifier fails the whole load: invalid input is rejected
	// before any UI interaction begins, not mid-run.
	GetQueue(ctx context.Context, path string) ([]string, error)
}

// ConfigRepository loads the application configuration.
type ConfigRepository interface {
	GetConfig(ctx context.Context, path string) (Config, error)
}

// Config is the configuration surface consumed by the core. It is owned by
// the operator's config file and read-only here.
type Config struct {
	// MinCriticality is the journal criticality floor (INFO, WARNING, ERROR, CRITICAL).
	MinCriticality string
	// MaxVerbosity is the journal verbosity ceiling (MIN, MED, FULL).
	MaxVerbosity string
	// LogFile is the journal file path.
	LogFile string
	// QueueFile is the identifier queue file path.
	QueueFile string
	// InteractionTimeout is the default retry budget per element resolution.
	InteractionTimeout time.Duration
	// PollInterval is the sleep between resolution attempts.
	PollInterval time.Duration
}
