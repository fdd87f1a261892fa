package io

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dirkste/compass-automation/internal/model"
	"github.com/dirkste/compass-automation/internal/storage"
)

// QueueCSVRepository loads the identifier queue from a flat CSV file. Blank
// lines and lines whose first field starts with '#' are ignored.
type QueueCSVRepository struct {
	fs fs.FS
}

// NewQueueCSVRepository creates a new CSV queue repository.
func NewQueueCSVRepository(filesystem fs.FS) *QueueCSVRepository {
	return &QueueCSVRepository{fs: filesystem}
}

// GetQueue loads and validates the identifier queue. Any malformed
// identifier fails the load so bad input is caught before the run starts.
func (r *QueueCSVRepository) GetQueue(ctx context.Context, path string) ([]string, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queue file: %w", err)
	}
	defer f.Close()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing queue file: %w", err)
	}

	ids := []string{}
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		id := strings.TrimSpace(record[0])
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}

		if err := model.ValidateWorkItemID(id); err != nil {
			return nil, fmt.Errorf("queue file line %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() storage.Config {
	cfg, _ := appConfig{}.toModel()
	return cfg
}

// ConfigYAMLRepository loads the application configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads the configuration from a YAML file and returns a
// validated domain config with defaults applied.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (storage.Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return storage.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return storage.Config{}, ctx.Err()
	}

	var cfg appConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return storage.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	model, err := cfg.toModel()
	if err != nil {
		return storage.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return model, nil
}

// appConfig represents the YAML structure of the configuration file.
type appConfig struct {
	Logging  loggingConfig  `yaml:"logging"`
	Timeouts timeoutsConfig `yaml:"timeouts"`
	Queue    queueConfig    `yaml:"queue"`
}

type loggingConfig struct {
	MinCriticality string `yaml:"min_criticality"`
	MaxVerbosity   string `yaml:"max_verbosity"`
	File           string `yaml:"file"`
}

type timeoutsConfig struct {
	Interaction  string `yaml:"interaction"`
	PollInterval string `yaml:"poll_interval"`
}

type queueConfig struct {
	File string `yaml:"file"`
}

func (c appConfig) toModel() (storage.Config, error) {
	cfg := storage.Config{
		MinCriticality:     c.Logging.MinCriticality,
		MaxVerbosity:       c.Logging.MaxVerbosity,
		LogFile:            c.Logging.File,
		QueueFile:          c.Queue.File,
		InteractionTimeout: 10 * time.Second,
		PollInterval:       200 * time.Millisecond,
	}

	if cfg.MinCriticality == "" {
		cfg.MinCriticality = "INFO"
	}
	if cfg.MaxVerbosity == "" {
		cfg.MaxVerbosity = "MED"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "automation.log"
	}
	if cfg.QueueFile == "" {
		cfg.QueueFile = "data/queue.csv"
	}

	if c.Timeouts.Interaction != "" {
		d, err := time.ParseDuration(c.Timeouts.Interaction)
		if err != nil || d <= 0 {
			return storage.Config{}, fmt.Errorf("timeouts.interaction %q is not a positive duration", c.Timeouts.Interaction)
		}
		cfg.InteractionTimeout = d
	}

	if c.Timeouts.PollInterval != "" {
		d, err := time.ParseDuration(c.Timeouts.PollInterval)
		if err != nil || d <= 0 {
			return storage.Config{}, fmt.Errorf("timeouts.poll_interval %q is not a positive duration", c.Timeouts.PollInterval)
		}
		cfg.PollInterval = d
	}

	return cfg, nil
}
