// Package validate reconciles the input work queue against what the journal
// proves was processed. It exists to prevent false-positive completion
// claims: a log stream proving only login succeeded must never be read as
// proof that items were processed.
package validate

import (
	"fmt"
	"io"

	"github.com/dirkste/compass-automation/internal/journal"
	"github.com/dirkste/compass-automation/internal/log"
	"github.com/dirkste/compass-automation/internal/model"
)

// ServiceConfig is the configuration for the validation service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "validate.Service"})
	return nil
}

// Service validates one session's execution evidence.
type Service struct {
	logger log.Logger
}

// NewService creates a new validation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Validate scans the log stream, keeps only evidence after the last session
// marker and reconciles it against the expected identifiers. With
// requireAll set, any missing identifier fails the call with a
// *model.ValidationError carrying the missing set; the report is returned
// alongside it either way.
func (s *Service) Validate(expectedIDs []string, logStream io.Reader, requireAll bool) (model.ValidationReport, error) {
	scan, err := journal.Scan(logStream)
	if err != nil {
		return model.ValidationReport{}, fmt.Errorf("could not scan log stream: %w", err)
	}

	if !scan.MarkerFound {
		s.logger.Warningf("No session marker found, no processing evidence counts")
	}

	expected := map[string]struct{}{}
	for _, id := range expectedIDs {
		expected[id] = struct{}{}
	}

	processed := map[string]struct{}{}
	for _, id := range scan.StartedIDs {
		processed[id] = struct{}{}
	}

	report := model.NewValidationReport(scan.MarkerID, expected, processed)

	s.logger.Infof("Session %s: %d/%d expected identifier(s) processed",
		report.SessionID, len(report.ExpectedIDs)-len(report.MissingIDs), len(report.ExpectedIDs))

	if requireAll && !report.Passed() {
		return report, &model.ValidationError{
			MissingIDs: report.MissingIDs,
			Expected:   len(report.ExpectedIDs),
		}
	}

	return report, nil
}
