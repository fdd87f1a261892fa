package printer

import "github.com/dirkste/compass-automation/internal/model"

// Printer knows how to print run and validation information in different formats.
type Printer interface {
	PrintRunSummary(summary model.RunSummary) error
	PrintValidationReport(report model.ValidationReport) error
	PrintQueue(ids []string) error
	PrintMessage(msg string) error
}
