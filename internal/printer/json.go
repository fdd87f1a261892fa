package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dirkste/compass-automation/internal/model"
)

// JSONPrinter prints run and validation information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// itemOutput represents one work item terminal state.
type itemOutput struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// summaryOutput represents a full run summary.
type summaryOutput struct {
	SessionID  string       `json:"session_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Completed  int          `json:"completed"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Items      []itemOutput `json:"items"`
}

// reportOutput represents a validation report.
type reportOutput struct {
	SessionID     string   `json:"session_id"`
	ExpectedCount int      `json:"expected_count"`
	ProcessedIDs  []string `json:"processed_ids"`
	MissingIDs    []string `json:"missing_ids"`
	UnexpectedIDs []string `json:"unexpected_ids"`
	SuccessRate   float64  `json:"success_rate"`
	Passed        bool     `json:"passed"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunSummary prints the run summary in JSON format.
func (j *JSONPrinter) PrintRunSummary(summary model.RunSummary) error {
	out := summaryOutput{
		SessionID:  summary.SessionID,
		StartedAt:  summary.StartedAt.UTC(),
		FinishedAt: summary.FinishedAt.UTC(),
		Completed:  summary.Count(model.WorkItemStatusCompleted),
		Skipped:    summary.Count(model.WorkItemStatusSkipped),
		Failed:     summary.Count(model.WorkItemStatusFailed),
		Items:      make([]itemOutput, 0, len(summary.Items)),
	}
	for _, it := range summary.Items {
		out.Items = append(out.Items, itemOutput{ID: it.ID, State: string(it.Status), Reason: it.Reason})
	}

	return j.encode(out)
}

// PrintValidationReport prints the reconciliation result in JSON format.
func (j *JSONPrinter) PrintValidationReport(report model.ValidationReport) error {
	return j.encode(reportOutput{
		SessionID:     report.SessionID,
		ExpectedCount: len(report.ExpectedIDs),
		ProcessedIDs:  report.ProcessedIDs,
		MissingIDs:    report.MissingIDs,
		UnexpectedIDs: report.UnexpectedIDs,
		SuccessRate:   report.SuccessRate,
		Passed:        report.Passed(),
	})
}

// PrintQueue prints the accepted queue identifiers in JSON format.
func (j *JSONPrinter) PrintQueue(ids []string) error {
	return j.encode(ids)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
