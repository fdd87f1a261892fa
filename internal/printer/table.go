package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dirkste/compass-automation/internal/model"
)

// TablePrinter prints run and validation information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunSummary prints the per-item terminal states and aggregate counts.
func (t *TablePrinter) PrintRunSummary(summary model.RunSummary) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tSTATE\tREASON")
	for _, it := range summary.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Status, it.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(t.writer, "\nSession:   %s\n", summary.SessionID)
	fmt.Fprintf(t.writer, "Completed: %d\n", summary.Count(model.WorkItemStatusCompleted))
	fmt.Fprintf(t.writer, "Skipped:   %d\n", summary.Count(model.WorkItemStatusSkipped))
	fmt.Fprintf(t.writer, "Failed:    %d\n", summary.Count(model.WorkItemStatusFailed))

	return nil
}

// PrintValidationReport prints the reconciliation result.
func (t *TablePrinter) PrintValidationReport(report model.ValidationReport) error {
	fmt.Fprintf(t.writer, "Session:    %s\n", report.SessionID)
	fmt.Fprintf(t.writer, "Expected:   %d\n", len(report.ExpectedIDs))
	fmt.Fprintf(t.writer, "Processed:  %d\n", len(report.ProcessedIDs))
	fmt.Fprintf(t.writer, "Rate:       %.1f%%\n", report.SuccessRate*100)

	if len(report.MissingIDs) > 0 {
		fmt.Fprintf(t.writer, "Missing:    %s\n", strings.Join(report.MissingIDs, ", "))
	}
	if len(report.UnexpectedIDs) > 0 {
		fmt.Fprintf(t.writer, "Unexpected: %s\n", strings.Join(report.UnexpectedIDs, ", "))
	}

	verdict := "PASS: all expected identifiers were processed"
	if !report.Passed() {
		verdict = fmt.Sprintf("FAIL: %d identifier(s) missing from the log", len(report.MissingIDs))
	}
	fmt.Fprintf(t.writer, "Verdict:    %s\n", verdict)

	return nil
}

// PrintQueue prints the accepted queue identifiers.
func (t *TablePrinter) PrintQueue(ids []string) error {
	for _, id := range ids {
		fmt.Fprintln(t.writer, id)
	}
	fmt.Fprintf(t.writer, "\n%d identifier(s) accepted\n", len(ids))
	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
