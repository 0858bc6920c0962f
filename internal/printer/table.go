package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wrun/wrun/internal/model"
)

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintReport prints the per-task outcome of one run.
func (t *TablePrinter) PrintReport(report model.Report) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Print header
	fmt.Fprintln(tw, "TASK\tRESULT\tSTEPS\tERROR")

	// Print rows
	for _, res := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", res.TaskID, taskOutcome(res), len(res.Steps), res.Error)
	}
	tw.Flush()

	fmt.Fprintf(t.writer, "\n%d/%d tasks completed", report.Completed, report.Total)
	if report.Aborted {
		fmt.Fprintf(t.writer, " (run aborted)")
	}
	fmt.Fprintln(t.writer)

	return nil
}

// PrintRunList prints stored runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tTASK FILE\tRESULT\tTASKS\tDURATION\tSTARTED")

	// Print rows
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			run.ID,
			run.TaskFile,
			runOutcome(run.Report),
			run.Report.Completed,
			run.Report.Total,
			FormatDuration(run.FinishedAt.Sub(run.StartedAt)),
			TimeAgo(run.StartedAt),
		)
	}

	return nil
}

// PrintRun prints one stored run with its full report.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", run.ID)
	fmt.Fprintf(t.writer, "Task file:  %s\n", run.TaskFile)
	fmt.Fprintf(t.writer, "Result:     %s\n", runOutcome(run.Report))
	fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(run.StartedAt))
	fmt.Fprintf(t.writer, "Finished:   %s\n", FormatTimestamp(run.FinishedAt))
	fmt.Fprintln(t.writer)

	return t.PrintReport(run.Report)
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func taskOutcome(res model.TaskResult) string {
	switch {
	case res.Success:
		return "passed"
	case res.Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

func runOutcome(report model.Report) string {
	if report.Success {
		return "passed"
	}
	return "failed"
}
