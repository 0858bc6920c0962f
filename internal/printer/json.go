package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/wrun/wrun/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runListItem represents a stored run in the list output (subset of fields).
type runListItem struct {
	ID         string    `json:"id"`
	TaskFile   string    `json:"task_file"`
	Success    bool      `json:"success"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// runOutput represents the full stored run output.
type runOutput struct {
	ID         string       `json:"id"`
	TaskFile   string       `json:"task_file"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Report     reportOutput `json:"report"`
}

// reportOutput represents a run report output.
type reportOutput struct {
	Success   bool         `json:"success"`
	Aborted   bool         `json:"aborted"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Total     int          `json:"total"`
	Tasks     []taskOutput `json:"tasks"`
}

// taskOutput represents a single task outcome output.
type taskOutput struct {
	ID      string       `json:"id"`
	Success bool         `json:"success"`
	Skipped bool         `json:"skipped"`
	Error   string       `json:"error,omitempty"`
	Steps   []stepOutput `json:"steps"`
}

// stepOutput represents a single step outcome output.
type stepOutput struct {
	Action   string        `json:"action"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintReport prints a run report in JSON format.
func (j *JSONPrinter) PrintReport(report model.Report) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(newReportOutput(report))
}

// PrintRunList prints stored runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]runListItem, len(runs))
	for i, r := range runs {
		items[i] = runListItem{
			ID:         r.ID,
			TaskFile:   r.TaskFile,
			Success:    r.Report.Success,
			Completed:  r.Report.Completed,
			Failed:     r.Report.Failed,
			Total:      r.Report.Total,
			StartedAt:  r.StartedAt.UTC(),
			FinishedAt: r.FinishedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints one stored run with its full report in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	output := runOutput{
		ID:         run.ID,
		TaskFile:   run.TaskFile,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Report:     newReportOutput(run.Report),
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func newReportOutput(report model.Report) reportOutput {
	tasks := make([]taskOutput, len(report.Results))
	for i, res := range report.Results {
		steps := make([]stepOutput, len(res.Steps))
		for si, sr := range res.Steps {
			steps[si] = stepOutput{
				Action:   string(sr.Action),
				Success:  sr.Success,
				Error:    sr.Error,
				Duration: sr.Duration,
			}
		}
		tasks[i] = taskOutput{
			ID:      res.TaskID,
			Success: res.Success,
			Skipped: res.Skipped,
			Error:   res.Error,
			Steps:   steps,
		}
	}

	return reportOutput{
		Success:   report.Success,
		Aborted:   report.Aborted,
		Completed: report.Completed,
		Failed:    report.Failed,
		Total:     report.Total,
		Tasks:     tasks,
	}
}
