package printer

import "github.com/wrun/wrun/internal/model"

// Printer knows how to print run information in different formats.
type Printer interface {
	PrintReport(report model.Report) error
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run) error
	PrintMessage(msg string) error
}
