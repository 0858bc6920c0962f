package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wrun/wrun/internal/browser/rod"
	"github.com/wrun/wrun/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	browserBin   string
	extensionDir string
	artifactsDir string
	headless     bool
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the browser environment.")
	c.Cmd.Flag("browser-bin", "Path to the browser binary (auto-detected when empty).").StringVar(&c.browserBin)
	c.Cmd.Flag("extension-dir", "Path to an unpacked wallet extension to check.").StringVar(&c.extensionDir)
	c.Cmd.Flag("artifacts-dir", "Directory for screenshots to check.").StringVar(&c.artifactsDir)
	c.Cmd.Flag("headless", "Check the headless configuration.").Default("true").BoolVar(&c.headless)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	driver, err := rod.NewDriver(rod.DriverConfig{
		Bin:          c.browserBin,
		Headless:     c.headless,
		ExtensionDir: c.extensionDir,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create browser driver: %w", err)
	}

	results := driver.Check(ctx)
	results = append(results, c.checkWritableDir("artifacts_dir", c.artifactsDir)...)
	results = append(results, c.checkWritableDir("db_path", filepath.Dir(c.rootCmd.DBPath))...)

	// Print results
	fmt.Fprintln(out, "Checking browser environment...")
	for _, r := range results {
		icon := getStatusIcon(r.Status)
		fmt.Fprintf(out, "  %s %-20s %s\n", icon, r.ID, r.Message)
	}
	_, totalWarnings, totalErrors := model.CountByStatus(results)

	// Summary
	fmt.Fprintln(out)
	if totalErrors == 0 && totalWarnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if totalErrors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", totalErrors))
		}
		if totalWarnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", totalWarnings))
		}
		fmt.Fprintf(out, "%s\n", joinWithComma(summary))
	}

	// Return error if there are any errors
	if totalErrors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", totalErrors)
	}

	return nil
}

// checkWritableDir verifies a directory can be created and written to. An
// empty path is skipped.
func (c DoctorCommand) checkWritableDir(id, dir string) []model.CheckResult {
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return []model.CheckResult{{
			ID:      id,
			Message: fmt.Sprintf("could not create %s: %v", dir, err),
			Status:  model.CheckStatusError,
		}}
	}

	probe, err := os.CreateTemp(dir, ".wrun-doctor-*")
	if err != nil {
		return []model.CheckResult{{
			ID:      id,
			Message: fmt.Sprintf("%s is not writable: %v", dir, err),
			Status:  model.CheckStatusError,
		}}
	}
	probe.Close()
	os.Remove(probe.Name())

	return []model.CheckResult{{
		ID:      id,
		Message: fmt.Sprintf("%s is writable", dir),
		Status:  model.CheckStatusOK,
	}}
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}

func joinWithComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += ", " + parts[i]
	}
	return result
}
