package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/wrun/wrun/internal/browser/rod"
	"github.com/wrun/wrun/internal/executor"
	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/printer"
	"github.com/wrun/wrun/internal/scheduler"
	"github.com/wrun/wrun/internal/taskfile"
	"github.com/wrun/wrun/internal/wallet"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskFile string

	// Scheduling flags.
	maxParallel int
	failFast    bool

	// Browser flags.
	headless     bool
	browserBin   string
	extensionDir string
	userDataDir  string

	// Execution flags.
	artifactsDir string
	popupTimeout time.Duration

	noStore bool
	format  string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a task file against a browser.")
	c.Cmd.Arg("task-file", "Path to the task file (YAML or JSON).").Required().StringVar(&c.taskFile)

	// Scheduling flags.
	c.Cmd.Flag("max-parallel", "Maximum number of tasks running at once.").Default("4").IntVar(&c.maxParallel)
	c.Cmd.Flag("fail-fast", "Stop dispatching new tasks after the first failure.").BoolVar(&c.failFast)

	// Browser flags.
	c.Cmd.Flag("headless", "Run the browser headless (disable with --no-headless).").Default("true").BoolVar(&c.headless)
	c.Cmd.Flag("browser-bin", "Path to the browser binary (auto-detected when empty).").StringVar(&c.browserBin)
	c.Cmd.Flag("extension-dir", "Path to an unpacked wallet extension to load.").StringVar(&c.extensionDir)
	c.Cmd.Flag("user-data-dir", "Browser profile directory (temporary when empty).").StringVar(&c.userDataDir)

	// Execution flags.
	c.Cmd.Flag("artifacts-dir", "Directory for screenshots.").StringVar(&c.artifactsDir)
	c.Cmd.Flag("popup-timeout", "How long to wait for a wallet popup after a click.").Default("3s").DurationVar(&c.popupTimeout)

	c.Cmd.Flag("no-store", "Do not store the run in history.").BoolVar(&c.noStore)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Load the task suite.
	repo := taskfile.NewYAMLRepository(os.DirFS(filepath.Dir(c.taskFile)))
	suite, err := repo.GetSuite(ctx, filepath.Base(c.taskFile))
	if err != nil {
		return fmt.Errorf("could not load task file: %w", err)
	}

	// Initialize the browser driver.
	driver, err := rod.NewDriver(rod.DriverConfig{
		Bin:          c.browserBin,
		Headless:     c.headless,
		UserDataDir:  c.userDataDir,
		ExtensionDir: c.extensionDir,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create browser driver: %w", err)
	}
	defer driver.Close()

	// Initialize the wallet interrupt handler.
	interrupts, err := wallet.NewHandler(wallet.HandlerConfig{
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create interrupt handler: %w", err)
	}

	// Initialize the task executor.
	exec, err := executor.NewService(executor.ServiceConfig{
		Driver:        driver,
		Interrupts:    interrupts,
		ArtifactsDir:  c.artifactsDir,
		InterruptWait: c.popupTimeout,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create executor: %w", err)
	}

	// Create scheduler service.
	svc, err := scheduler.NewService(scheduler.ServiceConfig{
		Runner: exec,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create scheduler: %w", err)
	}

	// Execute run.
	startedAt := time.Now()
	report, err := svc.Run(ctx, scheduler.Request{
		Tasks:       suite.Tasks,
		MaxParallel: c.maxParallel,
		FailFast:    c.failFast,
	})
	if err != nil {
		return fmt.Errorf("could not run tasks: %w", err)
	}
	finishedAt := time.Now()

	// Store run in history.
	if !c.noStore {
		run := model.Run{
			ID:         ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
			TaskFile:   c.taskFile,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Report:     *report,
		}

		store, err := c.rootCmd.storageRepository(ctx)
		if err != nil {
			return err
		}

		if err := store.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("could not store run: %w", err)
		}
		logger.Debugf("Run %s stored", run.ID)
	}

	// Print report.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintReport(*report); err != nil {
		return fmt.Errorf("could not print report: %w", err)
	}

	if !report.Success {
		return fmt.Errorf("%d of %d tasks failed", report.Failed, report.Total)
	}

	return nil
}
