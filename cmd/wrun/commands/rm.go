package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wrun/wrun/internal/printer"
)

// RemoveCommand removes a stored run from history.
type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	runID string
}

// NewRemoveCommand returns the rm command.
func NewRemoveCommand(rootCmd *RootCommand, app *kingpin.Application) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Remove a stored run from history.")
	c.Cmd.Arg("run-id", "ID of the stored run.").Required().StringVar(&c.runID)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.storageRepository(ctx)
	if err != nil {
		return err
	}

	if err := repo.DeleteRun(ctx, c.runID); err != nil {
		return fmt.Errorf("could not remove run %q: %w", c.runID, err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Removed run: %s", c.runID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
