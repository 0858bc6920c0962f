package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wrun/wrun/internal/dag"
	"github.com/wrun/wrun/internal/taskfile"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskFile string
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Validate a task file without running it.")
	c.Cmd.Arg("task-file", "Path to the task file (YAML or JSON).").Required().StringVar(&c.taskFile)

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	repo := taskfile.NewYAMLRepository(os.DirFS(filepath.Dir(c.taskFile)))
	suite, err := repo.GetSuite(ctx, filepath.Base(c.taskFile))
	if err != nil {
		return fmt.Errorf("could not load task file: %w", err)
	}

	graph, err := dag.Build(suite.Tasks)
	if err != nil {
		return fmt.Errorf("invalid task graph: %w", err)
	}

	steps := 0
	for _, id := range graph.Order() {
		task, _ := graph.Task(id)
		steps += len(task.Steps)
	}

	out := c.rootCmd.Stdout
	fmt.Fprintf(out, "Task file is valid!\n")
	if suite.Name != "" {
		fmt.Fprintf(out, "  Suite: %s\n", suite.Name)
	}
	fmt.Fprintf(out, "  Tasks: %d\n", graph.Len())
	fmt.Fprintf(out, "  Steps: %d\n", steps)

	return nil
}
