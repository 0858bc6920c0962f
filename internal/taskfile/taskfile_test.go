package taskfile_test

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/taskfile"
)

func TestYAMLRepository_GetSuite(t *testing.T) {
	tests := map[string]struct {
		file     string
		expSuite *taskfile.Suite
		expErr   bool
	}{
		"a complete suite should load with defaults applied": {
			file: `
name: swap flow
tasks:
  - id: login
    steps:
      - action: navigate
        url: https://app.test
      - action: fill
        selector: "#user"
        value: alice
  - id: swap
    depends: [login]
    stopOnError: false
    steps:
      - action: click
        selector: "#confirm"
        interruptPolicy: reject
        timeout: 2000
`,
			expSuite: &taskfile.Suite{
				Name: "swap flow",
				Tasks: []model.Task{
					{
						ID:          "login",
						StopOnError: true,
						Steps: []model.Step{
							{Action: model.ActionNavigate, URL: "https://app.test", Interrupt: model.InterruptApprove},
							{Action: model.ActionFill, Selector: "#user", Value: "alice", Interrupt: model.InterruptApprove},
						},
					},
					{
						ID:          "swap",
						DependsOn:   []string{"login"},
						StopOnError: false,
						Steps: []model.Step{
							{Action: model.ActionClick, Selector: "#confirm", Interrupt: model.InterruptReject, Timeout: 2 * time.Second},
						},
					},
				},
			},
		},

		"wait and screenshot steps should map their fields": {
			file: `
tasks:
  - id: evidence
    steps:
      - action: wait
        ms: 1500
      - action: screenshot
        screenshot: final
        fullPage: true
      - action: press
        selector: "#search"
        key: Enter
`,
			expSuite: &taskfile.Suite{
				Tasks: []model.Task{
					{
						ID:          "evidence",
						StopOnError: true,
						Steps: []model.Step{
							{Action: model.ActionWait, Duration: 1500 * time.Millisecond, Interrupt: model.InterruptApprove},
							{Action: model.ActionScreenshot, Name: "final", FullPage: true, Interrupt: model.InterruptApprove},
							{Action: model.ActionPress, Selector: "#search", Key: "Enter", Interrupt: model.InterruptApprove},
						},
					},
				},
			},
		},

		"a JSON task file should load": {
			file: `{"tasks": [{"id": "a", "steps": [{"action": "navigate", "url": "https://app.test"}]}]}`,
			expSuite: &taskfile.Suite{
				Tasks: []model.Task{
					{
						ID:          "a",
						StopOnError: true,
						Steps: []model.Step{
							{Action: model.ActionNavigate, URL: "https://app.test", Interrupt: model.InterruptApprove},
						},
					},
				},
			},
		},

		"an empty task list should fail": {
			file:   `name: empty`,
			expErr: true,
		},

		"an unknown action should fail": {
			file: `
tasks:
  - id: a
    steps:
      - action: teleport
`,
			expErr: true,
		},

		"a click without selector should fail": {
			file: `
tasks:
  - id: a
    steps:
      - action: click
`,
			expErr: true,
		},

		"an unknown wait policy should fail": {
			file: `
tasks:
  - id: a
    steps:
      - action: navigate
        url: https://app.test
        wait: instant
`,
			expErr: true,
		},

		"an unknown interrupt policy should fail": {
			file: `
tasks:
  - id: a
    steps:
      - action: click
        selector: "#btn"
        interruptPolicy: maybe
`,
			expErr: true,
		},

		"invalid YAML should fail": {
			file:   `tasks: [`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			fsys := fstest.MapFS{
				"suite.yaml": &fstest.MapFile{Data: []byte(test.file)},
			}

			repo := taskfile.NewYAMLRepository(fsys)
			suite, err := repo.GetSuite(context.Background(), "suite.yaml")

			if test.expErr {
				require.Error(err)
				require.Nil(suite)
			} else {
				require.NoError(err)
				assert.Equal(test.expSuite, suite)
			}
		})
	}
}

func TestYAMLRepository_GetSuiteMissingFile(t *testing.T) {
	repo := taskfile.NewYAMLRepository(fstest.MapFS{})
	suite, err := repo.GetSuite(context.Background(), "missing.yaml")

	require.Error(t, err)
	require.Nil(t, suite)
}
