package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/ui"
)

const (
	testCheckoutDirectoryConstant = "/srv/builds/aosp"
)

func TestBuildLogReporterEchoesCommands(testInstance *testing.T) {
	syncCommand := execshell.ShellCommand{
		Name: execshell.CommandRepo,
		Details: execshell.CommandDetails{
			Arguments:        []string{"sync", "-d", "--jobs=4"},
			WorkingDirectory: testCheckoutDirectoryConstant,
		},
	}

	testCases := []struct {
		name           string
		invoke         func(reporter *ui.BuildLogReporter)
		expectedOutput string
	}{
		{
			name:           "command_started",
			invoke:         func(reporter *ui.BuildLogReporter) { reporter.CommandStarted(syncCommand) },
			expectedOutput: "[/srv/builds/aosp] $ repo sync -d --jobs=4\n",
		},
		{
			name: "command_started_without_directory",
			invoke: func(reporter *ui.BuildLogReporter) {
				reporter.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"rev-parse", "HEAD"}}})
			},
			expectedOutput: "$ git rev-parse HEAD\n",
		},
		{
			name: "command_succeeded",
			invoke: func(reporter *ui.BuildLogReporter) {
				reporter.CommandCompleted(syncCommand, execshell.ExecutionResult{})
			},
			expectedOutput: "",
		},
		{
			name: "command_failed",
			invoke: func(reporter *ui.BuildLogReporter) {
				reporter.CommandCompleted(syncCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: "error: network"})
			},
			expectedOutput: "repo exited with code 1\n",
		},
		{
			name: "command_not_started",
			invoke: func(reporter *ui.BuildLogReporter) {
				reporter.CommandExecutionFailed(syncCommand, errors.New("executable file not found"))
			},
			expectedOutput: "repo could not be executed: executable file not found\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var buildLog bytes.Buffer
			testCase.invoke(ui.NewBuildLogReporter(&buildLog))
			require.Equal(testInstance, testCase.expectedOutput, buildLog.String())
		})
	}
}

func TestFormatCommandLineQuotesArguments(testInstance *testing.T) {
	resetCommand := execshell.ShellCommand{
		Name:    execshell.CommandRepo,
		Details: execshell.CommandDetails{Arguments: []string{"forall", "-c", "git reset --hard"}},
	}
	require.Equal(testInstance, `repo forall -c "git reset --hard"`, ui.FormatCommandLine(resetCommand))
}

func TestNilWriterDiscardsOutput(testInstance *testing.T) {
	reporter := ui.NewBuildLogReporter(nil)
	require.NotPanics(testInstance, func() {
		reporter.CommandStarted(execshell.ShellCommand{Name: execshell.CommandRepo})
	})
}
