package execshell_test

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcm/internal/execshell"
)

func TestOSCommandRunnerCapturesAndStreamsOutput(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}

	var streamedOutput bytes.Buffer
	var streamedError bytes.Buffer
	runner := execshell.NewOSCommandRunner()

	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName("sh"),
		Details: execshell.CommandDetails{
			Arguments:            []string{"-c", "echo \"$REPOSCM_TEST_VALUE\"; echo problem 1>&2; exit 3"},
			WorkingDirectory:     testInstance.TempDir(),
			EnvironmentVariables: map[string]string{"REPOSCM_TEST_VALUE": "hello"},
			StandardOutputWriter: &streamedOutput,
			StandardErrorWriter:  &streamedError,
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Equal(testInstance, "hello\n", result.StandardOutput)
	require.Equal(testInstance, "problem\n", result.StandardError)
	require.Equal(testInstance, "hello\n", streamedOutput.String())
	require.Equal(testInstance, "problem\n", streamedError.String())
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	_, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName("reposcm-definitely-missing-executable"),
	})

	require.Error(testInstance, runError)
}

func TestOSCommandRunnerTreatsCancellationAsFailure(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := execshell.NewOSCommandRunner().Run(cancelledContext, execshell.ShellCommand{
		Name:    execshell.CommandName("sh"),
		Details: execshell.CommandDetails{Arguments: []string{"-c", "sleep 5"}},
	})

	require.Error(testInstance, runError)
}
