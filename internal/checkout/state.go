package checkout

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/execshell"
)

const (
	manifestWorkingCopyDirectoryConstant = "manifests"
	manifestExportFailedMessageConstant  = "Static manifest export failed; continuing with captured output"
	manifestHeadFailedMessageConstant    = "Manifest HEAD could not be resolved; continuing without a revision"
	logFieldManifestLengthConstant       = "manifest_length"
)

// ManifestState is the raw material extracted from a checkout for snapshot construction.
type ManifestState struct {
	ManifestText     string
	ManifestRevision string
}

// ManifestWorkingCopy returns the manifest repository working copy inside a checkout.
func ManifestWorkingCopy(checkoutDirectory string) string {
	return filepath.Join(checkoutDirectory, repoMetadataDirectoryConstant, manifestWorkingCopyDirectoryConstant)
}

// ReadState exports the static manifest and resolves the manifest repository HEAD.
// Both reads are best effort: failures are logged and yield whatever output was captured.
func (orchestrator *Orchestrator) ReadState(executionContext context.Context, checkoutDirectory string, options Options) ManifestState {
	manifestText := orchestrator.exportManifest(executionContext, checkoutDirectory, options)

	manifestRevision, headError := orchestrator.headResolver.ResolveHead(executionContext, ManifestWorkingCopy(checkoutDirectory))
	if headError != nil {
		orchestrator.logger.Warn(manifestHeadFailedMessageConstant, zap.Error(headError))
		manifestRevision = ""
	}

	return ManifestState{ManifestText: manifestText, ManifestRevision: manifestRevision}
}

func (orchestrator *Orchestrator) exportManifest(executionContext context.Context, checkoutDirectory string, options Options) string {
	executionResult, executionError := orchestrator.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(options.ExecutableName()),
		Details: execshell.CommandDetails{
			Arguments:            manifestArguments(),
			WorkingDirectory:     checkoutDirectory,
			EnvironmentVariables: options.EnvironmentVariables,
			StandardErrorWriter:  orchestrator.outputWriter,
		},
	})
	if executionError == nil {
		return executionResult.StandardOutput
	}

	var failedError execshell.CommandFailedError
	capturedOutput := ""
	if errors.As(executionError, &failedError) {
		capturedOutput = failedError.Result.StandardOutput
	}
	orchestrator.logger.Warn(
		manifestExportFailedMessageConstant,
		zap.Error(executionError),
		zap.Int(logFieldManifestLengthConstant, len(capturedOutput)),
	)
	return capturedOutput
}
