package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/gitrepo"
)

const (
	executorNotConfiguredMessageConstant     = "repo command executor not configured"
	headResolverNotConfiguredMessageConstant = "manifest HEAD resolver not configured"
	initFailedMessageConstant                = "repo init failed"
	syncFailedMessageConstant                = "repo sync failed"
	destinationFailedMessageConstant         = "checkout directory could not be prepared"
	checkoutStageErrorTemplateConstant       = "%w: %w"
	resetFirstFailedMessageConstant          = "Failed to reset first"
	syncRetryMessageConstant                 = "Sync failed. Resetting repository"
	forcedResetFailedMessageConstant         = "Forced reset failed; retrying sync anyway"
	checkoutCompletedMessageConstant         = "Checkout completed"
	logFieldCheckoutDirectoryConstant        = "checkout_directory"
	logFieldRetriedConstant                  = "retried"
	checkoutDirectoryPermissionsConstant     = 0o755
)

// ErrExecutorNotConfigured indicates the orchestrator was constructed without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrHeadResolverNotConfigured indicates the orchestrator was constructed without a HEAD resolver.
var ErrHeadResolverNotConfigured = errors.New(headResolverNotConfiguredMessageConstant)

// ErrInitFailed wraps failures of `repo init`.
var ErrInitFailed = errors.New(initFailedMessageConstant)

// ErrSyncFailed wraps a sync that failed again after the forced reset.
var ErrSyncFailed = errors.New(syncFailedMessageConstant)

// ErrCheckoutDirectory wraps failures to create the checkout directory.
var ErrCheckoutDirectory = errors.New(destinationFailedMessageConstant)

// CommandExecutor runs repo tool commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies holds the collaborators of an Orchestrator.
type Dependencies struct {
	Executor     CommandExecutor
	HeadResolver gitrepo.HeadResolver
	Logger       *zap.Logger
	// OutputWriter receives the output of init, reset, and sync as it is produced.
	OutputWriter io.Writer
}

// Orchestrator materializes checkouts with the repo tool.
type Orchestrator struct {
	executor     CommandExecutor
	headResolver gitrepo.HeadResolver
	logger       *zap.Logger
	outputWriter io.Writer
}

// NewOrchestrator validates dependencies and constructs an Orchestrator.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.HeadResolver == nil {
		return nil, ErrHeadResolverNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		executor:     dependencies.Executor,
		headResolver: dependencies.HeadResolver,
		logger:       logger,
		outputWriter: dependencies.OutputWriter,
	}, nil
}

// CheckoutDirectory returns the directory the checkout is materialized in.
func CheckoutDirectory(workspace string, options Options) string {
	if len(options.DestinationDirectory) == 0 {
		return workspace
	}
	return filepath.Join(workspace, options.DestinationDirectory)
}

// Checkout runs init, applies the local manifest, and syncs. It returns the checkout directory.
func (orchestrator *Orchestrator) Checkout(executionContext context.Context, workspace string, options Options) (string, error) {
	checkoutDirectory := CheckoutDirectory(workspace, options)
	if directoryError := os.MkdirAll(checkoutDirectory, checkoutDirectoryPermissionsConstant); directoryError != nil {
		return "", fmt.Errorf(checkoutStageErrorTemplateConstant, ErrCheckoutDirectory, directoryError)
	}

	if _, initError := orchestrator.run(executionContext, checkoutDirectory, options, options.initArguments()); initError != nil {
		return "", fmt.Errorf(checkoutStageErrorTemplateConstant, ErrInitFailed, initError)
	}

	if localManifestError := applyLocalManifest(checkoutDirectory, options.LocalManifest); localManifestError != nil {
		return "", localManifestError
	}

	if options.ResetFirst {
		if _, resetError := orchestrator.run(executionContext, checkoutDirectory, options, resetArguments()); resetError != nil {
			orchestrator.logger.Warn(resetFirstFailedMessageConstant, zap.Error(resetError))
		}
	}

	retried := false
	if _, syncError := orchestrator.run(executionContext, checkoutDirectory, options, options.syncArguments()); syncError != nil {
		retried = true
		orchestrator.logger.Warn(syncRetryMessageConstant, zap.Error(syncError))
		if _, resetError := orchestrator.run(executionContext, checkoutDirectory, options, resetArguments()); resetError != nil {
			orchestrator.logger.Warn(forcedResetFailedMessageConstant, zap.Error(resetError))
		}
		if _, retryError := orchestrator.run(executionContext, checkoutDirectory, options, options.syncArguments()); retryError != nil {
			return "", fmt.Errorf(checkoutStageErrorTemplateConstant, ErrSyncFailed, retryError)
		}
	}

	orchestrator.logger.Info(
		checkoutCompletedMessageConstant,
		zap.String(logFieldCheckoutDirectoryConstant, checkoutDirectory),
		zap.Bool(logFieldRetriedConstant, retried),
	)
	return checkoutDirectory, nil
}

func (orchestrator *Orchestrator) run(executionContext context.Context, checkoutDirectory string, options Options, arguments []string) (execshell.ExecutionResult, error) {
	return orchestrator.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(options.ExecutableName()),
		Details: execshell.CommandDetails{
			Arguments:            arguments,
			WorkingDirectory:     checkoutDirectory,
			EnvironmentVariables: options.EnvironmentVariables,
			StandardOutputWriter: orchestrator.outputWriter,
			StandardErrorWriter:  orchestrator.outputWriter,
		},
	})
}
