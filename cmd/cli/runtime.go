package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/checkout"
	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/gitrepo"
	"github.com/temirov/reposcm/internal/history"
	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/notify"
	"github.com/temirov/reposcm/internal/scm"
	"github.com/temirov/reposcm/internal/ui"
	pathutils "github.com/temirov/reposcm/internal/utils/path"
)

const (
	shellExecutorErrorTemplateConstant = "unable to construct shell executor: %w"
	headResolverErrorTemplateConstant  = "unable to construct head resolver: %w"
	orchestratorErrorTemplateConstant  = "unable to construct checkout orchestrator: %w"
	storeErrorTemplateConstant         = "unable to open build state store: %w"
	publisherErrorTemplateConstant     = "unable to construct change publisher: %w"
	serviceErrorTemplateConstant       = "unable to construct scm service: %w"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the resolved application configuration.
type ConfigurationProvider func() ApplicationConfiguration

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfiguration(provider ConfigurationProvider) ApplicationConfiguration {
	if provider == nil {
		return ApplicationConfiguration{}.sanitize(pathutils.NewHomeExpander())
	}
	return provider()
}

// serviceRuntime owns the collaborators of one scm.Service for the duration of a command.
type serviceRuntime struct {
	service   *scm.Service
	store     history.Store
	publisher notify.Publisher
}

func newServiceRuntime(executionContext context.Context, configuration ApplicationConfiguration, logger *zap.Logger, runner execshell.CommandRunner, buildLog io.Writer) (*serviceRuntime, error) {
	if runner == nil {
		runner = execshell.NewOSCommandRunner()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, runner, execshell.WithCommandEventObserver(ui.NewBuildLogReporter(buildLog)))
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorErrorTemplateConstant, executorError)
	}

	headResolver, resolverError := gitrepo.NewHeadResolver(gitrepo.HeadSource(configuration.Repo.HeadSource), shellExecutor)
	if resolverError != nil {
		return nil, fmt.Errorf(headResolverErrorTemplateConstant, resolverError)
	}

	orchestrator, orchestratorError := checkout.NewOrchestrator(checkout.Dependencies{
		Executor:     shellExecutor,
		HeadResolver: headResolver,
		Logger:       logger,
		OutputWriter: buildLog,
	})
	if orchestratorError != nil {
		return nil, fmt.Errorf(orchestratorErrorTemplateConstant, orchestratorError)
	}

	pool := manifest.NewEntryPool()
	store, storeError := history.OpenStore(executionContext, configuration.historyConfiguration(), pool)
	if storeError != nil {
		return nil, fmt.Errorf(storeErrorTemplateConstant, storeError)
	}

	publisher, publisherError := notify.NewPublisher(configuration.notifyConfiguration(), logger)
	if publisherError != nil {
		return nil, errors.Join(fmt.Errorf(publisherErrorTemplateConstant, publisherError), store.Close())
	}

	service, serviceError := scm.NewService(scm.Dependencies{
		Orchestrator: orchestrator,
		Store:        store,
		Publisher:    publisher,
		Pool:         pool,
		Logger:       logger,
	})
	if serviceError != nil {
		return nil, errors.Join(fmt.Errorf(serviceErrorTemplateConstant, serviceError), publisher.Close(), store.Close())
	}

	return &serviceRuntime{service: service, store: store, publisher: publisher}, nil
}

func (runtime *serviceRuntime) Close() error {
	return errors.Join(runtime.publisher.Close(), runtime.store.Close())
}
