package scm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/checkout"
	"github.com/temirov/reposcm/internal/history"
	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/notify"
	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	orchestratorNotConfiguredMessageConstant = "checkout orchestrator not configured"
	storeNotConfiguredMessageConstant        = "build state store not configured"
	checkoutErrorTemplateConstant            = "checkout failed: %w"
	recordErrorTemplateConstant              = "record build state: %w"
	previousStateErrorTemplateConstant       = "locate previous build state: %w"
	latestBuildErrorTemplateConstant         = "read latest build number: %w"
	changelogErrorTemplateConstant           = "write change document: %w"
	buildRecordedMessageConstant             = "Recorded build state"
	pollIncomparableMessageConstant          = "Checkout failed while polling; reporting incomparable state"
	pollDecisionMessageConstant              = "Polling decision"
	notificationFailedMessageConstant        = "Change notification could not be published"
	logFieldBuildNumberConstant              = "build_number"
	logFieldBranchConstant                   = "branch"
	logFieldChangeSetConstant                = "change_set"
	logFieldChangeConstant                   = "change"
)

// ErrOrchestratorNotConfigured indicates the service was constructed without an orchestrator.
var ErrOrchestratorNotConfigured = errors.New(orchestratorNotConfiguredMessageConstant)

// ErrStoreNotConfigured indicates the service was constructed without a store.
var ErrStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)

// CheckoutOrchestrator materializes checkouts and reads their manifest state.
type CheckoutOrchestrator interface {
	Checkout(executionContext context.Context, workspace string, options checkout.Options) (string, error)
	ReadState(executionContext context.Context, checkoutDirectory string, options checkout.Options) checkout.ManifestState
}

// Dependencies holds the collaborators of a Service.
type Dependencies struct {
	Orchestrator CheckoutOrchestrator
	Store        history.Store
	Publisher    notify.Publisher
	Pool         *manifest.EntryPool
	Logger       *zap.Logger
	Clock        func() time.Time
}

// Options configures one checkout or poll.
type Options struct {
	Workspace  string
	Checkout   checkout.Options
	IgnoreList snapshot.IgnoreList
	// ChangelogPath receives the change document of a checkout; empty disables it.
	ChangelogPath string
}

// Service applies checkout and polling policy.
type Service struct {
	orchestrator CheckoutOrchestrator
	store        history.Store
	publisher    notify.Publisher
	builder      *snapshot.Builder
	logger       *zap.Logger
	clock        func() time.Time
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Orchestrator == nil {
		return nil, ErrOrchestratorNotConfigured
	}
	if dependencies.Store == nil {
		return nil, ErrStoreNotConfigured
	}

	logger := resolveLogger(dependencies.Logger)
	publisher := dependencies.Publisher
	if publisher == nil {
		publisher = notify.NewLogPublisher(logger)
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		orchestrator: dependencies.Orchestrator,
		store:        dependencies.Store,
		publisher:    publisher,
		builder:      snapshot.NewBuilder(logger, dependencies.Pool),
		logger:       logger,
		clock:        clock,
	}, nil
}

// CheckoutOutcome reports a recorded build.
type CheckoutOutcome struct {
	CheckoutDirectory string
	Record            history.BuildRecord
	Previous          *snapshot.RepositorySnapshot
	ChangeSet         snapshot.ChangeSet
}

// Checkout materializes the workspace, records its snapshot as a new build,
// and diffs it against the last build recorded for the same branch.
func (service *Service) Checkout(executionContext context.Context, options Options) (CheckoutOutcome, error) {
	checkoutDirectory, checkoutError := service.orchestrator.Checkout(executionContext, options.Workspace, options.Checkout)
	if checkoutError != nil {
		return CheckoutOutcome{}, fmt.Errorf(checkoutErrorTemplateConstant, checkoutError)
	}

	currentSnapshot := service.readSnapshot(executionContext, checkoutDirectory, options)
	record, appendError := service.store.Append(executionContext, service.clock(), currentSnapshot)
	if appendError != nil {
		return CheckoutOutcome{}, fmt.Errorf(recordErrorTemplateConstant, appendError)
	}

	previousSnapshot, previousError := history.FindLastState(executionContext, service.store, record.Number-1, currentSnapshot.Branch())
	if previousError != nil {
		return CheckoutOutcome{}, fmt.Errorf(previousStateErrorTemplateConstant, previousError)
	}

	changeSet := currentSnapshot.Diff(previousSnapshot)
	service.logger.Info(
		buildRecordedMessageConstant,
		zap.Int(logFieldBuildNumberConstant, record.Number),
		zap.String(logFieldBranchConstant, currentSnapshot.Branch()),
		zap.Object(logFieldChangeSetConstant, changeSet),
	)

	if len(options.ChangelogPath) > 0 {
		document := NewChangeDocument(record.Number, currentSnapshot, changeSet)
		if writeError := WriteChangeDocument(options.ChangelogPath, document); writeError != nil {
			return CheckoutOutcome{}, fmt.Errorf(changelogErrorTemplateConstant, writeError)
		}
	}

	event := notify.NewChangeSetEvent(notify.EventKindCheckout, service.clock(), currentSnapshot.Branch(), changeSet)
	event.BuildNumber = record.Number
	service.publish(executionContext, event)

	return CheckoutOutcome{
		CheckoutDirectory: checkoutDirectory,
		Record:            record,
		Previous:          previousSnapshot,
		ChangeSet:         changeSet,
	}, nil
}

// Poll checks the workspace out and compares it with the baseline. A nil
// baseline is replaced by the last recorded state of the same branch.
func (service *Service) Poll(executionContext context.Context, options Options, baseline *snapshot.RepositorySnapshot) (PollingResult, error) {
	if baseline == nil {
		latestNumber, latestError := service.store.LatestNumber(executionContext)
		if latestError != nil {
			return PollingResult{}, fmt.Errorf(latestBuildErrorTemplateConstant, latestError)
		}
		lastState, lastStateError := history.FindLastState(executionContext, service.store, latestNumber, options.Checkout.ManifestBranch)
		if lastStateError != nil {
			return PollingResult{}, fmt.Errorf(previousStateErrorTemplateConstant, lastStateError)
		}
		if lastState == nil {
			return service.decide(executionContext, PollingResult{Change: ChangeBuildNow}, options), nil
		}
		baseline = lastState
	}

	checkoutDirectory, checkoutError := service.orchestrator.Checkout(executionContext, options.Workspace, options.Checkout)
	if checkoutError != nil {
		service.logger.Warn(pollIncomparableMessageConstant, zap.Error(checkoutError))
		return service.decide(executionContext, PollingResult{Baseline: baseline, Current: baseline, Change: ChangeIncomparable}, options), nil
	}

	currentSnapshot := service.readSnapshot(executionContext, checkoutDirectory, options)
	result := PollingResult{Baseline: baseline, Current: currentSnapshot, Change: ChangeSignificant}
	switch {
	case currentSnapshot.Equal(baseline):
		result.Change = ChangeNone
	case options.IgnoreList.Ignorable(currentSnapshot.Diff(baseline)):
		result.Change = ChangeNone
	}
	return service.decide(executionContext, result, options), nil
}

func (service *Service) decide(executionContext context.Context, result PollingResult, options Options) PollingResult {
	service.logger.Info(
		pollDecisionMessageConstant,
		zap.String(logFieldChangeConstant, string(result.Change)),
		zap.String(logFieldBranchConstant, options.Checkout.ManifestBranch),
	)

	changeSet := snapshot.NoBaselineChangeSet()
	if result.Current != nil && result.Baseline != nil {
		changeSet = result.Current.Diff(result.Baseline)
	}
	event := notify.NewChangeSetEvent(notify.EventKindPoll, service.clock(), options.Checkout.ManifestBranch, changeSet)
	event.Change = string(result.Change)
	service.publish(executionContext, event)
	return result
}

func (service *Service) readSnapshot(executionContext context.Context, checkoutDirectory string, options Options) *snapshot.RepositorySnapshot {
	state := service.orchestrator.ReadState(executionContext, checkoutDirectory, options.Checkout)
	return service.builder.Build(snapshot.Input{
		ManifestText:          state.ManifestText,
		ManifestRevision:      state.ManifestRevision,
		ManifestRepositoryURL: options.Checkout.ManifestRepositoryURL,
		Branch:                options.Checkout.ManifestBranch,
	})
}

func (service *Service) publish(executionContext context.Context, event notify.Event) {
	if publishError := service.publisher.Publish(executionContext, event); publishError != nil {
		service.logger.Warn(notificationFailedMessageConstant, zap.Error(publishError))
	}
}

func resolveLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
