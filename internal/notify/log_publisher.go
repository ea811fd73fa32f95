package notify

import (
	"context"

	"go.uber.org/zap"
)

const (
	eventPublishedMessageConstant = "Change notification"
	logFieldKindConstant          = "kind"
	logFieldBranchConstant        = "branch"
	logFieldBuildNumberConstant   = "build_number"
	logFieldChangeConstant        = "change"
	logFieldNoBaselineConstant    = "no_baseline"
	logFieldChangeCountConstant   = "change_count"
)

// LogPublisher writes events to the logger.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher constructs a LogPublisher. A nil logger discards events.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs a summary of the event.
func (publisher *LogPublisher) Publish(executionContext context.Context, event Event) error {
	publisher.logger.Info(
		eventPublishedMessageConstant,
		zap.String(logFieldKindConstant, string(event.Kind)),
		zap.String(logFieldBranchConstant, event.Branch),
		zap.Int(logFieldBuildNumberConstant, event.BuildNumber),
		zap.String(logFieldChangeConstant, event.Change),
		zap.Bool(logFieldNoBaselineConstant, event.NoBaseline),
		zap.Int(logFieldChangeCountConstant, len(event.Changes)),
	)
	return nil
}

// Close is a no-op.
func (publisher *LogPublisher) Close() error {
	return nil
}
