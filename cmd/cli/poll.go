package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/utils"
)

const (
	pollCommandUseConstant              = "poll"
	pollCommandShortDescriptionConstant = "Decide whether the workspace changed enough to warrant a build"
	pollCommandLongDescriptionConstant  = "poll checks the workspace out, compares it with the last recorded build of the same manifest branch, and prints none, significant, incomparable, or build-now. Changes confined to --ignore-projects report none."
	pollFailedTemplateConstant          = "poll failed: %w"
	pollOutcomeTemplateConstant         = "CHANGE: %s\n"
)

// PollCommandBuilder assembles the poll command.
type PollCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	CommandRunner         execshell.CommandRunner
}

// Build constructs the poll command.
func (builder *PollCommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &repositoryFlagValues{}

	command := &cobra.Command{
		Use:   pollCommandUseConstant,
		Short: pollCommandShortDescriptionConstant,
		Long:  pollCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, flagValues.apply(command, resolveConfiguration(builder.ConfigurationProvider)))
		},
	}

	bindRepositoryFlags(command, flagValues)

	return command, nil
}

func (builder *PollCommandBuilder) run(command *cobra.Command, configuration ApplicationConfiguration) error {
	logger := resolveLogger(builder.LoggerProvider)
	runtime, runtimeError := newServiceRuntime(command.Context(), configuration, logger, builder.CommandRunner, utils.NewFlushingWriter(command.ErrOrStderr()))
	if runtimeError != nil {
		return runtimeError
	}
	defer runtime.Close()

	result, pollError := runtime.service.Poll(command.Context(), configuration.serviceOptions(), nil)
	if pollError != nil {
		return fmt.Errorf(pollFailedTemplateConstant, pollError)
	}

	fmt.Fprintf(command.OutOrStdout(), pollOutcomeTemplateConstant, result.Change)
	return nil
}
