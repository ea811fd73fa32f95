package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/utils"
)

const (
	checkoutCommandUseConstant              = "checkout"
	checkoutCommandShortDescriptionConstant = "Check out the workspace and record its state as a new build"
	checkoutCommandLongDescriptionConstant  = "checkout runs repo init and repo sync, records the revision of every project as the next build, and reports the projects that changed since the last build of the same manifest branch."
	changelogFlagNameConstant               = "changelog"
	changelogFlagUsageConstant              = "Write the change document for this build to the given path."
	checkoutFailedTemplateConstant          = "checkout failed: %w"
	recordedChangesTemplateConstant         = "RECORDED: build %d (%d changed projects)\n"
	recordedNoBaselineTemplateConstant      = "RECORDED: build %d (no baseline)\n"
)

// CheckoutCommandBuilder assembles the checkout command.
type CheckoutCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	CommandRunner         execshell.CommandRunner
}

// Build constructs the checkout command.
func (builder *CheckoutCommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &repositoryFlagValues{}
	var changelogPath string

	command := &cobra.Command{
		Use:   checkoutCommandUseConstant,
		Short: checkoutCommandShortDescriptionConstant,
		Long:  checkoutCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := flagValues.apply(command, resolveConfiguration(builder.ConfigurationProvider))
			if command.Flags().Changed(changelogFlagNameConstant) {
				configuration.Changelog = strings.TrimSpace(changelogPath)
			}
			return builder.run(command, configuration)
		},
	}

	bindRepositoryFlags(command, flagValues)
	command.Flags().StringVar(&changelogPath, changelogFlagNameConstant, "", changelogFlagUsageConstant)

	return command, nil
}

func (builder *CheckoutCommandBuilder) run(command *cobra.Command, configuration ApplicationConfiguration) error {
	logger := resolveLogger(builder.LoggerProvider)
	runtime, runtimeError := newServiceRuntime(command.Context(), configuration, logger, builder.CommandRunner, utils.NewFlushingWriter(command.ErrOrStderr()))
	if runtimeError != nil {
		return runtimeError
	}
	defer runtime.Close()

	outcome, checkoutError := runtime.service.Checkout(command.Context(), configuration.serviceOptions())
	if checkoutError != nil {
		return fmt.Errorf(checkoutFailedTemplateConstant, checkoutError)
	}

	if outcome.ChangeSet.NoBaseline() {
		fmt.Fprintf(command.OutOrStdout(), recordedNoBaselineTemplateConstant, outcome.Record.Number)
		return nil
	}
	fmt.Fprintf(command.OutOrStdout(), recordedChangesTemplateConstant, outcome.Record.Number, outcome.ChangeSet.Len())
	return nil
}
