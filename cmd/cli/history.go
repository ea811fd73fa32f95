package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/history"
	"github.com/temirov/reposcm/internal/manifest"
)

const (
	historyCommandUseConstant              = "history"
	historyCommandShortDescriptionConstant = "List recorded builds, newest first"
	historyCommandLongDescriptionConstant  = "history prints the build number, manifest branch, and project count of every recorded build state."
	historyBranchFlagNameConstant          = "branch"
	historyBranchFlagUsageConstant         = "Only list builds of this manifest branch."
	historyListErrorTemplateConstant       = "unable to list build states: %w"
	historyLineTemplateConstant            = "%d %s %d\n"
	absentBranchDisplayConstant            = "-"
	historyListedMessageConstant           = "Listing build states"
	logFieldRecordCountConstant            = "record_count"
)

// HistoryCommandBuilder assembles the history command.
type HistoryCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the history command.
func (builder *HistoryCommandBuilder) Build() (*cobra.Command, error) {
	var branchFilter string

	command := &cobra.Command{
		Use:   historyCommandUseConstant,
		Short: historyCommandShortDescriptionConstant,
		Long:  historyCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			filterByBranch := command.Flags().Changed(historyBranchFlagNameConstant)
			return builder.run(command, filterByBranch, strings.TrimSpace(branchFilter))
		},
	}

	command.Flags().StringVar(&branchFilter, historyBranchFlagNameConstant, "", historyBranchFlagUsageConstant)

	return command, nil
}

func (builder *HistoryCommandBuilder) run(command *cobra.Command, filterByBranch bool, branch string) error {
	configuration := resolveConfiguration(builder.ConfigurationProvider)
	logger := resolveLogger(builder.LoggerProvider)

	store, storeError := history.OpenStore(command.Context(), configuration.historyConfiguration(), manifest.NewEntryPool())
	if storeError != nil {
		return fmt.Errorf(storeErrorTemplateConstant, storeError)
	}
	defer store.Close()

	records, listError := store.List(command.Context())
	if listError != nil {
		return fmt.Errorf(historyListErrorTemplateConstant, listError)
	}
	logger.Debug(historyListedMessageConstant, zap.Int(logFieldRecordCountConstant, len(records)))

	for _, record := range records {
		recordBranch := record.Snapshot.Branch()
		if filterByBranch && recordBranch != branch {
			continue
		}
		displayBranch := recordBranch
		if len(displayBranch) == 0 {
			displayBranch = absentBranchDisplayConstant
		}
		fmt.Fprintf(command.OutOrStdout(), historyLineTemplateConstant, record.Number, displayBranch, record.Snapshot.Len())
	}
	return nil
}
