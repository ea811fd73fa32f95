package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	diffCommandUseConstant               = "diff"
	diffCommandShortDescriptionConstant  = "Compare two manifest files offline"
	diffCommandLongDescriptionConstant   = "diff builds a snapshot from each exported manifest and prints one line per added, modified, or removed project. Snapshots of different branches never compare, so a branch mismatch reports NO BASELINE."
	previousFlagNameConstant             = "previous"
	previousFlagUsageConstant            = "Manifest file of the earlier build."
	currentFlagNameConstant              = "current"
	currentFlagUsageConstant             = "Manifest file of the later build."
	previousBranchFlagNameConstant       = "previous-branch"
	previousBranchFlagUsageConstant      = "Manifest branch of the earlier build."
	currentBranchNameFlagNameConstant    = "branch"
	currentBranchNameFlagUsageConstant   = "Manifest branch of the later build."
	previousRevisionFlagNameConstant     = "previous-revision"
	previousRevisionFlagUsageConstant    = "Manifest repository revision of the earlier build."
	currentRevisionFlagNameConstant      = "revision"
	currentRevisionFlagUsageConstant     = "Manifest repository revision of the later build."
	manifestPathsRequiredMessageConstant = "both --previous and --current manifest files are required"
	readManifestErrorTemplateConstant    = "unable to read manifest %s: %w"
	noBaselineOutputConstant             = "NO BASELINE\n"
	diffLineSeparatorConstant            = " "
)

// DiffCommandBuilder assembles the diff command.
type DiffCommandBuilder struct {
	LoggerProvider LoggerProvider
}

type diffSide struct {
	manifestPath string
	branch       string
	revision     string
}

// Build constructs the diff command.
func (builder *DiffCommandBuilder) Build() (*cobra.Command, error) {
	var previous diffSide
	var current diffSide

	command := &cobra.Command{
		Use:   diffCommandUseConstant,
		Short: diffCommandShortDescriptionConstant,
		Long:  diffCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, previous, current)
		},
	}

	command.Flags().StringVar(&previous.manifestPath, previousFlagNameConstant, "", previousFlagUsageConstant)
	command.Flags().StringVar(&current.manifestPath, currentFlagNameConstant, "", currentFlagUsageConstant)
	command.Flags().StringVar(&previous.branch, previousBranchFlagNameConstant, "", previousBranchFlagUsageConstant)
	command.Flags().StringVar(&current.branch, currentBranchNameFlagNameConstant, "", currentBranchNameFlagUsageConstant)
	command.Flags().StringVar(&previous.revision, previousRevisionFlagNameConstant, "", previousRevisionFlagUsageConstant)
	command.Flags().StringVar(&current.revision, currentRevisionFlagNameConstant, "", currentRevisionFlagUsageConstant)

	return command, nil
}

func (builder *DiffCommandBuilder) run(command *cobra.Command, previous diffSide, current diffSide) error {
	if len(strings.TrimSpace(previous.manifestPath)) == 0 || len(strings.TrimSpace(current.manifestPath)) == 0 {
		return errors.New(manifestPathsRequiredMessageConstant)
	}

	snapshotBuilder := snapshot.NewBuilder(resolveLogger(builder.LoggerProvider), manifest.NewEntryPool())
	previousSnapshot, previousError := buildSnapshotFromFile(snapshotBuilder, previous)
	if previousError != nil {
		return previousError
	}
	currentSnapshot, currentError := buildSnapshotFromFile(snapshotBuilder, current)
	if currentError != nil {
		return currentError
	}

	var baseline *snapshot.RepositorySnapshot
	if previousSnapshot.Branch() == currentSnapshot.Branch() {
		baseline = previousSnapshot
	}

	changeSet := currentSnapshot.Diff(baseline)
	if changeSet.NoBaseline() {
		fmt.Fprint(command.OutOrStdout(), noBaselineOutputConstant)
		return nil
	}
	for _, change := range changeSet.Changes() {
		fmt.Fprintln(command.OutOrStdout(), formatChangeLine(change))
	}
	return nil
}

func buildSnapshotFromFile(builder *snapshot.Builder, side diffSide) (*snapshot.RepositorySnapshot, error) {
	manifestPath := strings.TrimSpace(side.manifestPath)
	content, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf(readManifestErrorTemplateConstant, manifestPath, readError)
	}
	return builder.Build(snapshot.Input{
		ManifestText:     string(content),
		ManifestRevision: strings.TrimSpace(side.revision),
		Branch:           strings.TrimSpace(side.branch),
	}), nil
}

func formatChangeLine(change snapshot.Change) string {
	fields := []string{string(change.Kind), change.Entry.Path, change.Entry.ServerPath}
	if change.Entry.HasRevision() {
		fields = append(fields, change.Entry.Revision)
	}
	return strings.Join(fields, diffLineSeparatorConstant)
}
