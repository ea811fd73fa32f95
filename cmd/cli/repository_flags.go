package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcm/internal/gitrepo"
	"github.com/temirov/reposcm/internal/snapshot"
	flagutils "github.com/temirov/reposcm/internal/utils/flags"
)

const (
	manifestURLFlagNameConstant     = "manifest-url"
	manifestURLFlagUsageConstant    = "Manifest repository URL passed to repo init -u."
	manifestBranchFlagNameConstant  = "branch"
	manifestBranchFlagUsageConstant = "Manifest branch passed to repo init -b."
	manifestFileFlagNameConstant    = "manifest-file"
	manifestFileFlagUsageConstant   = "Manifest file passed to repo init -m."
	manifestGroupFlagNameConstant   = "group"
	manifestGroupFlagUsageConstant  = "Manifest group passed to repo init -g."
	workspaceFlagNameConstant       = "workspace"
	workspaceFlagUsageConstant      = "Directory the checkout is materialized under."
	destinationFlagNameConstant     = "destination"
	destinationFlagUsageConstant    = "Sub-directory of the workspace to check out into."
	jobsFlagNameConstant            = "jobs"
	jobsFlagUsageConstant           = "Parallel sync jobs; 0 keeps the repo default."
	depthFlagNameConstant           = "depth"
	depthFlagUsageConstant          = "Shallow clone depth; 0 clones full history."
	quietFlagNameConstant           = "quiet"
	quietFlagUsageConstant          = "Pass -q to repo sync."
	traceFlagNameConstant           = "trace"
	traceFlagUsageConstant          = "Pass --trace to repo."
	resetFirstFlagNameConstant      = "reset-first"
	resetFirstFlagUsageConstant     = "Hard-reset every project before syncing."
	currentBranchFlagNameConstant   = "current-branch"
	currentBranchFlagUsageConstant  = "Pass -c to repo sync."
	ignoreProjectsFlagNameConstant  = "ignore-projects"
	ignoreProjectsFlagUsageConstant = "Server paths whose changes alone never warrant a build."
	headSourceFlagNameConstant      = "head-source"
	headSourceFlagUsageConstant     = "How the manifest repository HEAD is resolved."
	unsetIntegerFlagValueConstant   = 0
	unsetStringFlagValueConstant    = ""
	defaultToggleValueConstant      = false
)

// repositoryFlagValues holds the per-invocation overrides shared by checkout and poll.
type repositoryFlagValues struct {
	manifestURL    string
	manifestBranch string
	manifestFile   string
	manifestGroup  string
	workspace      string
	destination    string
	headSource     string
	ignoreProjects []string
	jobs           int
	depth          int
	quiet          bool
	trace          bool
	resetFirst     bool
	currentBranch  bool
}

func bindRepositoryFlags(command *cobra.Command, values *repositoryFlagValues) {
	flagSet := command.Flags()
	flagSet.StringVar(&values.manifestURL, manifestURLFlagNameConstant, unsetStringFlagValueConstant, manifestURLFlagUsageConstant)
	flagSet.StringVar(&values.manifestBranch, manifestBranchFlagNameConstant, unsetStringFlagValueConstant, manifestBranchFlagUsageConstant)
	flagSet.StringVar(&values.manifestFile, manifestFileFlagNameConstant, unsetStringFlagValueConstant, manifestFileFlagUsageConstant)
	flagSet.StringVar(&values.manifestGroup, manifestGroupFlagNameConstant, unsetStringFlagValueConstant, manifestGroupFlagUsageConstant)
	flagSet.StringVar(&values.workspace, workspaceFlagNameConstant, unsetStringFlagValueConstant, workspaceFlagUsageConstant)
	flagSet.StringVar(&values.destination, destinationFlagNameConstant, unsetStringFlagValueConstant, destinationFlagUsageConstant)
	flagSet.StringSliceVar(&values.ignoreProjects, ignoreProjectsFlagNameConstant, nil, ignoreProjectsFlagUsageConstant)
	flagSet.IntVar(&values.jobs, jobsFlagNameConstant, unsetIntegerFlagValueConstant, jobsFlagUsageConstant)
	flagSet.IntVar(&values.depth, depthFlagNameConstant, unsetIntegerFlagValueConstant, depthFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &values.quiet, quietFlagNameConstant, defaultToggleValueConstant, quietFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &values.trace, traceFlagNameConstant, defaultToggleValueConstant, traceFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &values.resetFirst, resetFirstFlagNameConstant, defaultToggleValueConstant, resetFirstFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &values.currentBranch, currentBranchFlagNameConstant, defaultToggleValueConstant, currentBranchFlagUsageConstant)
	flagutils.AddChoiceFlag(
		flagSet,
		&values.headSource,
		headSourceFlagNameConstant,
		string(gitrepo.HeadSourceProcess),
		[]string{string(gitrepo.HeadSourceProcess), string(gitrepo.HeadSourceGoGit)},
		headSourceFlagUsageConstant,
	)
}

// apply overlays the flags set on the command line onto the configuration.
func (values *repositoryFlagValues) apply(command *cobra.Command, configuration ApplicationConfiguration) ApplicationConfiguration {
	flagSet := command.Flags()
	applied := configuration

	if flagSet.Changed(manifestURLFlagNameConstant) {
		applied.Repo.ManifestURL = expandEnvironment(values.manifestURL)
	}
	if flagSet.Changed(manifestBranchFlagNameConstant) {
		applied.Repo.ManifestBranch = expandEnvironment(values.manifestBranch)
	}
	if flagSet.Changed(manifestFileFlagNameConstant) {
		applied.Repo.ManifestFile = expandEnvironment(values.manifestFile)
	}
	if flagSet.Changed(manifestGroupFlagNameConstant) {
		applied.Repo.ManifestGroup = expandEnvironment(values.manifestGroup)
	}
	if flagSet.Changed(workspaceFlagNameConstant) {
		applied.Workspace = values.workspace
	}
	if flagSet.Changed(destinationFlagNameConstant) {
		applied.Repo.DestinationDirectory = values.destination
	}
	if flagSet.Changed(ignoreProjectsFlagNameConstant) {
		applied.Repo.IgnoreProjects = snapshot.NewIgnoreList(values.ignoreProjects).ServerPaths()
	}
	if flagSet.Changed(jobsFlagNameConstant) {
		applied.Repo.Jobs = values.jobs
	}
	if flagSet.Changed(depthFlagNameConstant) {
		applied.Repo.Depth = values.depth
	}
	if flagSet.Changed(quietFlagNameConstant) {
		applied.Repo.Quiet = values.quiet
	}
	if flagSet.Changed(traceFlagNameConstant) {
		applied.Repo.Trace = values.trace
	}
	if flagSet.Changed(resetFirstFlagNameConstant) {
		applied.Repo.ResetFirst = values.resetFirst
	}
	if flagSet.Changed(currentBranchFlagNameConstant) {
		applied.Repo.CurrentBranch = values.currentBranch
	}
	if flagSet.Changed(headSourceFlagNameConstant) {
		applied.Repo.HeadSource = values.headSource
	}

	return applied
}
