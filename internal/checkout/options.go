package checkout

import (
	"fmt"
	"strconv"
)

const (
	defaultExecutableConstant           = "repo"
	traceFlagConstant                   = "--trace"
	initSubcommandConstant              = "init"
	manifestURLFlagConstant             = "-u"
	manifestBranchFlagConstant          = "-b"
	manifestFileFlagConstant            = "-m"
	referenceFlagTemplateConstant       = "--reference=%s"
	repoURLFlagTemplateConstant         = "--repo-url=%s"
	noRepoVerifyFlagConstant            = "--no-repo-verify"
	groupFlagConstant                   = "-g"
	depthFlagPrefixConstant             = "--depth="
	syncSubcommandConstant              = "sync"
	detachFlagConstant                  = "-d"
	currentBranchFlagConstant           = "-c"
	quietFlagConstant                   = "-q"
	jobsFlagPrefixConstant              = "--jobs="
	forallSubcommandConstant            = "forall"
	forallCommandFlagConstant           = "-c"
	hardResetCommandConstant            = "git reset --hard"
	manifestSubcommandConstant          = "manifest"
	manifestOutputFlagConstant          = "-o"
	standardOutputDestinationConstant   = "-"
	manifestRevisionsAsHashFlagConstant = "-r"
)

// Options configures one checkout. Empty strings mean the corresponding flag is omitted.
type Options struct {
	// Executable is the repo tool binary; empty selects "repo".
	Executable            string
	ManifestRepositoryURL string
	ManifestBranch        string
	ManifestFile          string
	MirrorDirectory       string
	RepoURL               string
	ManifestGroup         string
	// Depth limits fetched history when non-zero.
	Depth int
	// Jobs sets sync parallelism when positive.
	Jobs int
	// LocalManifest is either inline XML or the path of a local manifest file.
	LocalManifest        string
	DestinationDirectory string
	CurrentBranch        bool
	ResetFirst           bool
	Quiet                bool
	Trace                bool
	EnvironmentVariables map[string]string
}

// ExecutableName returns the configured repo executable.
func (options Options) ExecutableName() string {
	if len(options.Executable) == 0 {
		return defaultExecutableConstant
	}
	return options.Executable
}

func (options Options) initArguments() []string {
	arguments := options.globalArguments()
	arguments = append(arguments, initSubcommandConstant, manifestURLFlagConstant, options.ManifestRepositoryURL)
	if len(options.ManifestBranch) > 0 {
		arguments = append(arguments, manifestBranchFlagConstant, options.ManifestBranch)
	}
	if len(options.ManifestFile) > 0 {
		arguments = append(arguments, manifestFileFlagConstant, options.ManifestFile)
	}
	if len(options.MirrorDirectory) > 0 {
		arguments = append(arguments, fmt.Sprintf(referenceFlagTemplateConstant, options.MirrorDirectory))
	}
	if len(options.RepoURL) > 0 {
		arguments = append(arguments, fmt.Sprintf(repoURLFlagTemplateConstant, options.RepoURL), noRepoVerifyFlagConstant)
	}
	if len(options.ManifestGroup) > 0 {
		arguments = append(arguments, groupFlagConstant, options.ManifestGroup)
	}
	if options.Depth != 0 {
		arguments = append(arguments, depthFlagPrefixConstant+strconv.Itoa(options.Depth))
	}
	return arguments
}

func (options Options) syncArguments() []string {
	arguments := options.globalArguments()
	arguments = append(arguments, syncSubcommandConstant, detachFlagConstant)
	if options.CurrentBranch {
		arguments = append(arguments, currentBranchFlagConstant)
	}
	if options.Quiet {
		arguments = append(arguments, quietFlagConstant)
	}
	if options.Jobs > 0 {
		arguments = append(arguments, jobsFlagPrefixConstant+strconv.Itoa(options.Jobs))
	}
	return arguments
}

func resetArguments() []string {
	return []string{forallSubcommandConstant, forallCommandFlagConstant, hardResetCommandConstant}
}

func manifestArguments() []string {
	return []string{manifestSubcommandConstant, manifestOutputFlagConstant, standardOutputDestinationConstant, manifestRevisionsAsHashFlagConstant}
}

func (options Options) globalArguments() []string {
	if options.Trace {
		return []string{traceFlagConstant}
	}
	return []string{}
}
