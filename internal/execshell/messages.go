package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant  = "rev-parse"
	gitHeadReferenceConstant           = "HEAD"
	repoInitSubcommandNameConstant     = "init"
	repoSyncSubcommandNameConstant     = "sync"
	repoForallSubcommandNameConstant   = "forall"
	repoManifestSubcommandNameConstant = "manifest"
	repoManifestURLFlagConstant        = "-u"
	repoManifestBranchFlagConstant     = "-b"
)

const (
	gitRevisionStartTemplateConstant             = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant           = "%s in %s resolved to %s"
	gitRevisionEmptySuccessTemplateConstant      = "%s in %s did not resolve to a revision"
	gitRevisionFailureTemplateConstant           = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant  = "Unable to resolve %s in %s: %s"
	repoInitStartTemplateConstant                = "Initializing checkout in %s from %s%s"
	repoInitSuccessTemplateConstant              = "Initialized checkout in %s from %s%s"
	repoInitFailureTemplateConstant              = "Failed to initialize checkout in %s from %s%s (exit code %d%s)"
	repoInitExecutionFailureTemplateConstant     = "Unable to initialize checkout in %s from %s%s: %s"
	repoInitBranchSuffixTemplateConstant         = " on branch %s"
	repoSyncStartTemplateConstant                = "Synchronizing projects in %s"
	repoSyncSuccessTemplateConstant              = "Synchronized projects in %s"
	repoSyncFailureTemplateConstant              = "Failed to synchronize projects in %s (exit code %d%s)"
	repoSyncExecutionFailureTemplateConstant     = "Unable to synchronize projects in %s: %s"
	repoForallStartTemplateConstant              = "Running %q in every project of %s"
	repoForallSuccessTemplateConstant            = "Ran %q in every project of %s"
	repoForallFailureTemplateConstant            = "Failed to run %q in every project of %s (exit code %d%s)"
	repoForallExecutionFailureTemplateConstant   = "Unable to run %q in every project of %s: %s"
	repoManifestStartTemplateConstant            = "Exporting static manifest from %s"
	repoManifestSuccessTemplateConstant          = "Exported static manifest from %s"
	repoManifestFailureTemplateConstant          = "Failed to export static manifest from %s (exit code %d%s)"
	repoManifestExecutionFailureTemplateConstant = "Unable to export static manifest from %s: %s"
	unknownValueLabelConstant                    = "unknown"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		return formatter.describeGitMessage(command, result, failure, stage)
	}

	subcommandIndex := firstNonFlagIndex(command.Details.Arguments)
	if subcommandIndex < 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch command.Details.Arguments[subcommandIndex] {
	case repoInitSubcommandNameConstant:
		return formatter.describeRepoInitMessage(command, command.Details.Arguments[subcommandIndex+1:], result, failure, stage)
	case repoSyncSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			repoSyncStartTemplateConstant, repoSyncSuccessTemplateConstant,
			repoSyncFailureTemplateConstant, repoSyncExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command))
	case repoForallSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			repoForallStartTemplateConstant, repoForallSuccessTemplateConstant,
			repoForallFailureTemplateConstant, repoForallExecutionFailureTemplateConstant,
			lastArgument(command.Details.Arguments), formatter.describeWorkingDirectory(command))
	case repoManifestSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			repoManifestStartTemplateConstant, repoManifestSuccessTemplateConstant,
			repoManifestFailureTemplateConstant, repoManifestExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 || strings.TrimSpace(arguments[0]) != gitRevParseSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	reference := gitHeadReferenceConstant
	if len(arguments) > 1 {
		reference = arguments[len(arguments)-1]
	}
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 {
			return fmt.Sprintf(gitRevisionEmptySuccessTemplateConstant, reference, workingDirectory)
		}
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, trimmed)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeRepoInitMessage(command ShellCommand, initArguments []string, result ExecutionResult, failure error, stage messageStage) string {
	manifestURL := argumentAfter(initArguments, repoManifestURLFlagConstant)
	if len(manifestURL) == 0 {
		manifestURL = unknownValueLabelConstant
	}
	branchSuffix := emptyStringConstant
	if branch := argumentAfter(initArguments, repoManifestBranchFlagConstant); len(branch) > 0 {
		branchSuffix = fmt.Sprintf(repoInitBranchSuffixTemplateConstant, branch)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(repoInitStartTemplateConstant, workingDirectory, manifestURL, branchSuffix)
	case messageStageSuccess:
		return fmt.Sprintf(repoInitSuccessTemplateConstant, workingDirectory, manifestURL, branchSuffix)
	case messageStageFailure:
		return fmt.Sprintf(repoInitFailureTemplateConstant, workingDirectory, manifestURL, branchSuffix, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(repoInitExecutionFailureTemplateConstant, workingDirectory, manifestURL, branchSuffix, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// describeStage renders one of four templates. Failure templates receive the exit code and
// standard error suffix after the subjects; execution failure templates receive the cause.
func (formatter CommandMessageFormatter) describeStage(stage messageStage, result ExecutionResult, failure error, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, subjects...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	case messageStageExecutionFailure:
		executionFailureArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionFailureArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := fmt.Sprintf(commandLabelTemplateConstant, describeCommand(command), formatter.formatWorkingDirectorySuffix(command))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func firstNonFlagIndex(arguments []string) int {
	for argumentIndex, argument := range arguments {
		if !strings.HasPrefix(argument, flagPrefixConstant) {
			return argumentIndex
		}
	}
	return -1
}

func argumentAfter(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}

func lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return arguments[len(arguments)-1]
}
