package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/temirov/reposcm/internal/execshell"
)

const (
	commandEchoTemplateConstant                 = "[%s] $ %s\n"
	commandEchoWithoutDirectoryTemplateConstant = "$ %s\n"
	commandExitCodeTemplateConstant             = "%s exited with code %d\n"
	commandExecutionFailureTemplateConstant     = "%s could not be executed: %v\n"
	argumentSeparatorConstant                   = " "
	argumentQuoteCharactersConstant             = " \t\"'$"
)

// BuildLogReporter echoes command lifecycle events into a build log.
// It implements execshell.CommandEventObserver.
type BuildLogReporter struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewBuildLogReporter constructs a reporter writing to the provided writer. A nil writer discards output.
func NewBuildLogReporter(writer io.Writer) *BuildLogReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &BuildLogReporter{writer: writer}
}

// CommandStarted echoes the command line prefixed with its working directory.
func (reporter *BuildLogReporter) CommandStarted(command execshell.ShellCommand) {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		reporter.printf(commandEchoWithoutDirectoryTemplateConstant, FormatCommandLine(command))
		return
	}
	reporter.printf(commandEchoTemplateConstant, workingDirectory, FormatCommandLine(command))
}

// CommandCompleted reports non-zero exit codes. Successful commands print nothing further.
func (reporter *BuildLogReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		return
	}
	reporter.printf(commandExitCodeTemplateConstant, command.Name, result.ExitCode)
}

// CommandExecutionFailed reports commands that could not be started.
func (reporter *BuildLogReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	reporter.printf(commandExecutionFailureTemplateConstant, command.Name, failure)
}

func (reporter *BuildLogReporter) printf(template string, arguments ...any) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, template, arguments...)
}

// FormatCommandLine renders the command as a shell would display it, quoting
// arguments that contain whitespace or quote characters.
func FormatCommandLine(command execshell.ShellCommand) string {
	parts := make([]string, 0, len(command.Details.Arguments)+1)
	parts = append(parts, string(command.Name))
	for _, argument := range command.Details.Arguments {
		if len(argument) == 0 || strings.ContainsAny(argument, argumentQuoteCharactersConstant) {
			parts = append(parts, strconv.Quote(argument))
			continue
		}
		parts = append(parts, argument)
	}
	return strings.Join(parts, argumentSeparatorConstant)
}
