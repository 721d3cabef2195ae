package execshell

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	consoleCommandStartedTemplateConstant   = "Running %s"
	consoleCommandCompletedTemplateConstant = "Completed %s"
	consoleCommandFailedTemplateConstant    = "%s failed with exit code %d%s"
	consoleExecutionFailedTemplateConstant  = "%s failed: %s"
	consoleWorkingDirectorySuffixConstant   = " (in %s)"
	consoleStandardErrorSuffixConstant      = ": %s"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// consoleCommandEventObserver renders human-oriented command progress through the logger.
type consoleCommandEventObserver struct {
	logger *zap.Logger
}

func newConsoleCommandEventObserver(logger *zap.Logger) consoleCommandEventObserver {
	return consoleCommandEventObserver{logger: logger}
}

// CommandStarted reports the beginning of command execution.
func (observer consoleCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Info(fmt.Sprintf(consoleCommandStartedTemplateConstant, describeCommandWithDirectory(command)))
}

// CommandCompleted reports the command result.
func (observer consoleCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Info(fmt.Sprintf(consoleCommandCompletedTemplateConstant, describeCommand(command)))
		return
	}

	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(consoleStandardErrorSuffixConstant, trimmedStandardError)
	}
	observer.logger.Warn(fmt.Sprintf(consoleCommandFailedTemplateConstant, describeCommand(command), result.ExitCode, standardErrorSuffix))
}

// CommandExecutionFailed reports a command that never produced a result.
func (observer consoleCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Warn(fmt.Sprintf(consoleExecutionFailedTemplateConstant, describeCommand(command), failure))
}

func describeCommandWithDirectory(command ShellCommand) string {
	described := describeCommand(command)
	if len(command.Details.WorkingDirectory) > 0 {
		described += fmt.Sprintf(consoleWorkingDirectorySuffixConstant, command.Details.WorkingDirectory)
	}
	return described
}
