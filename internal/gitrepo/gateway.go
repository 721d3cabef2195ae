package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/telescope/internal/execshell"
)

const (
	executorMissingMessageConstant       = "git executor not configured"
	repositoryPathMissingMessageConstant = "repository path not configured"

	gitStashSubcommandConstant        = "stash"
	gitStashApplySubcommandConstant   = "apply"
	gitStashDropSubcommandConstant    = "drop"
	gitCheckoutSubcommandConstant     = "checkout"
	gitAddSubcommandConstant          = "add"
	gitCommitSubcommandConstant       = "commit"
	gitPushSubcommandConstant         = "push"
	gitPullSubcommandConstant         = "pull"
	gitRebaseSubcommandConstant       = "rebase"
	gitResetSubcommandConstant        = "reset"
	gitRevParseSubcommandConstant     = "rev-parse"
	gitRemoteSubcommandConstant       = "remote"
	gitConfigSubcommandConstant       = "config"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitShowTopLevelFlagConstant       = "--show-toplevel"
	gitHeadReferenceConstant          = "HEAD"
	gitAllFlagConstant                = "--all"
	gitForceFlagConstant              = "--force"
	gitMessageFlagConstant            = "-m"
	gitAuthorFlagTemplateConstant     = "--author=%s"
	gitConfigGetFlagConstant          = "--get"
	gitPathspecSeparatorConstant      = "--"
	gitCurrentDirectoryPathConstant   = "."
	noLocalChangesStashOutputConstant = "no local changes to save"
	noStashEntriesOutputConstant      = "no stash entries found"
	branchPathspecOutputConstant      = "did not match any file"
	branchUnknownPathspecConstant     = "pathspec"
	dirtyCheckoutOutputConstant       = "would be overwritten"
	dirtyCheckoutAdviceConstant       = "commit your changes or stash them"
	nothingToCommitOutputConstant     = "nothing to commit"
	notARepositoryOutputConstant      = "not a git repository"

	missingConfigurationKeyExitCodeConstant = 1
)

// GitExecutor abstracts git command execution for the gateway.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryGateway performs git operations against a single repository,
// classifying every failure into the gateway error taxonomy.
type RepositoryGateway struct {
	executor       GitExecutor
	repositoryPath string
}

var (
	errExecutorMissing       = errors.New(executorMissingMessageConstant)
	errRepositoryPathMissing = errors.New(repositoryPathMissingMessageConstant)
)

// NewRepositoryGateway constructs a gateway bound to the provided repository path.
func NewRepositoryGateway(executor GitExecutor, repositoryPath string) (*RepositoryGateway, error) {
	if executor == nil {
		return nil, errExecutorMissing
	}
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return nil, errRepositoryPathMissing
	}
	return &RepositoryGateway{executor: executor, repositoryPath: repositoryPath}, nil
}

// CurrentBranch reports the branch currently checked out.
func (gateway *RepositoryGateway) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := gateway.run(executionContext, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", gateway.classify(OperationCurrentBranch, executionError, func(string) FailureKind { return FailureRepositoryNotFound })
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// StashChanges saves all uncommitted local changes. A clean working tree is a
// hard failure, not a no-op: git reports it on stdout with a zero exit code.
func (gateway *RepositoryGateway) StashChanges(executionContext context.Context) error {
	executionResult, executionError := gateway.run(executionContext, gitStashSubcommandConstant)
	if executionError != nil {
		return gateway.classify(OperationStash, executionError, func(string) FailureKind { return FailureStashFailed })
	}
	if strings.Contains(strings.ToLower(executionResult.StandardOutput), noLocalChangesStashOutputConstant) {
		return OperationError{Operation: OperationStash, Kind: FailureNoChangesToStash, Output: strings.TrimSpace(executionResult.StandardOutput)}
	}
	return nil
}

// SwitchBranch checks out the named branch.
func (gateway *RepositoryGateway) SwitchBranch(executionContext context.Context, branchName string) error {
	_, executionError := gateway.run(executionContext, gitCheckoutSubcommandConstant, branchName)
	if executionError != nil {
		return gateway.classify(OperationSwitchBranch, executionError, switchBranchFailureKind)
	}
	return nil
}

// ApplyStash re-applies the most recent stash entry without removing it from the stash list.
func (gateway *RepositoryGateway) ApplyStash(executionContext context.Context) error {
	_, executionError := gateway.run(executionContext, gitStashSubcommandConstant, gitStashApplySubcommandConstant)
	if executionError != nil {
		return gateway.classify(OperationStashApply, executionError, applyStashFailureKind)
	}
	return nil
}

// DropStash removes the most recent stash entry.
func (gateway *RepositoryGateway) DropStash(executionContext context.Context) error {
	_, executionError := gateway.run(executionContext, gitStashSubcommandConstant, gitStashDropSubcommandConstant)
	if executionError != nil {
		return gateway.classify(OperationStashDrop, executionError, dropStashFailureKind)
	}
	return nil
}

// StageAndCommit stages the provided paths (or every change when the selection
// is empty) and commits them with the supplied author string and message.
func (gateway *RepositoryGateway) StageAndCommit(executionContext context.Context, paths []string, authorString string, commitMessage string) error {
	stageArguments := []string{gitAddSubcommandConstant, gitAllFlagConstant}
	if len(paths) > 0 {
		stageArguments = append([]string{gitAddSubcommandConstant, gitPathspecSeparatorConstant}, paths...)
	}
	if _, stageError := gateway.run(executionContext, stageArguments...); stageError != nil {
		return gateway.classify(OperationStage, stageError, func(string) FailureKind { return FailureCommitRejected })
	}

	commitArguments := []string{
		gitCommitSubcommandConstant,
		formatAuthorArgument(authorString),
		gitMessageFlagConstant,
		commitMessage,
	}
	if _, commitError := gateway.run(executionContext, commitArguments...); commitError != nil {
		return gateway.classify(OperationCommit, commitError, commitFailureKind)
	}
	return nil
}

// Push publishes the current branch to the named remote.
func (gateway *RepositoryGateway) Push(executionContext context.Context, remoteName string) error {
	_, executionError := gateway.run(executionContext, gitPushSubcommandConstant, remoteName, gitHeadReferenceConstant)
	if executionError != nil {
		return gateway.classify(OperationPush, executionError, func(string) FailureKind { return FailurePushRejected })
	}
	return nil
}

// Pull fetches and integrates from the named remote.
func (gateway *RepositoryGateway) Pull(executionContext context.Context, remoteName string) error {
	_, executionError := gateway.run(executionContext, gitPullSubcommandConstant, remoteName)
	if executionError != nil {
		return gateway.classify(OperationPull, executionError, func(string) FailureKind { return FailurePullConflict })
	}
	return nil
}

// Rebase rebases the current branch onto the provided branch.
func (gateway *RepositoryGateway) Rebase(executionContext context.Context, ontoBranch string) error {
	_, executionError := gateway.run(executionContext, gitRebaseSubcommandConstant, ontoBranch)
	if executionError != nil {
		return gateway.classify(OperationRebase, executionError, func(string) FailureKind { return FailureRebaseConflict })
	}
	return nil
}

// ResetIndex unstages everything while leaving the working tree untouched.
func (gateway *RepositoryGateway) ResetIndex(executionContext context.Context) error {
	_, executionError := gateway.run(executionContext, gitResetSubcommandConstant)
	if executionError != nil {
		return gateway.classify(OperationResetIndex, executionError, nil)
	}
	return nil
}

// DiscardWorkingChanges force-checks-out tracked files, discarding unstaged edits.
func (gateway *RepositoryGateway) DiscardWorkingChanges(executionContext context.Context) error {
	_, executionError := gateway.run(executionContext, gitCheckoutSubcommandConstant, gitForceFlagConstant, gitPathspecSeparatorConstant, gitCurrentDirectoryPathConstant)
	if executionError != nil {
		return gateway.classify(OperationDiscardChanges, executionError, nil)
	}
	return nil
}

// ListRemotes reports the names of all configured remotes.
func (gateway *RepositoryGateway) ListRemotes(executionContext context.Context) ([]string, error) {
	executionResult, executionError := gateway.run(executionContext, gitRemoteSubcommandConstant)
	if executionError != nil {
		return nil, gateway.classify(OperationListRemotes, executionError, nil)
	}

	remoteNames := []string{}
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) > 0 {
			remoteNames = append(remoteNames, trimmedLine)
		}
	}
	return remoteNames, nil
}

// ConfigValue reads a configuration value, honoring git's own precedence of
// repository configuration over global configuration. A missing key (git exit
// code 1) yields an empty value without an error; any other failure, such as
// an unreadable configuration file, is surfaced.
func (gateway *RepositoryGateway) ConfigValue(executionContext context.Context, configurationKey string) (string, error) {
	executionResult, executionError := gateway.run(executionContext, gitConfigSubcommandConstant, gitConfigGetFlagConstant, configurationKey)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == missingConfigurationKeyExitCodeConstant {
			return "", nil
		}
		return "", gateway.classify(OperationReadConfiguration, executionError, nil)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ResolveRepositoryRoot locates the top-level directory of the repository
// containing candidatePath, failing when candidatePath is not inside a work tree.
func ResolveRepositoryRoot(executionContext context.Context, executor GitExecutor, candidatePath string) (string, error) {
	if executor == nil {
		return "", errExecutorMissing
	}

	executionResult, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant},
		WorkingDirectory: candidatePath,
	})
	if executionError != nil {
		return "", OperationError{
			Operation: OperationRepositoryRoot,
			Kind:      FailureRepositoryNotFound,
			Output:    failureOutput(executionError),
			Cause:     executionError,
		}
	}

	repositoryRoot := strings.TrimSpace(executionResult.StandardOutput)
	if len(repositoryRoot) == 0 {
		return "", OperationError{Operation: OperationRepositoryRoot, Kind: FailureRepositoryNotFound}
	}
	return repositoryRoot, nil
}

func (gateway *RepositoryGateway) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return gateway.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: gateway.repositoryPath,
	})
}

func (gateway *RepositoryGateway) classify(operation GitOperation, executionError error, kindForOutput func(string) FailureKind) error {
	combinedOutput := failureOutput(executionError)

	failureKind := FailureUnclassified
	if kindForOutput != nil {
		failureKind = kindForOutput(strings.ToLower(combinedOutput))
	}

	return OperationError{
		Operation: operation,
		Kind:      failureKind,
		Output:    combinedOutput,
		Cause:     executionError,
	}
}

func failureOutput(executionError error) string {
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return strings.TrimSpace(strings.Join(
			[]string{strings.TrimSpace(commandFailure.Result.StandardOutput), strings.TrimSpace(commandFailure.Result.StandardError)},
			"\n",
		))
	}
	return ""
}

func formatAuthorArgument(authorString string) string {
	return fmt.Sprintf(gitAuthorFlagTemplateConstant, authorString)
}

func switchBranchFailureKind(loweredOutput string) FailureKind {
	switch {
	case strings.Contains(loweredOutput, branchPathspecOutputConstant), strings.Contains(loweredOutput, branchUnknownPathspecConstant):
		return FailureBranchNotFound
	case strings.Contains(loweredOutput, dirtyCheckoutOutputConstant), strings.Contains(loweredOutput, dirtyCheckoutAdviceConstant):
		return FailureDirtyCheckoutBlocked
	case strings.Contains(loweredOutput, notARepositoryOutputConstant):
		return FailureRepositoryNotFound
	default:
		return FailureUnclassified
	}
}

func applyStashFailureKind(loweredOutput string) FailureKind {
	if strings.Contains(loweredOutput, noStashEntriesOutputConstant) {
		return FailureNoStashToDrop
	}
	return FailureApplyConflict
}

func dropStashFailureKind(loweredOutput string) FailureKind {
	if strings.Contains(loweredOutput, noStashEntriesOutputConstant) {
		return FailureNoStashToDrop
	}
	return FailureStashFailed
}

func commitFailureKind(loweredOutput string) FailureKind {
	if strings.Contains(loweredOutput, nothingToCommitOutputConstant) {
		return FailureNothingToCommit
	}
	return FailureCommitRejected
}
