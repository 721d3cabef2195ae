package gitrepo

import (
	"errors"
	"fmt"
	"strings"
)

const (
	operationErrorTemplateConstant           = "%s failed (%s): %s"
	operationErrorWithoutCauseTemplate       = "%s failed (%s)"
	failureKindBranchNotFoundConstant        = "branch_not_found"
	failureKindDirtyCheckoutBlockedConstant  = "dirty_checkout_blocked"
	failureKindNoChangesToStashConstant      = "no_changes_to_stash"
	failureKindApplyConflictConstant         = "apply_conflict"
	failureKindNothingToCommitConstant       = "nothing_to_commit"
	failureKindCommitRejectedConstant        = "commit_rejected"
	failureKindIdentityMissingConstant       = "identity_missing"
	failureKindPushRejectedConstant          = "push_rejected"
	failureKindPullConflictConstant          = "pull_conflict"
	failureKindRebaseConflictConstant        = "rebase_conflict"
	failureKindNoStashToDropConstant         = "no_stash_to_drop"
	failureKindStashFailedConstant           = "stash_failed"
	failureKindRepositoryNotFoundConstant    = "repository_not_found"
	failureKindRemoteNotFoundConstant        = "remote_not_found"
	failureKindUnclassifiedConstant          = "unclassified"
	operationStashNameConstant               = "stash changes"
	operationStashApplyNameConstant          = "apply stash"
	operationStashDropNameConstant           = "drop stash"
	operationSwitchBranchNameConstant        = "switch branch"
	operationStageNameConstant               = "stage files"
	operationCommitNameConstant              = "commit"
	operationPushNameConstant                = "push"
	operationPullNameConstant                = "pull"
	operationRebaseNameConstant              = "rebase"
	operationResetIndexNameConstant          = "reset index"
	operationDiscardChangesNameConstant      = "discard working changes"
	operationCurrentBranchNameConstant       = "identify current branch"
	operationRepositoryRootNameConstant      = "locate repository root"
	operationListRemotesNameConstant         = "list remotes"
	operationResolveRemoteNameConstant       = "resolve remote"
	operationReadConfigurationNameConstant   = "read configuration"
)

// FailureKind classifies gateway operation failures so callers can branch on the cause.
type FailureKind string

// Failure kinds surfaced by RepositoryGateway operations.
const (
	FailureBranchNotFound       FailureKind = FailureKind(failureKindBranchNotFoundConstant)
	FailureDirtyCheckoutBlocked FailureKind = FailureKind(failureKindDirtyCheckoutBlockedConstant)
	FailureNoChangesToStash     FailureKind = FailureKind(failureKindNoChangesToStashConstant)
	FailureApplyConflict        FailureKind = FailureKind(failureKindApplyConflictConstant)
	FailureNothingToCommit      FailureKind = FailureKind(failureKindNothingToCommitConstant)
	FailureCommitRejected       FailureKind = FailureKind(failureKindCommitRejectedConstant)
	FailureIdentityMissing      FailureKind = FailureKind(failureKindIdentityMissingConstant)
	FailurePushRejected         FailureKind = FailureKind(failureKindPushRejectedConstant)
	FailurePullConflict         FailureKind = FailureKind(failureKindPullConflictConstant)
	FailureRebaseConflict       FailureKind = FailureKind(failureKindRebaseConflictConstant)
	FailureNoStashToDrop        FailureKind = FailureKind(failureKindNoStashToDropConstant)
	FailureStashFailed          FailureKind = FailureKind(failureKindStashFailedConstant)
	FailureRepositoryNotFound   FailureKind = FailureKind(failureKindRepositoryNotFoundConstant)
	FailureRemoteNotFound       FailureKind = FailureKind(failureKindRemoteNotFoundConstant)
	FailureUnclassified         FailureKind = FailureKind(failureKindUnclassifiedConstant)
)

// GitOperation names a gateway operation for error reporting.
type GitOperation string

// Gateway operation names.
const (
	OperationStash             GitOperation = GitOperation(operationStashNameConstant)
	OperationStashApply        GitOperation = GitOperation(operationStashApplyNameConstant)
	OperationStashDrop         GitOperation = GitOperation(operationStashDropNameConstant)
	OperationSwitchBranch      GitOperation = GitOperation(operationSwitchBranchNameConstant)
	OperationStage             GitOperation = GitOperation(operationStageNameConstant)
	OperationCommit            GitOperation = GitOperation(operationCommitNameConstant)
	OperationPush              GitOperation = GitOperation(operationPushNameConstant)
	OperationPull              GitOperation = GitOperation(operationPullNameConstant)
	OperationRebase            GitOperation = GitOperation(operationRebaseNameConstant)
	OperationResetIndex        GitOperation = GitOperation(operationResetIndexNameConstant)
	OperationDiscardChanges    GitOperation = GitOperation(operationDiscardChangesNameConstant)
	OperationCurrentBranch     GitOperation = GitOperation(operationCurrentBranchNameConstant)
	OperationRepositoryRoot    GitOperation = GitOperation(operationRepositoryRootNameConstant)
	OperationListRemotes       GitOperation = GitOperation(operationListRemotesNameConstant)
	OperationResolveRemote     GitOperation = GitOperation(operationResolveRemoteNameConstant)
	OperationReadConfiguration GitOperation = GitOperation(operationReadConfigurationNameConstant)
)

// OperationError reports a gateway operation failure with its classified kind.
type OperationError struct {
	Operation GitOperation
	Kind      FailureKind
	Output    string
	Cause     error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		detail := strings.TrimSpace(operationError.Output)
		if len(detail) == 0 {
			return fmt.Sprintf(operationErrorWithoutCauseTemplate, operationError.Operation, operationError.Kind)
		}
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Kind, detail)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Kind, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// FailureKindOf extracts the failure kind from an error chain when present.
func FailureKindOf(candidateError error) (FailureKind, bool) {
	if candidateError == nil {
		return FailureUnclassified, false
	}
	var operationError OperationError
	if errors.As(candidateError, &operationError) {
		return operationError.Kind, true
	}
	return FailureUnclassified, false
}
