package cli

import "github.com/temirov/telescope/internal/gitrepo"

// Process exit statuses reported by the telescope binary. Each failure kind
// maps onto the phase of the workflow it belongs to.
const (
	ExitCodeSuccess     = 0
	ExitCodeBranchError = 1
	ExitCodeStashError  = 2
	ExitCodeCommitError = 3
	ExitCodeRemoteError = 4
	ExitCodeConflicts   = 5
)

var failureKindExitCodes = map[gitrepo.FailureKind]int{
	gitrepo.FailureBranchNotFound:       ExitCodeBranchError,
	gitrepo.FailureDirtyCheckoutBlocked: ExitCodeBranchError,
	gitrepo.FailureRepositoryNotFound:   ExitCodeBranchError,
	gitrepo.FailureNoChangesToStash:     ExitCodeStashError,
	gitrepo.FailureNoStashToDrop:        ExitCodeStashError,
	gitrepo.FailureStashFailed:          ExitCodeStashError,
	gitrepo.FailureIdentityMissing:      ExitCodeCommitError,
	gitrepo.FailureNothingToCommit:      ExitCodeCommitError,
	gitrepo.FailureCommitRejected:       ExitCodeCommitError,
	gitrepo.FailurePushRejected:         ExitCodeRemoteError,
	gitrepo.FailureRemoteNotFound:       ExitCodeRemoteError,
	gitrepo.FailureApplyConflict:        ExitCodeConflicts,
	gitrepo.FailurePullConflict:         ExitCodeConflicts,
	gitrepo.FailureRebaseConflict:       ExitCodeConflicts,
}

// ExitCodeFor maps an execution error to the process exit status. Unclassified
// errors report as branch errors, matching the broadest workflow phase.
func ExitCodeFor(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}
	if failureKind, classified := gitrepo.FailureKindOf(executionError); classified {
		if exitCode, mapped := failureKindExitCodes[failureKind]; mapped {
			return exitCode
		}
	}
	return ExitCodeBranchError
}
