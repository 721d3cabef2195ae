package cli_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/telescope/cmd/cli"
	"github.com/temirov/telescope/internal/gitrepo"
)

func TestExitCodeFor(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{
			name:             "nil_error",
			executionError:   nil,
			expectedExitCode: cli.ExitCodeSuccess,
		},
		{
			name:             "branch_not_found",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationSwitchBranch, Kind: gitrepo.FailureBranchNotFound},
			expectedExitCode: cli.ExitCodeBranchError,
		},
		{
			name:             "dirty_checkout_blocked",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationSwitchBranch, Kind: gitrepo.FailureDirtyCheckoutBlocked},
			expectedExitCode: cli.ExitCodeBranchError,
		},
		{
			name:             "repository_not_found",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationRepositoryRoot, Kind: gitrepo.FailureRepositoryNotFound},
			expectedExitCode: cli.ExitCodeBranchError,
		},
		{
			name:             "no_changes_to_stash",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationStash, Kind: gitrepo.FailureNoChangesToStash},
			expectedExitCode: cli.ExitCodeStashError,
		},
		{
			name:             "stash_failure_without_known_output",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationStash, Kind: gitrepo.FailureStashFailed},
			expectedExitCode: cli.ExitCodeStashError,
		},
		{
			name:             "no_stash_to_drop",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationStashDrop, Kind: gitrepo.FailureNoStashToDrop},
			expectedExitCode: cli.ExitCodeStashError,
		},
		{
			name:             "identity_missing",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationCommit, Kind: gitrepo.FailureIdentityMissing},
			expectedExitCode: cli.ExitCodeCommitError,
		},
		{
			name:             "nothing_to_commit",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationCommit, Kind: gitrepo.FailureNothingToCommit},
			expectedExitCode: cli.ExitCodeCommitError,
		},
		{
			name:             "push_rejected",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationPush, Kind: gitrepo.FailurePushRejected},
			expectedExitCode: cli.ExitCodeRemoteError,
		},
		{
			name:             "remote_not_found",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationResolveRemote, Kind: gitrepo.FailureRemoteNotFound},
			expectedExitCode: cli.ExitCodeRemoteError,
		},
		{
			name:             "apply_conflict",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationStashApply, Kind: gitrepo.FailureApplyConflict},
			expectedExitCode: cli.ExitCodeConflicts,
		},
		{
			name:             "pull_conflict",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationPull, Kind: gitrepo.FailurePullConflict},
			expectedExitCode: cli.ExitCodeConflicts,
		},
		{
			name:             "rebase_conflict",
			executionError:   gitrepo.OperationError{Operation: gitrepo.OperationRebase, Kind: gitrepo.FailureRebaseConflict},
			expectedExitCode: cli.ExitCodeConflicts,
		},
		{
			name:             "wrapped_classified_error",
			executionError:   fmt.Errorf("finalize failed: %w", gitrepo.OperationError{Operation: gitrepo.OperationPush, Kind: gitrepo.FailurePushRejected}),
			expectedExitCode: cli.ExitCodeRemoteError,
		},
		{
			name:             "unclassified_error",
			executionError:   errors.New("unexpected failure"),
			expectedExitCode: cli.ExitCodeBranchError,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCodeFor(testCase.executionError))
		})
	}
}
