package migrate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/telescope/internal/gitrepo"
	"github.com/temirov/telescope/internal/migrate"
)

const (
	currentBranchCallNameConstant  = "CurrentBranch"
	stashChangesCallNameConstant   = "StashChanges"
	switchBranchCallNameConstant   = "SwitchBranch"
	applyStashCallNameConstant     = "ApplyStash"
	dropStashCallNameConstant      = "DropStash"
	stageAndCommitCallNameConstant = "StageAndCommit"
	pushCallNameConstant           = "Push"
	pullCallNameConstant           = "Pull"
	rebaseCallNameConstant         = "Rebase"
	resetIndexCallNameConstant     = "ResetIndex"
	discardCallNameConstant        = "DiscardWorkingChanges"

	featureBranchNameConstant  = "feature/login"
	upstreamBranchNameConstant = "master"
	originRemoteNameConstant   = "origin"
	commitMessageConstant      = "Move working tree changes upstream"
	authorNameConstant         = "Test Author"
	authorEmailConstant        = "author@example.com"
	combinedAuthorConstant     = "Test Author <author@example.com>"
)

type recordedCommit struct {
	paths         []string
	authorString  string
	commitMessage string
}

type scriptedGateway struct {
	currentBranchValue string
	currentBranchError error
	stashChangesError  error
	switchBranchErrors map[string]error
	applyStashError    error
	dropStashError     error
	commitError        error
	pushError          error
	pullError          error
	rebaseError        error
	resetIndexError    error
	discardError       error

	callSequence    []string
	switchedTo      []string
	recordedCommits []recordedCommit
	pushedRemotes   []string
	pulledRemotes   []string
	rebasedOnto     []string
}

func (gateway *scriptedGateway) CurrentBranch(executionContext context.Context) (string, error) {
	gateway.callSequence = append(gateway.callSequence, currentBranchCallNameConstant)
	return gateway.currentBranchValue, gateway.currentBranchError
}

func (gateway *scriptedGateway) StashChanges(executionContext context.Context) error {
	gateway.callSequence = append(gateway.callSequence, stashChangesCallNameConstant)
	return gateway.stashChangesError
}

func (gateway *scriptedGateway) SwitchBranch(executionContext context.Context, branchName string) error {
	gateway.callSequence = append(gateway.callSequence, switchBranchCallNameConstant)
	gateway.switchedTo = append(gateway.switchedTo, branchName)
	if gateway.switchBranchErrors != nil {
		if scriptedError, exists := gateway.switchBranchErrors[branchName]; exists {
			return scriptedError
		}
	}
	return nil
}

func (gateway *scriptedGateway) ApplyStash(executionContext context.Context) error {
	gateway.callSequence = append(gateway.callSequence, applyStashCallNameConstant)
	return gateway.applyStashError
}

func (gateway *scriptedGateway) DropStash(executionContext context.Context) error {
	gateway.callSequence = append(gateway.callSequence, dropStashCallNameConstant)
	return gateway.dropStashError
}

func (gateway *scriptedGateway) StageAndCommit(executionContext context.Context, paths []string, authorString string, commitMessage string) error {
	gateway.callSequence = append(gateway.callSequence, stageAndCommitCallNameConstant)
	gateway.recordedCommits = append(gateway.recordedCommits, recordedCommit{paths: paths, authorString: authorString, commitMessage: commitMessage})
	return gateway.commitError
}

func (gateway *scriptedGateway) Push(executionContext context.Context, remoteName string) error {
	gateway.callSequence = append(gateway.callSequence, pushCallNameConstant)
	gateway.pushedRemotes = append(gateway.pushedRemotes, remoteName)
	return gateway.pushError
}

func (gateway *scriptedGateway) Pull(executionContext context.Context, remoteName string) error {
	gateway.callSequence = append(gateway.callSequence, pullCallNameConstant)
	gateway.pulledRemotes = append(gateway.pulledRemotes, remoteName)
	return gateway.pullError
}

func (gateway *scriptedGateway) Rebase(executionContext context.Context, ontoBranch string) error {
	gateway.callSequence = append(gateway.callSequence, rebaseCallNameConstant)
	gateway.rebasedOnto = append(gateway.rebasedOnto, ontoBranch)
	return gateway.rebaseError
}

func (gateway *scriptedGateway) ResetIndex(executionContext context.Context) error {
	gateway.callSequence = append(gateway.callSequence, resetIndexCallNameConstant)
	return gateway.resetIndexError
}

func (gateway *scriptedGateway) DiscardWorkingChanges(executionContext context.Context) error {
	gateway.callSequence = append(gateway.callSequence, discardCallNameConstant)
	return gateway.discardError
}

func defaultWorkflowOptions() migrate.WorkflowOptions {
	return migrate.WorkflowOptions{
		UpstreamBranch: upstreamBranchNameConstant,
		RemoteName:     originRemoteNameConstant,
		CommitterName:  authorNameConstant,
		CommitterEmail: authorEmailConstant,
		CommitMessage:  commitMessageConstant,
	}
}

func newTestService(testInstance *testing.T, gateway *scriptedGateway) *migrate.Service {
	testInstance.Helper()
	service, creationError := migrate.NewService(migrate.ServiceDependencies{Logger: zap.NewNop(), Gateway: gateway})
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceRequiresGateway(testInstance *testing.T) {
	_, creationError := migrate.NewService(migrate.ServiceDependencies{Logger: zap.NewNop()})
	require.Error(testInstance, creationError)
}

func TestExecuteValidatesOptions(testInstance *testing.T) {
	testCases := []struct {
		name    string
		options migrate.WorkflowOptions
	}{
		{
			name:    "missing_upstream_branch",
			options: migrate.WorkflowOptions{CommitMessage: commitMessageConstant},
		},
		{
			name:    "missing_commit_message",
			options: migrate.WorkflowOptions{UpstreamBranch: upstreamBranchNameConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
			service := newTestService(testInstance, gateway)

			_, executionError := service.Execute(context.Background(), testCase.options)

			var invalidInput migrate.InvalidInputError
			require.ErrorAs(testInstance, executionError, &invalidInput)
			require.Empty(testInstance, gateway.callSequence)
		})
	}
}

func TestExecuteRejectsMigrationOntoCurrentBranch(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: upstreamBranchNameConstant}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	var invalidInput migrate.InvalidInputError
	require.ErrorAs(testInstance, executionError, &invalidInput)
	require.Equal(testInstance, []string{currentBranchCallNameConstant}, gateway.callSequence)
}

func TestExecuteCleanWorkingTreeAbortsBeforeSwitching(testInstance *testing.T) {
	cleanTreeError := gitrepo.OperationError{Operation: gitrepo.OperationStash, Kind: gitrepo.FailureNoChangesToStash}
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant, stashChangesError: cleanTreeError}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailureNoChangesToStash, failureKind)
	require.Equal(testInstance, []string{currentBranchCallNameConstant, stashChangesCallNameConstant}, gateway.callSequence)
}

func TestExecuteFullSuccessSequence(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	result, executionError := service.Execute(context.Background(), defaultWorkflowOptions())
	require.NoError(testInstance, executionError)

	expectedSequence := []string{
		currentBranchCallNameConstant,
		stashChangesCallNameConstant,
		switchBranchCallNameConstant,
		applyStashCallNameConstant,
		stageAndCommitCallNameConstant,
		pushCallNameConstant,
		switchBranchCallNameConstant,
		rebaseCallNameConstant,
		dropStashCallNameConstant,
	}
	require.Equal(testInstance, expectedSequence, gateway.callSequence)
	require.Equal(testInstance, []string{upstreamBranchNameConstant, featureBranchNameConstant}, gateway.switchedTo)
	require.Equal(testInstance, []string{originRemoteNameConstant}, gateway.pushedRemotes)
	require.Equal(testInstance, []string{upstreamBranchNameConstant}, gateway.rebasedOnto)

	require.Equal(testInstance, featureBranchNameConstant, result.OriginalBranch)
	require.Equal(testInstance, upstreamBranchNameConstant, result.UpstreamBranch)
	require.True(testInstance, result.Pushed)
	require.True(testInstance, result.Rebased)
	require.True(testInstance, result.StashDropped)

	require.Len(testInstance, gateway.recordedCommits, 1)
	require.Equal(testInstance, combinedAuthorConstant, gateway.recordedCommits[0].authorString)
	require.Equal(testInstance, commitMessageConstant, gateway.recordedCommits[0].commitMessage)
	require.Empty(testInstance, gateway.recordedCommits[0].paths)
}

func TestExecutePullRunsBeforeCommit(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.PullBeforeCommit = true

	_, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{originRemoteNameConstant}, gateway.pulledRemotes)

	pullIndex, commitIndex := -1, -1
	for callIndex, callName := range gateway.callSequence {
		switch callName {
		case pullCallNameConstant:
			pullIndex = callIndex
		case stageAndCommitCallNameConstant:
			commitIndex = callIndex
		}
	}
	require.GreaterOrEqual(testInstance, pullIndex, 0)
	require.Greater(testInstance, commitIndex, pullIndex)
}

func TestExecutePullSkippedWithoutRemote(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.RemoteName = ""
	options.PullBeforeCommit = true

	_, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, gateway.pulledRemotes)
	require.Empty(testInstance, gateway.pushedRemotes)
	require.NotContains(testInstance, gateway.callSequence, pullCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, pushCallNameConstant)
}

func TestExecutePartialSelectionBacksOutRemainder(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.FileSelection = []string{"cmd/main.go", "docs/readme.md"}

	_, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)

	expectedSequence := []string{
		currentBranchCallNameConstant,
		stashChangesCallNameConstant,
		switchBranchCallNameConstant,
		applyStashCallNameConstant,
		stageAndCommitCallNameConstant,
		pushCallNameConstant,
		resetIndexCallNameConstant,
		discardCallNameConstant,
		switchBranchCallNameConstant,
		rebaseCallNameConstant,
		dropStashCallNameConstant,
	}
	require.Equal(testInstance, expectedSequence, gateway.callSequence)
	require.Equal(testInstance, options.FileSelection, gateway.recordedCommits[0].paths)
}

func TestExecuteSwitchFailurePreservesStash(testInstance *testing.T) {
	switchError := gitrepo.OperationError{Operation: gitrepo.OperationSwitchBranch, Kind: gitrepo.FailureBranchNotFound}
	gateway := &scriptedGateway{
		currentBranchValue: featureBranchNameConstant,
		switchBranchErrors: map[string]error{upstreamBranchNameConstant: switchError},
	}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailureBranchNotFound, failureKind)
	require.NotContains(testInstance, gateway.callSequence, applyStashCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteApplyConflictStopsBeforeCommit(testInstance *testing.T) {
	applyError := gitrepo.OperationError{Operation: gitrepo.OperationStashApply, Kind: gitrepo.FailureApplyConflict}
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant, applyStashError: applyError}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailureApplyConflict, failureKind)
	require.NotContains(testInstance, gateway.callSequence, stageAndCommitCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecutePushFailurePreservesStash(testInstance *testing.T) {
	pushError := gitrepo.OperationError{Operation: gitrepo.OperationPush, Kind: gitrepo.FailurePushRejected}
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant, pushError: pushError}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailurePushRejected, failureKind)
	require.Contains(testInstance, gateway.callSequence, stageAndCommitCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteRebaseFailurePreservesStash(testInstance *testing.T) {
	rebaseError := gitrepo.OperationError{Operation: gitrepo.OperationRebase, Kind: gitrepo.FailureRebaseConflict}
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant, rebaseError: rebaseError}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailureRebaseConflict, failureKind)
	require.Contains(testInstance, gateway.callSequence, pushCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteReturnSwitchFailureLeavesUpstreamCheckedOut(testInstance *testing.T) {
	returnError := gitrepo.OperationError{Operation: gitrepo.OperationSwitchBranch, Kind: gitrepo.FailureDirtyCheckoutBlocked}
	gateway := &scriptedGateway{
		currentBranchValue: featureBranchNameConstant,
		switchBranchErrors: map[string]error{featureBranchNameConstant: returnError},
	}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	require.Error(testInstance, executionError)
	require.NotContains(testInstance, gateway.callSequence, rebaseCallNameConstant)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteSkipRebaseStillDropsStash(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.SkipRebase = true

	result, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)
	require.False(testInstance, result.Rebased)
	require.True(testInstance, result.StashDropped)
	require.NotContains(testInstance, gateway.callSequence, rebaseCallNameConstant)
	require.Contains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteKeepStashSkipsDrop(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.KeepStash = true

	result, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)
	require.True(testInstance, result.Rebased)
	require.False(testInstance, result.StashDropped)
	require.NotContains(testInstance, gateway.callSequence, dropStashCallNameConstant)
}

func TestExecuteMissingIdentityFailsBeforeCommit(testInstance *testing.T) {
	gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
	service := newTestService(testInstance, gateway)

	options := defaultWorkflowOptions()
	options.CommitterName = ""
	options.CommitterEmail = ""

	_, executionError := service.Execute(context.Background(), options)

	failureKind, classified := gitrepo.FailureKindOf(executionError)
	require.True(testInstance, classified)
	require.Equal(testInstance, gitrepo.FailureIdentityMissing, failureKind)
	require.NotContains(testInstance, gateway.callSequence, stageAndCommitCallNameConstant)
}

func TestExecuteAuthorStringVariants(testInstance *testing.T) {
	testCases := []struct {
		name           string
		committerName  string
		committerEmail string
		expectedAuthor string
	}{
		{
			name:           "name_and_email",
			committerName:  authorNameConstant,
			committerEmail: authorEmailConstant,
			expectedAuthor: combinedAuthorConstant,
		},
		{
			name:           "name_only",
			committerName:  authorNameConstant,
			expectedAuthor: authorNameConstant,
		},
		{
			name:           "email_only",
			committerEmail: authorEmailConstant,
			expectedAuthor: authorEmailConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			gateway := &scriptedGateway{currentBranchValue: featureBranchNameConstant}
			service := newTestService(testInstance, gateway)

			options := defaultWorkflowOptions()
			options.CommitterName = testCase.committerName
			options.CommitterEmail = testCase.committerEmail

			_, executionError := service.Execute(context.Background(), options)
			require.NoError(testInstance, executionError)
			require.Len(testInstance, gateway.recordedCommits, 1)
			require.Equal(testInstance, testCase.expectedAuthor, gateway.recordedCommits[0].authorString)
		})
	}
}

func TestExecuteCurrentBranchFailureStopsImmediately(testInstance *testing.T) {
	branchError := errors.New("not a git repository")
	gateway := &scriptedGateway{currentBranchError: branchError}
	service := newTestService(testInstance, gateway)

	_, executionError := service.Execute(context.Background(), defaultWorkflowOptions())

	require.ErrorIs(testInstance, executionError, branchError)
	require.Equal(testInstance, []string{currentBranchCallNameConstant}, gateway.callSequence)
}
