package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/telescope/internal/gitrepo"
)

const (
	upstreamBranchFieldNameConstant = "upstream_branch"
	commitMessageFieldNameConstant  = "commit_message"
	requiredValueMessageConstant    = "a value is required"
	sameBranchMessageConstant       = "must differ from the current branch"

	gatewayMissingMessageConstant       = "repository gateway not configured"
	captureNotCompletedMessageConstant  = "capture phase has not completed"
	capturePhaseErrorTemplateConstant   = "capture and apply failed: %w"
	finalizePhaseErrorTemplateConstant  = "finalize failed: %w"
	returnPhaseErrorTemplateConstant    = "return and rebase failed: %w"
	authorStringTemplateConstant        = "%s <%s>"
	identityMissingDetailConstant       = "no committer name or email resolved"
	returnSwitchFailedMessageConstant   = "Could not return to the original branch; the upstream branch remains checked out"
	stashPreservedMessageConstant       = "Stash entry preserved for manual recovery"
	applyConflictMessageConstant        = "Stash apply conflicted on the upstream branch; resolve manually, the stash entry is intact"
	skipRebaseWarningMessageConstant    = "Rebase skipped by request"
	keepStashWarningMessageConstant     = "Stash entry kept by request"
	partialBackoutLogMessageConstant    = "Discarding unselected changes from the upstream working tree"
	migrationCompletedMessageConstant   = "Migration completed"
	logFieldOriginalBranchConstant      = "original_branch"
	logFieldUpstreamBranchConstant      = "upstream_branch"
	logFieldRemoteNameConstant          = "remote"
	logFieldFileSelectionConstant       = "files"
)

// InvalidInputError describes workflow option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// RepositoryGateway captures the git operations the workflow depends on.
type RepositoryGateway interface {
	CurrentBranch(executionContext context.Context) (string, error)
	StashChanges(executionContext context.Context) error
	SwitchBranch(executionContext context.Context, branchName string) error
	ApplyStash(executionContext context.Context) error
	DropStash(executionContext context.Context) error
	StageAndCommit(executionContext context.Context, paths []string, authorString string, commitMessage string) error
	Push(executionContext context.Context, remoteName string) error
	Pull(executionContext context.Context, remoteName string) error
	Rebase(executionContext context.Context, ontoBranch string) error
	ResetIndex(executionContext context.Context) error
	DiscardWorkingChanges(executionContext context.Context) error
}

// WorkflowOptions configures a single migration run. The remote name being
// empty disables pushing entirely.
type WorkflowOptions struct {
	UpstreamBranch   string
	RemoteName       string
	CommitterName    string
	CommitterEmail   string
	CommitMessage    string
	FileSelection    []string
	SkipRebase       bool
	KeepStash        bool
	PullBeforeCommit bool
}

// MigrationResult captures the observable outcome of a completed run.
type MigrationResult struct {
	OriginalBranch string
	UpstreamBranch string
	Pushed         bool
	Rebased        bool
	StashDropped   bool
}

// workflowState is the transient bookkeeping for one run. It never outlives a
// single Execute invocation; the only durable state is git's own.
type workflowState struct {
	originalBranch        string
	stashCreated          bool
	partialReapplyPending bool
	pushed                bool
	rebased               bool
	stashDropped          bool
}

// ServiceDependencies describes required collaborators for the workflow.
type ServiceDependencies struct {
	Logger  *zap.Logger
	Gateway RepositoryGateway
}

// Service drives the migration state machine: stash, switch, apply, commit,
// push, return, rebase, drop. Once the stash exists it is preserved on every
// failure path; only the final fully successful step destroys it.
type Service struct {
	logger  *zap.Logger
	gateway RepositoryGateway
	state   workflowState
}

var errGatewayMissing = errors.New(gatewayMissingMessageConstant)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, errGatewayMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, gateway: dependencies.Gateway}, nil
}

// Execute performs the full workflow: capture-and-apply, finalize, and
// return-and-rebase, aborting on the first phase failure.
func (service *Service) Execute(executionContext context.Context, options WorkflowOptions) (MigrationResult, error) {
	if validationError := service.validateOptions(options); validationError != nil {
		return MigrationResult{}, validationError
	}

	service.state = workflowState{}

	if captureError := service.CaptureAndApply(executionContext, options); captureError != nil {
		return MigrationResult{}, fmt.Errorf(capturePhaseErrorTemplateConstant, captureError)
	}
	if finalizeError := service.Finalize(executionContext, options); finalizeError != nil {
		return MigrationResult{}, fmt.Errorf(finalizePhaseErrorTemplateConstant, finalizeError)
	}
	if returnError := service.ReturnAndRebase(executionContext, options); returnError != nil {
		return MigrationResult{}, fmt.Errorf(returnPhaseErrorTemplateConstant, returnError)
	}

	result := MigrationResult{
		OriginalBranch: service.state.originalBranch,
		UpstreamBranch: options.UpstreamBranch,
		Pushed:         service.state.pushed,
		Rebased:        service.state.rebased,
		StashDropped:   service.state.stashDropped,
	}

	service.logger.Info(
		migrationCompletedMessageConstant,
		zap.String(logFieldOriginalBranchConstant, result.OriginalBranch),
		zap.String(logFieldUpstreamBranchConstant, result.UpstreamBranch),
		zap.Bool("pushed", result.Pushed),
		zap.Bool("rebased", result.Rebased),
		zap.Bool("stash_dropped", result.StashDropped),
	)

	return result, nil
}

// CaptureAndApply records the current branch, stashes the working set, and
// re-applies it on the upstream branch. A clean working tree aborts before any
// repository mutation. Once the stash exists, a failed branch switch or a
// conflicting apply leaves it untouched for manual recovery.
func (service *Service) CaptureAndApply(executionContext context.Context, options WorkflowOptions) error {
	originalBranch, branchError := service.gateway.CurrentBranch(executionContext)
	if branchError != nil {
		return branchError
	}
	if originalBranch == options.UpstreamBranch {
		return InvalidInputError{FieldName: upstreamBranchFieldNameConstant, Message: sameBranchMessageConstant}
	}
	service.state.originalBranch = originalBranch

	if stashError := service.gateway.StashChanges(executionContext); stashError != nil {
		return stashError
	}
	service.state.stashCreated = true

	if switchError := service.gateway.SwitchBranch(executionContext, options.UpstreamBranch); switchError != nil {
		service.logger.Warn(
			stashPreservedMessageConstant,
			zap.String(logFieldOriginalBranchConstant, originalBranch),
			zap.String(logFieldUpstreamBranchConstant, options.UpstreamBranch),
		)
		return switchError
	}

	if applyError := service.gateway.ApplyStash(executionContext); applyError != nil {
		service.logger.Warn(
			applyConflictMessageConstant,
			zap.String(logFieldUpstreamBranchConstant, options.UpstreamBranch),
		)
		return applyError
	}

	return nil
}

// Finalize commits the working set (or the configured selection) on the
// upstream branch, pushes it when a remote is configured, and backs out any
// unselected changes so only the committed subset remains upstream.
func (service *Service) Finalize(executionContext context.Context, options WorkflowOptions) error {
	if len(service.state.originalBranch) == 0 {
		return errors.New(captureNotCompletedMessageConstant)
	}

	authorString, authorError := resolveAuthorString(options)
	if authorError != nil {
		return authorError
	}

	if options.PullBeforeCommit && len(options.RemoteName) > 0 {
		if pullError := service.gateway.Pull(executionContext, options.RemoteName); pullError != nil {
			return pullError
		}
	}

	if len(options.FileSelection) > 0 {
		service.state.partialReapplyPending = true
	}

	if commitError := service.gateway.StageAndCommit(executionContext, options.FileSelection, authorString, options.CommitMessage); commitError != nil {
		return commitError
	}

	if len(options.RemoteName) > 0 {
		if pushError := service.gateway.Push(executionContext, options.RemoteName); pushError != nil {
			service.logger.Warn(
				stashPreservedMessageConstant,
				zap.String(logFieldRemoteNameConstant, options.RemoteName),
			)
			return pushError
		}
		service.state.pushed = true
	}

	if service.state.partialReapplyPending {
		service.logger.Debug(
			partialBackoutLogMessageConstant,
			zap.Strings(logFieldFileSelectionConstant, options.FileSelection),
		)
		if resetError := service.gateway.ResetIndex(executionContext); resetError != nil {
			return resetError
		}
		if discardError := service.gateway.DiscardWorkingChanges(executionContext); discardError != nil {
			return discardError
		}
	}

	return nil
}

// ReturnAndRebase switches back to the original branch, rebases it onto the
// upstream branch unless skipped, and drops the stash unless kept. Dropping
// is the single point at which the stash is destroyed.
func (service *Service) ReturnAndRebase(executionContext context.Context, options WorkflowOptions) error {
	if len(service.state.originalBranch) == 0 {
		return errors.New(captureNotCompletedMessageConstant)
	}

	if switchError := service.gateway.SwitchBranch(executionContext, service.state.originalBranch); switchError != nil {
		// There is no automatic recovery here: the upstream branch has already
		// advanced and the user is left on it. Report and stop.
		service.logger.Error(
			returnSwitchFailedMessageConstant,
			zap.String(logFieldOriginalBranchConstant, service.state.originalBranch),
			zap.String(logFieldUpstreamBranchConstant, options.UpstreamBranch),
		)
		return switchError
	}

	if options.SkipRebase {
		service.logger.Warn(skipRebaseWarningMessageConstant, zap.String(logFieldOriginalBranchConstant, service.state.originalBranch))
	} else {
		if rebaseError := service.gateway.Rebase(executionContext, options.UpstreamBranch); rebaseError != nil {
			service.logger.Warn(
				stashPreservedMessageConstant,
				zap.String(logFieldOriginalBranchConstant, service.state.originalBranch),
			)
			return rebaseError
		}
		service.state.rebased = true
	}

	if options.KeepStash {
		service.logger.Warn(keepStashWarningMessageConstant)
		return nil
	}

	if dropError := service.gateway.DropStash(executionContext); dropError != nil {
		return dropError
	}
	service.state.stashDropped = true

	return nil
}

func (service *Service) validateOptions(options WorkflowOptions) error {
	if len(strings.TrimSpace(options.UpstreamBranch)) == 0 {
		return InvalidInputError{FieldName: upstreamBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.CommitMessage)) == 0 {
		return InvalidInputError{FieldName: commitMessageFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

// resolveAuthorString computes the commit author: both name and email produce
// "Name <email>", a single value is used verbatim, and neither is a hard
// failure surfaced before any gateway call.
func resolveAuthorString(options WorkflowOptions) (string, error) {
	committerName := strings.TrimSpace(options.CommitterName)
	committerEmail := strings.TrimSpace(options.CommitterEmail)

	switch {
	case len(committerName) > 0 && len(committerEmail) > 0:
		return fmt.Sprintf(authorStringTemplateConstant, committerName, committerEmail), nil
	case len(committerName) > 0:
		return committerName, nil
	case len(committerEmail) > 0:
		return committerEmail, nil
	default:
		return "", gitrepo.OperationError{
			Operation: gitrepo.OperationCommit,
			Kind:      gitrepo.FailureIdentityMissing,
			Output:    identityMissingDetailConstant,
		}
	}
}
