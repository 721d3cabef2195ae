package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/telescope/internal/execshell"
	"github.com/temirov/telescope/internal/gitrepo"
	"github.com/temirov/telescope/internal/utils"
	"github.com/temirov/telescope/internal/utils/flags"
	pathutils "github.com/temirov/telescope/internal/utils/path"
)

const (
	commandUseConstant              = "move [files...]"
	commandShortDescriptionConstant = "Move uncommitted changes onto an upstream branch"
	commandLongDescriptionConstant  = `move relocates the current working set onto an upstream branch:
 1) stashes the changeset and switches upstream to apply it
 2) commits the changeset and pushes it to the remote
 3) returns to the local branch and rebases it onto the upstream branch

If no files are listed, all changes are moved. When files are listed, only
those are committed upstream and the remainder stays in the stash.

Caveats: think carefully before rebasing branches that are part of a public
repository. No merge is performed after the rebase. If any step fails, the
stash is not removed until the changes are committed and pushed and the local
branch has been rebased.`

	branchFlagNameConstant    = "branch"
	branchFlagUsageConstant   = "Upstream branch to apply and rebase onto"
	remoteFlagNameConstant    = "remote"
	remoteFlagUsageConstant   = "Remote to push to; the literal \"none\" disables pushing"
	userFlagNameConstant      = "user"
	userFlagUsageConstant     = "Override user.name for the upstream commit"
	emailFlagNameConstant     = "email"
	emailFlagUsageConstant    = "Override user.email for the upstream commit"
	messageFlagNameConstant   = "message"
	messageFlagUsageConstant  = "Commit message for the upstream commit"
	norebaseFlagNameConstant  = "norebase"
	norebaseFlagUsageConstant = "Return to the local branch but do not rebase"
	noclearFlagNameConstant   = "noclear"
	noclearFlagUsageConstant  = "Keep the stash entry after the migration finishes"
	pullFlagNameConstant      = "pull"
	pullFlagUsageConstant     = "Pull from the remote before committing upstream"

	remoteDisabledLiteralConstant = "none"

	userNameConfigurationKeyConstant  = "user.name"
	userEmailConfigurationKeyConstant = "user.email"

	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	gatewayCreationErrorTemplateConstant  = "unable to construct repository gateway: %w"
	remoteNotConfiguredDetailTemplate     = "remote %q is not configured; use --remote none to skip pushing"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// WorkflowExecutor abstracts the migration service for command-level tests.
type WorkflowExecutor interface {
	Execute(executionContext context.Context, options WorkflowOptions) (MigrationResult, error)
}

// ServiceProvider constructs a workflow executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (WorkflowExecutor, error)

// CommandBuilder assembles the move Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     gitrepo.GitExecutor
	WorkingDirectory             string
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

type commandFlagValues struct {
	skipRebase       bool
	keepStash        bool
	pullBeforeCommit bool
}

// Build constructs the move command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runMove(command, arguments, flagValues)
		},
	}

	defaults := builder.resolveConfiguration()
	command.Flags().String(branchFlagNameConstant, defaults.UpstreamBranch, branchFlagUsageConstant)
	command.Flags().String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(userFlagNameConstant, defaults.CommitterName, userFlagUsageConstant)
	command.Flags().String(emailFlagNameConstant, defaults.CommitterEmail, emailFlagUsageConstant)
	command.Flags().String(messageFlagNameConstant, defaults.CommitMessage, messageFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.skipRebase, norebaseFlagNameConstant, defaults.SkipRebase, norebaseFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.keepStash, noclearFlagNameConstant, defaults.KeepStash, noclearFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.pullBeforeCommit, pullFlagNameConstant, defaults.PullBeforeCommit, pullFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMove(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger(configuration.EnableDebugLogging)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	repositoryRoot, rootError := gitrepo.ResolveRepositoryRoot(command.Context(), executor, workingDirectory)
	if rootError != nil {
		return rootError
	}

	gateway, gatewayError := gitrepo.NewRepositoryGateway(executor, repositoryRoot)
	if gatewayError != nil {
		return fmt.Errorf(gatewayCreationErrorTemplateConstant, gatewayError)
	}

	requestedRemote := resolveStringOption(command, remoteFlagNameConstant, configuration.RemoteName)
	remoteName, remoteError := builder.resolveRemote(command, gateway, requestedRemote)
	if remoteError != nil {
		return remoteError
	}

	committerName, committerEmail, identityError := builder.resolveIdentity(command, gateway, configuration)
	if identityError != nil {
		return identityError
	}

	fileSelection := resolveFileSelection(pathutils.NewFileSelectionSanitizer().Sanitize(arguments), workingDirectory)

	workflowOptions := WorkflowOptions{
		UpstreamBranch:   resolveStringOption(command, branchFlagNameConstant, configuration.UpstreamBranch),
		RemoteName:       remoteName,
		CommitterName:    committerName,
		CommitterEmail:   committerEmail,
		CommitMessage:    resolveStringOption(command, messageFlagNameConstant, configuration.CommitMessage),
		FileSelection:    fileSelection,
		SkipRebase:       resolveToggleOption(command, norebaseFlagNameConstant, flagValues.skipRebase, configuration.SkipRebase),
		KeepStash:        resolveToggleOption(command, noclearFlagNameConstant, flagValues.keepStash, configuration.KeepStash),
		PullBeforeCommit: resolveToggleOption(command, pullFlagNameConstant, flagValues.pullBeforeCommit, configuration.PullBeforeCommit),
	}

	service, serviceError := builder.resolveService(ServiceDependencies{Logger: logger, Gateway: gateway})
	if serviceError != nil {
		return serviceError
	}

	_, executionError := service.Execute(command.Context(), workflowOptions)
	return executionError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}

	requestedLogLevel := utils.LogLevelInfo
	if enableDebug {
		requestedLogLevel = utils.LogLevelDebug
	}
	logger, creationError := utils.NewLoggerFactory().CreateLogger(requestedLogLevel, utils.LogFormatConsole)
	if creationError != nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

// resolveRemote maps the literal "none" to an empty remote (disabling pushes)
// and requires any other requested remote to be configured before the
// workflow mutates anything.
func (builder *CommandBuilder) resolveRemote(command *cobra.Command, gateway *gitrepo.RepositoryGateway, requestedRemote string) (string, error) {
	trimmedRemote := strings.TrimSpace(requestedRemote)
	if len(trimmedRemote) == 0 || strings.EqualFold(trimmedRemote, remoteDisabledLiteralConstant) {
		return "", nil
	}

	configuredRemotes, listError := gateway.ListRemotes(command.Context())
	if listError != nil {
		return "", listError
	}

	for _, configuredRemote := range configuredRemotes {
		if configuredRemote == trimmedRemote {
			return trimmedRemote, nil
		}
	}

	return "", gitrepo.OperationError{
		Operation: gitrepo.OperationResolveRemote,
		Kind:      gitrepo.FailureRemoteNotFound,
		Output:    fmt.Sprintf(remoteNotConfiguredDetailTemplate, trimmedRemote),
	}
}

// resolveIdentity prefers explicit overrides and otherwise reads git
// configuration, where repository settings already take precedence over
// global ones.
func (builder *CommandBuilder) resolveIdentity(command *cobra.Command, gateway *gitrepo.RepositoryGateway, configuration CommandConfiguration) (string, string, error) {
	committerName := strings.TrimSpace(resolveStringOption(command, userFlagNameConstant, configuration.CommitterName))
	committerEmail := strings.TrimSpace(resolveStringOption(command, emailFlagNameConstant, configuration.CommitterEmail))

	if len(committerName) == 0 {
		configuredName, configError := gateway.ConfigValue(command.Context(), userNameConfigurationKeyConstant)
		if configError != nil {
			return "", "", configError
		}
		committerName = configuredName
	}

	if len(committerEmail) == 0 {
		configuredEmail, configError := gateway.ConfigValue(command.Context(), userEmailConfigurationKeyConstant)
		if configError != nil {
			return "", "", configError
		}
		committerEmail = configuredEmail
	}

	return committerName, committerEmail, nil
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (WorkflowExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

// resolveFileSelection anchors relative file arguments at the invocation
// directory. Gateway commands run from the repository root, so a bare "name.txt"
// typed inside a subdirectory would otherwise address the root file of the
// same name.
func resolveFileSelection(fileSelection []string, workingDirectory string) []string {
	if len(fileSelection) == 0 {
		return nil
	}

	resolvedPaths := make([]string, 0, len(fileSelection))
	for _, selectedPath := range fileSelection {
		if filepath.IsAbs(selectedPath) {
			resolvedPaths = append(resolvedPaths, selectedPath)
			continue
		}
		resolvedPaths = append(resolvedPaths, filepath.Join(workingDirectory, selectedPath))
	}
	return resolvedPaths
}

func resolveStringOption(command *cobra.Command, flagName string, configuredValue string) string {
	if command != nil && command.Flags().Changed(flagName) {
		flagValue, _ := command.Flags().GetString(flagName)
		return flagValue
	}
	return configuredValue
}

func resolveToggleOption(command *cobra.Command, flagName string, flagValue bool, configuredValue bool) bool {
	if command != nil && command.Flags().Changed(flagName) {
		return flagValue
	}
	return configuredValue
}
