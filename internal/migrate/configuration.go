package migrate

import "strings"

const (
	defaultUpstreamBranchConstant = "master"
	defaultRemoteNameConstant     = "origin"
	defaultCommitMessageConstant  = "Move working tree changes upstream"

	branchConfigurationKeySuffixConstant   = ".branch"
	remoteConfigurationKeySuffixConstant   = ".remote"
	userConfigurationKeySuffixConstant     = ".user"
	emailConfigurationKeySuffixConstant    = ".email"
	messageConfigurationKeySuffixConstant  = ".message"
	norebaseConfigurationKeySuffixConstant = ".norebase"
	noclearConfigurationKeySuffixConstant  = ".noclear"
	pullConfigurationKeySuffixConstant     = ".pull"
	debugConfigurationKeySuffixConstant    = ".debug"
)

// CommandConfiguration captures persisted configuration for the move command.
type CommandConfiguration struct {
	UpstreamBranch     string `mapstructure:"branch"`
	RemoteName         string `mapstructure:"remote"`
	CommitterName      string `mapstructure:"user"`
	CommitterEmail     string `mapstructure:"email"`
	CommitMessage      string `mapstructure:"message"`
	SkipRebase         bool   `mapstructure:"norebase"`
	KeepStash          bool   `mapstructure:"noclear"`
	PullBeforeCommit   bool   `mapstructure:"pull"`
	EnableDebugLogging bool   `mapstructure:"debug"`
}

// DefaultCommandConfiguration returns baseline configuration values for the move command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		UpstreamBranch: defaultUpstreamBranchConstant,
		RemoteName:     defaultRemoteNameConstant,
		CommitMessage:  defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + branchConfigurationKeySuffixConstant:   defaults.UpstreamBranch,
		configurationKeyPrefix + remoteConfigurationKeySuffixConstant:   defaults.RemoteName,
		configurationKeyPrefix + userConfigurationKeySuffixConstant:     defaults.CommitterName,
		configurationKeyPrefix + emailConfigurationKeySuffixConstant:    defaults.CommitterEmail,
		configurationKeyPrefix + messageConfigurationKeySuffixConstant:  defaults.CommitMessage,
		configurationKeyPrefix + norebaseConfigurationKeySuffixConstant: defaults.SkipRebase,
		configurationKeyPrefix + noclearConfigurationKeySuffixConstant:  defaults.KeepStash,
		configurationKeyPrefix + pullConfigurationKeySuffixConstant:     defaults.PullBeforeCommit,
		configurationKeyPrefix + debugConfigurationKeySuffixConstant:    defaults.EnableDebugLogging,
	}
}

// Sanitize trims configured values without altering boolean flags.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.UpstreamBranch = strings.TrimSpace(configuration.UpstreamBranch)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.CommitterName = strings.TrimSpace(configuration.CommitterName)
	sanitized.CommitterEmail = strings.TrimSpace(configuration.CommitterEmail)
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	return sanitized
}
