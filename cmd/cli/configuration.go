package cli

import (
	"os"
	"strings"

	"github.com/temirov/reposcm/internal/checkout"
	"github.com/temirov/reposcm/internal/gitrepo"
	"github.com/temirov/reposcm/internal/history"
	"github.com/temirov/reposcm/internal/notify"
	"github.com/temirov/reposcm/internal/scm"
	"github.com/temirov/reposcm/internal/snapshot"
	"github.com/temirov/reposcm/internal/utils"
	pathutils "github.com/temirov/reposcm/internal/utils/path"
)

const (
	commonConfigurationKeyConstant    = "common"
	repoConfigurationKeyConstant      = "repo"
	stateConfigurationKeyConstant     = "state"
	notifyConfigurationKeyConstant    = "notify"
	workspaceConfigurationKeyConstant = "workspace"
	changelogConfigurationKeyConstant = "changelog"
	defaultExecutableConstant         = "repo"
	defaultWorkspaceConstant          = "."
	defaultStatePathConstant          = ".reposcm/state"
	defaultNotifyTopicConstant        = "reposcm.changes"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    CommonConfiguration `mapstructure:"common"`
	Repo      RepoConfiguration   `mapstructure:"repo"`
	State     StateConfiguration  `mapstructure:"state"`
	Notify    NotifyConfiguration `mapstructure:"notify"`
	Workspace string              `mapstructure:"workspace"`
	Changelog string              `mapstructure:"changelog"`
}

// CommonConfiguration stores logging configuration shared across commands.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// RepoConfiguration captures how the repo tool is invoked.
type RepoConfiguration struct {
	Executable           string   `mapstructure:"executable"`
	ManifestURL          string   `mapstructure:"manifest_url"`
	ManifestBranch       string   `mapstructure:"manifest_branch"`
	ManifestFile         string   `mapstructure:"manifest_file"`
	ManifestGroup        string   `mapstructure:"manifest_group"`
	MirrorDirectory      string   `mapstructure:"mirror_dir"`
	RepoURL              string   `mapstructure:"repo_url"`
	Jobs                 int      `mapstructure:"jobs"`
	Depth                int      `mapstructure:"depth"`
	LocalManifest        string   `mapstructure:"local_manifest"`
	DestinationDirectory string   `mapstructure:"destination_dir"`
	CurrentBranch        bool     `mapstructure:"current_branch"`
	ResetFirst           bool     `mapstructure:"reset_first"`
	Quiet                bool     `mapstructure:"quiet"`
	Trace                bool     `mapstructure:"trace"`
	IgnoreProjects       []string `mapstructure:"ignore_projects"`
	HeadSource           string   `mapstructure:"head_source"`
}

// StateConfiguration selects where build states are recorded.
type StateConfiguration struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

// NotifyConfiguration selects where change notifications are published.
type NotifyConfiguration struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// DefaultConfigurationValues lists every configuration key with its default so
// that environment overrides are recognized for all of them.
func DefaultConfigurationValues() map[string]any {
	repoKey := func(name string) string { return repoConfigurationKeyConstant + "." + name }
	stateKey := func(name string) string { return stateConfigurationKeyConstant + "." + name }
	notifyKey := func(name string) string { return notifyConfigurationKeyConstant + "." + name }

	return map[string]any{
		commonConfigurationKeyConstant + ".log_level":  string(utils.LogLevelInfo),
		commonConfigurationKeyConstant + ".log_format": string(utils.LogFormatStructured),
		repoKey("executable"):                          defaultExecutableConstant,
		repoKey("manifest_url"):                        "",
		repoKey("manifest_branch"):                     "",
		repoKey("manifest_file"):                       "",
		repoKey("manifest_group"):                      "",
		repoKey("mirror_dir"):                          "",
		repoKey("repo_url"):                            "",
		repoKey("jobs"):                                0,
		repoKey("depth"):                               0,
		repoKey("local_manifest"):                      "",
		repoKey("destination_dir"):                     "",
		repoKey("current_branch"):                      false,
		repoKey("reset_first"):                         false,
		repoKey("quiet"):                               false,
		repoKey("trace"):                               false,
		repoKey("ignore_projects"):                     []string{},
		repoKey("head_source"):                         string(gitrepo.HeadSourceProcess),
		stateKey("backend"):                            string(history.BackendFile),
		stateKey("path"):                               defaultStatePathConstant,
		stateKey("dsn"):                                "",
		notifyKey("brokers"):                           []string{},
		notifyKey("topic"):                             defaultNotifyTopicConstant,
		workspaceConfigurationKeyConstant:              defaultWorkspaceConstant,
		changelogConfigurationKeyConstant:              "",
	}
}

// sanitize trims values, applies fallbacks, expands ${VAR} references in the
// manifest coordinates, and resolves "~" in local paths.
func (configuration ApplicationConfiguration) sanitize(expander *pathutils.HomeExpander) ApplicationConfiguration {
	sanitized := configuration

	sanitized.Repo.Executable = strings.TrimSpace(configuration.Repo.Executable)
	if len(sanitized.Repo.Executable) == 0 {
		sanitized.Repo.Executable = defaultExecutableConstant
	}
	sanitized.Repo.ManifestURL = expandEnvironment(configuration.Repo.ManifestURL)
	sanitized.Repo.ManifestBranch = expandEnvironment(configuration.Repo.ManifestBranch)
	sanitized.Repo.ManifestFile = expandEnvironment(configuration.Repo.ManifestFile)
	sanitized.Repo.ManifestGroup = expandEnvironment(configuration.Repo.ManifestGroup)
	sanitized.Repo.MirrorDirectory = expandEnvironment(configuration.Repo.MirrorDirectory)
	sanitized.Repo.RepoURL = expandEnvironment(configuration.Repo.RepoURL)
	sanitized.Repo.DestinationDirectory = strings.TrimSpace(configuration.Repo.DestinationDirectory)
	sanitized.Repo.HeadSource = strings.ToLower(strings.TrimSpace(configuration.Repo.HeadSource))
	sanitized.Repo.IgnoreProjects = snapshot.NewIgnoreList(configuration.Repo.IgnoreProjects).ServerPaths()

	sanitized.State.Backend = strings.ToLower(strings.TrimSpace(configuration.State.Backend))
	sanitized.State.Path = expander.Expand(configuration.State.Path)
	if len(sanitized.State.Path) == 0 {
		sanitized.State.Path = defaultStatePathConstant
	}
	sanitized.State.DSN = strings.TrimSpace(configuration.State.DSN)

	sanitized.Notify.Brokers = sanitizeList(configuration.Notify.Brokers)
	sanitized.Notify.Topic = strings.TrimSpace(configuration.Notify.Topic)
	if len(sanitized.Notify.Topic) == 0 {
		sanitized.Notify.Topic = defaultNotifyTopicConstant
	}

	sanitized.Workspace = expander.Expand(configuration.Workspace)
	if len(sanitized.Workspace) == 0 {
		sanitized.Workspace = defaultWorkspaceConstant
	}
	sanitized.Changelog = expander.Expand(configuration.Changelog)

	return sanitized
}

func (configuration ApplicationConfiguration) checkoutOptions() checkout.Options {
	return checkout.Options{
		Executable:            configuration.Repo.Executable,
		ManifestRepositoryURL: configuration.Repo.ManifestURL,
		ManifestBranch:        configuration.Repo.ManifestBranch,
		ManifestFile:          configuration.Repo.ManifestFile,
		MirrorDirectory:       configuration.Repo.MirrorDirectory,
		RepoURL:               configuration.Repo.RepoURL,
		ManifestGroup:         configuration.Repo.ManifestGroup,
		Depth:                 configuration.Repo.Depth,
		Jobs:                  configuration.Repo.Jobs,
		LocalManifest:         configuration.Repo.LocalManifest,
		DestinationDirectory:  configuration.Repo.DestinationDirectory,
		CurrentBranch:         configuration.Repo.CurrentBranch,
		ResetFirst:            configuration.Repo.ResetFirst,
		Quiet:                 configuration.Repo.Quiet,
		Trace:                 configuration.Repo.Trace,
	}
}

func (configuration ApplicationConfiguration) serviceOptions() scm.Options {
	return scm.Options{
		Workspace:     configuration.Workspace,
		Checkout:      configuration.checkoutOptions(),
		IgnoreList:    snapshot.NewIgnoreList(configuration.Repo.IgnoreProjects),
		ChangelogPath: configuration.Changelog,
	}
}

func (configuration ApplicationConfiguration) historyConfiguration() history.Configuration {
	return history.Configuration{
		Backend: history.Backend(configuration.State.Backend),
		Path:    configuration.State.Path,
		DSN:     configuration.State.DSN,
	}
}

func (configuration ApplicationConfiguration) notifyConfiguration() notify.Configuration {
	return notify.Configuration{
		Brokers: configuration.Notify.Brokers,
		Topic:   configuration.Notify.Topic,
	}
}

func expandEnvironment(value string) string {
	return strings.TrimSpace(os.ExpandEnv(strings.TrimSpace(value)))
}

func sanitizeList(raw []string) []string {
	trimmed := make([]string, 0, len(raw))
	for _, candidate := range raw {
		value := strings.TrimSpace(candidate)
		if len(value) == 0 {
			continue
		}
		trimmed = append(trimmed, value)
	}
	return trimmed
}
