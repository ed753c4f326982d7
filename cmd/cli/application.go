package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/ghconnect/internal/demo"
	"github.com/temirov/ghconnect/internal/execshell"
	"github.com/temirov/ghconnect/internal/githubapi"
	"github.com/temirov/ghconnect/internal/githubauth"
	"github.com/temirov/ghconnect/internal/repos"
	"github.com/temirov/ghconnect/internal/utils"
	flagutils "github.com/temirov/ghconnect/internal/utils/flags"
	pathutils "github.com/temirov/ghconnect/internal/utils/path"
)

const (
	applicationNameConstant                 = "ghconnect"
	applicationShortDescriptionConstant     = "Read-only GitHub REST API client"
	applicationLongDescriptionConstant      = "ghconnect queries the GitHub REST API for repository details and latest releases, retrying rate limited and transient failures."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	tokenFlagNameConstant                   = "token"
	tokenFlagUsageConstant                  = "GitHub token. Takes precedence over the configured token source and GH_TOKEN/GITHUB_TOKEN/GITHUB_API_TOKEN."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	githubConfigurationKeyConstant          = "github"
	demoConfigurationKeyConstant            = "demo"
	environmentPrefixConstant               = "GHCONNECT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	environmentFileLoadedMessageConstant    = "environment file loaded"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	environmentFileFieldConstant            = "env_file"
	appliedKeysFieldConstant                = "applied_keys"
	retainedKeysFieldConstant               = "retained_keys"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	environmentFileErrorTemplateConstant    = "unable to load environment file: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	clientCreationErrorTemplateConstant     = "unable to create GitHub client: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	GitHub githubapi.Configuration        `mapstructure:"github"`
	Demo   demo.Configuration             `mapstructure:"demo"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationDependencies overrides the collaborators used by the application.
// Zero values select the production implementations.
type ApplicationDependencies struct {
	LoggerFactory     *utils.LoggerFactory
	HTTPClient        githubapi.HTTPClient
	Sleeper           githubapi.Sleeper
	EnvironmentLookup githubauth.EnvironmentLookup
	CommandRunner     execshell.CommandRunner
	HomeExpander      *pathutils.HomeExpander
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	environmentFileLoader  *utils.EnvironmentFileLoader
	loggerFactory          *utils.LoggerFactory
	homeExpander           *pathutils.HomeExpander
	dependencies           ApplicationDependencies
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	tokenFlagValue         string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles the CLI with the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	homeExpander := dependencies.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	loggerFactory := dependencies.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = utils.NewLoggerFactory()
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetPathExpander(homeExpander.Expand)

	application := &Application{
		configurationLoader:    configurationLoader,
		environmentFileLoader:  utils.NewEnvironmentFileLoader(homeExpander.Expand),
		loggerFactory:          loggerFactory,
		homeExpander:           homeExpander,
		dependencies:           dependencies,
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command)
		},
	}

	logFormatUsage := flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormats, logFormatFlagUsageConstant)

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatUsage)
	cobraCommand.PersistentFlags().StringVar(&application.tokenFlagValue, tokenFlagNameConstant, "", tokenFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	repositoryBuilder := repos.RepositoryCommandBuilder{
		LoggerProvider: loggerProvider,
		ClientProvider: application.createClient,
	}
	repositoryCommand, repositoryBuildError := repositoryBuilder.Build()
	if repositoryBuildError == nil {
		cobraCommand.AddCommand(repositoryCommand)
	}

	releaseBuilder := repos.ReleaseCommandBuilder{
		LoggerProvider: loggerProvider,
		ClientProvider: application.createClient,
	}
	releaseCommand, releaseBuildError := releaseBuilder.Build()
	if releaseBuildError == nil {
		cobraCommand.AddCommand(releaseCommand)
	}

	demoBuilder := demo.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() demo.Configuration {
			return application.configuration.Demo
		},
		ClientProvider: application.createClient,
	}
	demoCommand, demoBuildError := demoBuilder.Build()
	if demoBuildError == nil {
		cobraCommand.AddCommand(demoCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// SetArguments replaces the command line arguments parsed by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.rootCommand.SetArgs(arguments)
}

// SetOutput redirects command output and error output.
func (application *Application) SetOutput(writer io.Writer) {
	application.rootCommand.SetOut(writer)
	application.rootCommand.SetErr(writer)
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := utils.FlushLogger(application.logger); syncError != nil {
		return errors.Join(executionError, fmt.Errorf(loggerSyncErrorTemplateConstant, syncError))
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := application.defaultConfigurationValues()

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	environmentFileResult, environmentFileError := application.environmentFileLoader.Load(application.configuration.GitHub.EnvironmentFile)
	if environmentFileError != nil {
		return fmt.Errorf(environmentFileErrorTemplateConstant, environmentFileError)
	}

	// Variables applied from the environment file may carry GHCONNECT_ overrides.
	if len(environmentFileResult.AppliedKeys) > 0 {
		application.configuration = ApplicationConfiguration{}
		loadedConfiguration, loadError = application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
		if loadError != nil {
			return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
		}
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.ParseLogLevel(application.configuration.Common.LogLevel),
		utils.ParseLogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if environmentFileResult.Found {
		application.logger.Debug(
			environmentFileLoadedMessageConstant,
			zap.String(environmentFileFieldConstant, environmentFileResult.FilePath),
			zap.Strings(appliedKeysFieldConstant, environmentFileResult.AppliedKeys),
			zap.Strings(retainedKeysFieldConstant, environmentFileResult.RetainedKeys),
		)
	}

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		if environmentFileResult.Found {
			updatedContext = application.commandContextAccessor.WithEnvironmentFilePath(updatedContext, environmentFileResult.FilePath)
		}
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range githubapi.DefaultConfigurationValues(githubConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range demo.DefaultConfigurationValues(demoConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

func (application *Application) createClient(logger *zap.Logger) (repos.RepositoryClient, error) {
	if logger == nil {
		logger = application.logger
	}

	credentialResolver := githubauth.NewCredentialResolver(
		application.dependencies.EnvironmentLookup,
		application.readTokenFile,
		logger,
	)
	commandRunner := application.dependencies.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	shellExecutor, shellExecutorError := execshell.NewShellExecutor(logger, commandRunner)
	if shellExecutorError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, shellExecutorError)
	}
	credentialResolver.UseGitHubCLI(shellExecutor)

	credential := credentialResolver.ResolveCredential(application.tokenFlagValue, application.configuration.GitHub.TokenSource)

	executor, executorError := githubapi.NewRequestExecutor(
		application.configuration.GitHub.ExecutorSettings(credential.Token),
		githubapi.ExecutorDependencies{
			HTTPClient: application.dependencies.HTTPClient,
			Sleeper:    application.dependencies.Sleeper,
			Logger:     logger,
		},
	)
	if executorError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, executorError)
	}

	client, clientError := githubapi.NewClient(executor)
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}
	return client, nil
}

func (application *Application) readTokenFile(filePath string) ([]byte, error) {
	return os.ReadFile(application.homeExpander.Expand(strings.TrimSpace(filePath)))
}

func (application *Application) runRootCommand(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}
	return command.Help()
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
