package repos

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghconnect/internal/githubapi"
	"github.com/temirov/ghconnect/internal/utils"
)

const (
	repositoryCommandUseConstant              = "repo <owner>/<repository>"
	repositoryCommandShortDescriptionConstant = "Show repository details"
	repositoryCommandLongDescriptionConstant  = "repo fetches GET /repos/{owner}/{repo} and prints the full name, description, stars, forks, language and open issues."
	repositoryCommandExampleConstant          = "ghconnect repo octocat/Hello-World\nghconnect repo octocat Hello-World --output json"
	releaseCommandUseConstant                 = "release <owner>/<repository>"
	releaseCommandShortDescriptionConstant    = "Show the latest release"
	releaseCommandLongDescriptionConstant     = "release fetches GET /repos/{owner}/{repo}/releases/latest and prints the tag, name, publication time and author."
	releaseCommandExampleConstant             = "ghconnect release python/cpython --output yaml"
	repositoryLookupFailedTemplateConstant    = "repository lookup failed for %s: %w"
	releaseLookupFailedTemplateConstant       = "release lookup failed for %s: %w"
	clientProviderMissingMessageConstant      = "github client provider not configured"
	lookupStartedMessageConstant              = "Looking up repository data"
	logFieldRepositoryConstant                = "repository"
	logFieldCommandConstant                   = "command"
	logFieldOutputConstant                    = "output"
	logFieldConfigurationFileConstant         = "config_file"
)

// ErrClientProviderMissing indicates the builder has no way to create a GitHub client.
var ErrClientProviderMissing = errors.New(clientProviderMissingMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// RepositoryClient exposes the GitHub lookups used by the commands.
type RepositoryClient interface {
	GetRepositoryDetails(executionContext context.Context, owner string, repository string) (githubapi.Payload, error)
	GetLatestRelease(executionContext context.Context, owner string, repository string) (githubapi.Payload, error)
}

// ClientProvider creates the GitHub client for one command invocation.
type ClientProvider func(logger *zap.Logger) (RepositoryClient, error)

type lookupFunction func(client RepositoryClient, executionContext context.Context, reference RepositoryReference) (githubapi.Payload, error)

type renderFunction func(writer io.Writer, outputFormat string, payload githubapi.Payload) error

type lookupDefinition struct {
	use              string
	shortDescription string
	longDescription  string
	example          string
	failureTemplate  string
	lookup           lookupFunction
	render           renderFunction
}

// RepositoryCommandBuilder assembles the repo command.
type RepositoryCommandBuilder struct {
	LoggerProvider LoggerProvider
	ClientProvider ClientProvider
}

// Build constructs the repo command.
func (builder *RepositoryCommandBuilder) Build() (*cobra.Command, error) {
	return buildLookupCommand(builder.LoggerProvider, builder.ClientProvider, lookupDefinition{
		use:              repositoryCommandUseConstant,
		shortDescription: repositoryCommandShortDescriptionConstant,
		longDescription:  repositoryCommandLongDescriptionConstant,
		example:          repositoryCommandExampleConstant,
		failureTemplate:  repositoryLookupFailedTemplateConstant,
		lookup: func(client RepositoryClient, executionContext context.Context, reference RepositoryReference) (githubapi.Payload, error) {
			return client.GetRepositoryDetails(executionContext, reference.Owner, reference.Name)
		},
		render: RenderRepository,
	})
}

// ReleaseCommandBuilder assembles the release command.
type ReleaseCommandBuilder struct {
	LoggerProvider LoggerProvider
	ClientProvider ClientProvider
}

// Build constructs the release command.
func (builder *ReleaseCommandBuilder) Build() (*cobra.Command, error) {
	return buildLookupCommand(builder.LoggerProvider, builder.ClientProvider, lookupDefinition{
		use:              releaseCommandUseConstant,
		shortDescription: releaseCommandShortDescriptionConstant,
		longDescription:  releaseCommandLongDescriptionConstant,
		example:          releaseCommandExampleConstant,
		failureTemplate:  releaseLookupFailedTemplateConstant,
		lookup: func(client RepositoryClient, executionContext context.Context, reference RepositoryReference) (githubapi.Payload, error) {
			return client.GetLatestRelease(executionContext, reference.Owner, reference.Name)
		},
		render: RenderRelease,
	})
}

func buildLookupCommand(loggerProvider LoggerProvider, clientProvider ClientProvider, definition lookupDefinition) (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     definition.use,
		Short:   definition.shortDescription,
		Long:    definition.longDescription,
		Example: definition.example,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runLookup(command, arguments, loggerProvider, clientProvider, definition)
		},
	}
	command.Flags().StringP(OutputFormatFlag.Name, outputFlagShorthandConstant, OutputFormatFlag.DefaultChoice, OutputFormatFlag.Usage())
	return command, nil
}

func runLookup(command *cobra.Command, arguments []string, loggerProvider LoggerProvider, clientProvider ClientProvider, definition lookupDefinition) error {
	reference, referenceError := ParseRepositoryReference(arguments)
	if referenceError != nil {
		return referenceError
	}

	outputFlagValue, outputFlagError := command.Flags().GetString(OutputFormatFlag.Name)
	if outputFlagError != nil {
		return outputFlagError
	}
	outputFormat, outputFormatError := OutputFormatFlag.Normalize(outputFlagValue)
	if outputFormatError != nil {
		return outputFormatError
	}

	if clientProvider == nil {
		return ErrClientProviderMissing
	}

	logger := resolveLogger(loggerProvider)
	client, clientError := clientProvider(logger)
	if clientError != nil {
		return clientError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext)
	logger.Debug(
		lookupStartedMessageConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldRepositoryConstant, reference.String()),
		zap.String(logFieldOutputConstant, outputFormat),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
	)

	payload, lookupError := definition.lookup(client, executionContext, reference)
	if lookupError != nil {
		return fmt.Errorf(definition.failureTemplate, reference.String(), lookupError)
	}

	return definition.render(command.OutOrStdout(), outputFormat, payload)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
