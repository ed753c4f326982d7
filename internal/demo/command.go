package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghconnect/internal/repos"
)

const (
	demoCommandUseConstant               = "demo"
	demoCommandShortDescriptionConstant  = "Walk through the GitHub client features"
	demoCommandLongDescriptionConstant   = "demo fetches repository details, the latest release of a second repository and a repository that does not exist. API errors are reported on stdout and never fail the command."
	repositoryFlagNameConstant           = "repository"
	repositoryFlagUsageConstant          = "Repository for the details step (owner/repository)"
	releaseFlagNameConstant              = "release-repository"
	releaseFlagUsageConstant             = "Repository for the latest release step (owner/repository)"
	missingFlagNameConstant              = "missing-repository"
	missingFlagUsageConstant             = "Repository expected to be absent (owner/repository)"
	clientProviderMissingMessageConstant = "github client provider not configured"
	demoOutputFailedTemplateConstant     = "demo output failed: %w"
	demoSummaryMessageConstant           = "Demo finished"
	logFieldStepsConstant                = "steps"
	logFieldFailedConstant               = "failed"
)

// ErrClientProviderMissing indicates the builder has no way to create a GitHub client.
var ErrClientProviderMissing = errors.New(clientProviderMissingMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the configured demo targets.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the demo command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientProvider        repos.ClientProvider
}

// Build constructs the demo command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   demoCommandUseConstant,
		Short: demoCommandShortDescriptionConstant,
		Long:  demoCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(releaseFlagNameConstant, "", releaseFlagUsageConstant)
	command.Flags().String(missingFlagNameConstant, "", missingFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	if builder.ClientProvider == nil {
		return ErrClientProviderMissing
	}

	logger := builder.resolveLogger()
	client, clientError := builder.ClientProvider(logger)
	if clientError != nil {
		return clientError
	}

	runner, runnerError := NewRunner(client, command.OutOrStdout(), logger)
	if runnerError != nil {
		return runnerError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	report, runError := runner.Run(executionContext, configuration)
	if runError != nil {
		return fmt.Errorf(demoOutputFailedTemplateConstant, runError)
	}

	logger.Info(demoSummaryMessageConstant, zap.Int(logFieldStepsConstant, len(report.Steps)), zap.Bool(logFieldFailedConstant, report.Failed()))
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (Configuration, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagTargets := []struct {
		flagName string
		target   *string
	}{
		{flagName: repositoryFlagNameConstant, target: &configuration.Repository},
		{flagName: releaseFlagNameConstant, target: &configuration.Release},
		{flagName: missingFlagNameConstant, target: &configuration.Missing},
	}
	for _, flagTarget := range flagTargets {
		if !command.Flags().Changed(flagTarget.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(flagTarget.flagName)
		if flagError != nil {
			return Configuration{}, flagError
		}
		*flagTarget.target = flagValue
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
