package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	environmentFilePathContextKeyConstant   = commandContextKey("environmentFilePath")
)

type commandContextKey string

// CommandContextAccessor manages values the root command shares with subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withStringValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath returns the configuration file recorded in the context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithEnvironmentFilePath records the dotenv file that was applied.
func (accessor CommandContextAccessor) WithEnvironmentFilePath(parentContext context.Context, environmentFilePath string) context.Context {
	return withStringValue(parentContext, environmentFilePathContextKeyConstant, environmentFilePath)
}

// EnvironmentFilePath returns the dotenv file recorded in the context.
func (accessor CommandContextAccessor) EnvironmentFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, environmentFilePathContextKeyConstant)
}

func withStringValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
