package demo

import (
	"strings"
)

const (
	defaultRepositoryTargetConstant    = "octocat/Hello-World"
	defaultReleaseTargetConstant       = "python/cpython"
	defaultMissingTargetConstant       = "thisdoesnotexist12345/norepo67890"
	configurationKeySeparatorConstant  = "."
	repositoryConfigurationKeyConstant = "repository"
	releaseConfigurationKeyConstant    = "release"
	missingConfigurationKeyConstant    = "missing"
)

// Configuration names the repositories visited by the demo.
type Configuration struct {
	Repository string `mapstructure:"repository"`
	Release    string `mapstructure:"release"`
	Missing    string `mapstructure:"missing"`
}

// DefaultConfiguration returns the stock demo targets.
func DefaultConfiguration() Configuration {
	return Configuration{
		Repository: defaultRepositoryTargetConstant,
		Release:    defaultReleaseTargetConstant,
		Missing:    defaultMissingTargetConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	keyPrefix := strings.TrimSpace(prefix)
	if len(keyPrefix) > 0 {
		keyPrefix += configurationKeySeparatorConstant
	}
	return map[string]any{
		keyPrefix + repositoryConfigurationKeyConstant: defaults.Repository,
		keyPrefix + releaseConfigurationKeyConstant:    defaults.Release,
		keyPrefix + missingConfigurationKeyConstant:    defaults.Missing,
	}
}

// Sanitize trims targets and restores defaults for blank entries.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	return Configuration{
		Repository: valueOrDefault(configuration.Repository, defaults.Repository),
		Release:    valueOrDefault(configuration.Release, defaults.Release),
		Missing:    valueOrDefault(configuration.Missing, defaults.Missing),
	}
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
