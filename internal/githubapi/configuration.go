package githubapi

import (
	"strings"
	"time"
)

const (
	configurationBaseURLKeyConstant         = "base_url"
	configurationTokenSourceKeyConstant     = "token_source"
	configurationTimeoutKeyConstant         = "timeout"
	configurationMaxRetriesKeyConstant      = "max_retries"
	configurationInitialBackoffKeyConstant  = "initial_backoff"
	configurationEnvironmentFileKeyConstant = "env_file"
	configurationKeySeparatorConstant       = "."
	defaultTokenSourceValueConstant         = "env:GITHUB_TOKEN"
	defaultEnvironmentFileValueConstant     = ".env"
)

// Configuration stores the persisted GitHub API settings.
type Configuration struct {
	BaseURL         string        `mapstructure:"base_url"`
	TokenSource     string        `mapstructure:"token_source"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	EnvironmentFile string        `mapstructure:"env_file"`
}

// DefaultConfiguration supplies baseline values for GitHub API settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		BaseURL:         DefaultBaseURL,
		TokenSource:     defaultTokenSourceValueConstant,
		Timeout:         DefaultAttemptTimeout,
		MaxRetries:      DefaultMaxRetries,
		InitialBackoff:  DefaultInitialBackoff,
		EnvironmentFile: defaultEnvironmentFileValueConstant,
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
		keyPrefix + configurationBaseURLKeyConstant:         defaults.BaseURL,
		keyPrefix + configurationTokenSourceKeyConstant:     defaults.TokenSource,
		keyPrefix + configurationTimeoutKeyConstant:         defaults.Timeout.String(),
		keyPrefix + configurationMaxRetriesKeyConstant:      defaults.MaxRetries,
		keyPrefix + configurationInitialBackoffKeyConstant:  defaults.InitialBackoff.String(),
		keyPrefix + configurationEnvironmentFileKeyConstant: defaults.EnvironmentFile,
	}
}

// Sanitize trims textual values and restores defaults for non-positive limits.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = defaults.BaseURL
	}
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	sanitized.EnvironmentFile = strings.TrimSpace(configuration.EnvironmentFile)
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaults.Timeout
	}
	if sanitized.MaxRetries <= 0 {
		sanitized.MaxRetries = defaults.MaxRetries
	}
	if sanitized.InitialBackoff <= 0 {
		sanitized.InitialBackoff = defaults.InitialBackoff
	}
	return sanitized
}

// ExecutorSettings converts the configuration into executor settings bearing token.
func (configuration Configuration) ExecutorSettings(token string) ExecutorSettings {
	sanitized := configuration.Sanitize()
	return ExecutorSettings{
		BaseURL:        sanitized.BaseURL,
		Token:          token,
		MaxRetries:     sanitized.MaxRetries,
		InitialBackoff: sanitized.InitialBackoff,
		AttemptTimeout: sanitized.Timeout,
	}
}
