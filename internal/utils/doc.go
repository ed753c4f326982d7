// Package utils exposes reusable helpers consumed by the CLI and its commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file
// and GHCONNECT_* environment overrides through Viper. LoggerFactory builds zap
// loggers in structured or console encoding. EnvironmentFileLoader applies a
// dotenv file without overwriting variables that are already set.
package utils
