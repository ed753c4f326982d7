// Package cli builds the ghconnect command-line interface. The root command
// loads the dotenv file, the layered configuration and the zap logger before
// any subcommand runs, and hands subcommands a factory for GitHub clients.
package cli
