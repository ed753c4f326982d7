package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghconnect/internal/execshell"
)

// Environment variable names consulted when no explicit credential is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// Credential origins reported alongside a resolved token.
const (
	CredentialOriginNone        = "none"
	CredentialOriginExplicit    = "explicit"
	CredentialOriginTokenSource = "token_source"
	CredentialOriginEnvironment = "environment"
)

const (
	environmentTokenMissingTemplateConstant = "environment variable %s is not set"
	fileReadErrorTemplateConstant           = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant     = "token file %s is empty"
	tokenSourceUnusableMessageConstant      = "Configured token source unusable, falling back to environment"
	credentialResolvedMessageConstant       = "GitHub credential resolved"
	logFieldTokenSourceConstant             = "token_source"
	logFieldOriginConstant                  = "origin"
	logFieldVariableConstant                = "variable"
	githubCLINotConfiguredMessageConstant   = "github cli token source not configured"
	githubCLITokenEmptyMessageConstant      = "github cli returned an empty token"
	githubCLITokenFailedTemplateConstant    = "unable to read github cli token: %w"
	githubCLIAuthSubcommandConstant         = "auth"
	githubCLITokenSubcommandConstant        = "token"
	githubCLIHostnameFlagConstant           = "--hostname"
	githubCLITimeoutConstant                = 10 * time.Second
)

// ErrGitHubCLINotConfigured indicates a gh: token source without a GitHub CLI executor.
var ErrGitHubCLINotConfigured = errors.New(githubCLINotConfiguredMessageConstant)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// GitHubCLIExecutor runs the gh executable.
type GitHubCLIExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Credential is a resolved token and where it came from. Token is empty when
// no credential was found.
type Credential struct {
	Token  string
	Origin string
}

// Present reports whether a token was resolved.
func (credential Credential) Present() bool {
	return len(credential.Token) > 0
}

// CredentialResolver locates the GitHub token for a command invocation.
type CredentialResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	githubCLIExecutor GitHubCLIExecutor
	logger            *zap.Logger
}

// NewCredentialResolver creates a resolver with optional dependency overrides.
func NewCredentialResolver(environmentLookup EnvironmentLookup, fileReader FileReader, logger *zap.Logger) *CredentialResolver {
	resolvedEnvironmentLookup := environmentLookup
	if resolvedEnvironmentLookup == nil {
		resolvedEnvironmentLookup = os.LookupEnv
	}

	resolvedFileReader := fileReader
	if resolvedFileReader == nil {
		resolvedFileReader = os.ReadFile
	}

	resolvedLogger := logger
	if resolvedLogger == nil {
		resolvedLogger = zap.NewNop()
	}

	return &CredentialResolver{
		environmentLookup: resolvedEnvironmentLookup,
		fileReader:        resolvedFileReader,
		logger:            resolvedLogger,
	}
}

// UseGitHubCLI enables gh: token sources backed by executor.
func (resolver *CredentialResolver) UseGitHubCLI(executor GitHubCLIExecutor) {
	resolver.githubCLIExecutor = executor
}

// ResolveCredential applies the explicit value, the token source declaration
// and the preferred environment variables in that order.
func (resolver *CredentialResolver) ResolveCredential(explicitToken string, sourceValue string) Credential {
	trimmedExplicitToken := strings.TrimSpace(explicitToken)
	if len(trimmedExplicitToken) > 0 {
		return resolver.resolved(Credential{Token: trimmedExplicitToken, Origin: CredentialOriginExplicit})
	}

	if len(strings.TrimSpace(sourceValue)) > 0 {
		token, sourceError := resolver.readTokenSource(sourceValue)
		if sourceError == nil {
			return resolver.resolved(Credential{Token: token, Origin: CredentialOriginTokenSource})
		}
		resolver.logger.Debug(tokenSourceUnusableMessageConstant, zap.String(logFieldTokenSourceConstant, sourceValue), zap.Error(sourceError))
	}

	if token, variableName, found := resolver.lookupPreferredToken(); found {
		resolver.logger.Debug(credentialResolvedMessageConstant, zap.String(logFieldOriginConstant, CredentialOriginEnvironment), zap.String(logFieldVariableConstant, variableName))
		return Credential{Token: token, Origin: CredentialOriginEnvironment}
	}

	return Credential{Origin: CredentialOriginNone}
}

// ResolveToken reads a parsed token source.
func (resolver *CredentialResolver) ResolveToken(source TokenSource) (string, error) {
	switch source.Type {
	case TokenSourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyErrorTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeGitHubCLI:
		return resolver.readGitHubCLIToken(source.Reference)
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

func (resolver *CredentialResolver) readTokenSource(sourceValue string) (string, error) {
	source, parseError := ParseTokenSource(sourceValue)
	if parseError != nil {
		return "", parseError
	}
	return resolver.ResolveToken(source)
}

func (resolver *CredentialResolver) readGitHubCLIToken(hostname string) (string, error) {
	if resolver.githubCLIExecutor == nil {
		return "", ErrGitHubCLINotConfigured
	}

	arguments := []string{githubCLIAuthSubcommandConstant, githubCLITokenSubcommandConstant}
	if len(hostname) > 0 {
		arguments = append(arguments, githubCLIHostnameFlagConstant, hostname)
	}

	executionContext, cancel := context.WithTimeout(context.Background(), githubCLITimeoutConstant)
	defer cancel()

	result, executionError := resolver.githubCLIExecutor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: arguments})
	if executionError != nil {
		return "", fmt.Errorf(githubCLITokenFailedTemplateConstant, executionError)
	}
	token := strings.TrimSpace(result.StandardOutput)
	if len(token) == 0 {
		return "", errors.New(githubCLITokenEmptyMessageConstant)
	}
	return token, nil
}

func (resolver *CredentialResolver) lookupPreferredToken() (string, string, bool) {
	for _, variableName := range tokenPreference {
		value, found := resolver.environmentLookup(variableName)
		if !found {
			continue
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			return trimmedValue, variableName, true
		}
	}
	return "", "", false
}

func (resolver *CredentialResolver) resolved(credential Credential) Credential {
	resolver.logger.Debug(credentialResolvedMessageConstant, zap.String(logFieldOriginConstant, credential.Origin))
	return credential
}
