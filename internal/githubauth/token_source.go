package githubauth

import (
	"errors"
	"fmt"
	"strings"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	githubCLITokenSourceTypeValueConstant      = "gh"
	tokenSourceMissingErrorMessageConstant     = "token source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
)

// ErrTokenSourceMissing indicates a blank token source declaration.
var ErrTokenSourceMissing = errors.New(tokenSourceMissingErrorMessageConstant)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
	TokenSourceTypeGitHubCLI   TokenSourceType = TokenSourceType(githubCLITokenSourceTypeValueConstant)
)

// TokenSource specifies where a credential is read from.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// String renders the source in its declaration form.
func (source TokenSource) String() string {
	return string(source.Type) + tokenSourceSeparatorConstant + source.Reference
}

// ParseTokenSource interprets declarations such as "env:GITHUB_TOKEN" or
// "file:/run/secrets/github". "gh:" asks the GitHub CLI for its stored token,
// optionally for the host named after the colon. A bare name is treated as an
// environment variable.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{}, ErrTokenSourceMissing
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case environmentTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case fileTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeFile, Reference: reference}, nil
	case githubCLITokenSourceTypeValueConstant:
		return TokenSource{Type: TokenSourceTypeGitHubCLI, Reference: reference}, nil
	default:
		return TokenSource{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}
}
