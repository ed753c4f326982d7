package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	repositoryDetailsPathTemplateConstant = "/repos/%s/%s"
	latestReleasePathTemplateConstant     = "/repos/%s/%s/releases/latest"
	ownerFieldNameConstant                = "owner"
	repositoryFieldNameConstant           = "repository"
	requiredValueMessageConstant          = "value required"
)

// Requester is the minimal interface required from RequestExecutor.
type Requester interface {
	Execute(executionContext context.Context, method string, path string) (Payload, error)
}

// Client exposes the read-only GitHub operations built on a Requester.
type Client struct {
	requester Requester
}

// NewClient constructs a Client.
func NewClient(requester Requester) (*Client, error) {
	if requester == nil {
		return nil, ErrRequesterNotConfigured
	}
	return &Client{requester: requester}, nil
}

// GetRepositoryDetails fetches GET /repos/{owner}/{repo} and returns the payload unmodified.
func (client *Client) GetRepositoryDetails(executionContext context.Context, owner string, repository string) (Payload, error) {
	path, pathError := buildRepositoryPath(repositoryDetailsPathTemplateConstant, owner, repository)
	if pathError != nil {
		return nil, pathError
	}
	return client.requester.Execute(executionContext, http.MethodGet, path)
}

// GetLatestRelease fetches GET /repos/{owner}/{repo}/releases/latest and returns the payload unmodified.
func (client *Client) GetLatestRelease(executionContext context.Context, owner string, repository string) (Payload, error) {
	path, pathError := buildRepositoryPath(latestReleasePathTemplateConstant, owner, repository)
	if pathError != nil {
		return nil, pathError
	}
	return client.requester.Execute(executionContext, http.MethodGet, path)
}

func buildRepositoryPath(template string, owner string, repository string) (string, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return "", InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return fmt.Sprintf(template, url.PathEscape(trimmedOwner), url.PathEscape(trimmedRepository)), nil
}
