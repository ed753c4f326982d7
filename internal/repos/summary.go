package repos

import (
	"fmt"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"

	"github.com/temirov/ghconnect/internal/githubapi"
)

const (
	summaryDecodingErrorTemplateConstant = "unable to decode %s summary: %w"
	repositorySummaryKindConstant        = "repository"
	releaseSummaryKindConstant           = "release"
)

// RepositorySummary holds the repository fields shown in text output.
type RepositorySummary struct {
	FullName        string `mapstructure:"full_name"`
	Description     string `mapstructure:"description"`
	StargazersCount int    `mapstructure:"stargazers_count"`
	ForksCount      int    `mapstructure:"forks_count"`
	Language        string `mapstructure:"language"`
	OpenIssuesCount int    `mapstructure:"open_issues_count"`
}

// ReleaseSummary holds the release fields shown in text output.
type ReleaseSummary struct {
	TagName     string        `mapstructure:"tag_name"`
	Name        string        `mapstructure:"name"`
	PublishedAt time.Time     `mapstructure:"published_at"`
	Author      ReleaseAuthor `mapstructure:"author"`
}

// ReleaseAuthor identifies the account that published a release.
type ReleaseAuthor struct {
	Login string `mapstructure:"login"`
}

// DecodeRepositorySummary extracts a RepositorySummary from a repository payload.
func DecodeRepositorySummary(payload githubapi.Payload) (RepositorySummary, error) {
	summary := RepositorySummary{}
	if decodeError := decodePayload(payload, &summary); decodeError != nil {
		return RepositorySummary{}, fmt.Errorf(summaryDecodingErrorTemplateConstant, repositorySummaryKindConstant, decodeError)
	}
	return summary, nil
}

// DecodeReleaseSummary extracts a ReleaseSummary from a release payload.
func DecodeReleaseSummary(payload githubapi.Payload) (ReleaseSummary, error) {
	summary := ReleaseSummary{}
	if decodeError := decodePayload(payload, &summary); decodeError != nil {
		return ReleaseSummary{}, fmt.Errorf(summaryDecodingErrorTemplateConstant, releaseSummaryKindConstant, decodeError)
	}
	return summary, nil
}

func decodePayload(payload githubapi.Payload, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     target,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if decoderError != nil {
		return decoderError
	}
	return decoder.Decode(map[string]any(payload))
}
