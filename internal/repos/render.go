package repos

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghconnect/internal/githubapi"
	flagutils "github.com/temirov/ghconnect/internal/utils/flags"
)

// Supported output formats.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

const (
	outputFlagNameConstant                  = "output"
	outputFlagShorthandConstant             = "o"
	outputFlagDescriptionConstant           = "Output format."
	jsonIndentConstant                      = "  "
	yamlIndentConstant                      = 2
	missingValuePlaceholderConstant         = "-"
	repositoryLineTemplateConstant          = "Repository: %s\n"
	descriptionLineTemplateConstant         = "Description: %s\n"
	starsLineTemplateConstant               = "Stars: %d\n"
	forksLineTemplateConstant               = "Forks: %d\n"
	languageLineTemplateConstant            = "Language: %s\n"
	openIssuesLineTemplateConstant          = "Open Issues: %d\n"
	latestReleaseLineTemplateConstant       = "Latest Release: %s\n"
	releaseNameLineTemplateConstant         = "Name: %s\n"
	publishedLineTemplateConstant           = "Published: %s\n"
	authorLineTemplateConstant              = "Author: %s\n"
	unsupportedOutputFormatTemplateConstant = "unsupported output format %q"
)

// OutputFormatFlag declares the --output flag shared by the lookup commands.
var OutputFormatFlag = flagutils.ChoiceFlag{
	Name:          outputFlagNameConstant,
	DefaultChoice: OutputFormatText,
	Choices:       []string{OutputFormatText, OutputFormatJSON, OutputFormatYAML},
	Description:   outputFlagDescriptionConstant,
}

// WriteRepositorySummary prints the repository summary lines.
func WriteRepositorySummary(writer io.Writer, summary RepositorySummary) error {
	_, writeError := fmt.Fprintf(writer,
		repositoryLineTemplateConstant+descriptionLineTemplateConstant+starsLineTemplateConstant+
			forksLineTemplateConstant+languageLineTemplateConstant+openIssuesLineTemplateConstant,
		displayValue(summary.FullName),
		displayValue(summary.Description),
		summary.StargazersCount,
		summary.ForksCount,
		displayValue(summary.Language),
		summary.OpenIssuesCount,
	)
	return writeError
}

// WriteReleaseSummary prints the release summary lines.
func WriteReleaseSummary(writer io.Writer, summary ReleaseSummary) error {
	publishedAt := missingValuePlaceholderConstant
	if !summary.PublishedAt.IsZero() {
		publishedAt = summary.PublishedAt.UTC().Format(time.RFC3339)
	}
	_, writeError := fmt.Fprintf(writer,
		latestReleaseLineTemplateConstant+releaseNameLineTemplateConstant+publishedLineTemplateConstant+authorLineTemplateConstant,
		displayValue(summary.TagName),
		displayValue(summary.Name),
		publishedAt,
		displayValue(summary.Author.Login),
	)
	return writeError
}

// RenderRepository writes a repository payload in the requested format.
func RenderRepository(writer io.Writer, outputFormat string, payload githubapi.Payload) error {
	if outputFormat != OutputFormatText {
		return renderPayload(writer, outputFormat, payload)
	}
	summary, decodeError := DecodeRepositorySummary(payload)
	if decodeError != nil {
		return decodeError
	}
	return WriteRepositorySummary(writer, summary)
}

// RenderRelease writes a release payload in the requested format.
func RenderRelease(writer io.Writer, outputFormat string, payload githubapi.Payload) error {
	if outputFormat != OutputFormatText {
		return renderPayload(writer, outputFormat, payload)
	}
	summary, decodeError := DecodeReleaseSummary(payload)
	if decodeError != nil {
		return decodeError
	}
	return WriteReleaseSummary(writer, summary)
}

func renderPayload(writer io.Writer, outputFormat string, payload githubapi.Payload) error {
	switch outputFormat {
	case OutputFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(payload)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(map[string]any(payload)); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return fmt.Errorf(unsupportedOutputFormatTemplateConstant, outputFormat)
	}
}

func displayValue(value string) string {
	if len(value) == 0 {
		return missingValuePlaceholderConstant
	}
	return value
}
