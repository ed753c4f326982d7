package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "text",
			choices:        []string{"text", "json", "yaml"},
			description:    "Output format.",
			expectedOutput: "`<TEXT|json|yaml>` Output format.",
		},
		{
			name:           "default_second_choice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log encoding.",
			expectedOutput: "`<structured|CONSOLE>` Log encoding.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "json",
			choices:        []string{"json", "yaml"},
			expectedOutput: "`<JSON|yaml>`",
		},
		{
			name:           "duplicates_and_whitespace",
			defaultChoice:  "yaml",
			choices:        []string{" yaml ", "YAML", "json", ""},
			description:    "Pick one.",
			expectedOutput: "`<YAML|json>` Pick one.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestChoiceFlagNormalize(testInstance *testing.T) {
	choiceFlag := ChoiceFlag{Name: "output", DefaultChoice: "text", Choices: []string{"text", "json", "yaml"}}

	testCases := []struct {
		name          string
		value         string
		expectedValue string
		expectError   bool
	}{
		{name: "exact", value: "json", expectedValue: "json"},
		{name: "mixed_case", value: " YAML ", expectedValue: "yaml"},
		{name: "blank_selects_default", value: "", expectedValue: "text"},
		{name: "unsupported", value: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			normalizedValue, normalizeError := choiceFlag.Normalize(testCase.value)
			if testCase.expectError {
				require.EqualError(testInstance, normalizeError, `unsupported output "xml" (expected one of text|json|yaml)`)
				return
			}
			require.NoError(testInstance, normalizeError)
			require.Equal(testInstance, testCase.expectedValue, normalizedValue)
		})
	}
}
