package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix        = "<"
	choicePlaceholderSuffix        = ">"
	choiceSeparatorLiteral         = "|"
	choiceUsageEmptyTemplate       = "`%s`"
	choiceUsageFullTemplate        = "`%s` %s"
	unsupportedChoiceErrorTemplate = "unsupported %s %q (expected one of %s)"
)

// ChoiceFlag describes an enumerated string flag.
type ChoiceFlag struct {
	Name          string
	DefaultChoice string
	Choices       []string
	Description   string
}

// Usage renders the flag usage with the default option capitalized.
func (choiceFlag ChoiceFlag) Usage() string {
	return FormatChoiceUsage(choiceFlag.DefaultChoice, choiceFlag.Choices, choiceFlag.Description)
}

// Normalize lowercases value and verifies it is one of the declared choices.
// A blank value selects the default.
func (choiceFlag ChoiceFlag) Normalize(value string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 {
		normalizedValue = strings.ToLower(strings.TrimSpace(choiceFlag.DefaultChoice))
	}

	uniqueChoices := uniqueLowercaseChoices(choiceFlag.Choices)
	for _, choice := range uniqueChoices {
		if choice == normalizedValue {
			return normalizedValue, nil
		}
	}

	return "", fmt.Errorf(unsupportedChoiceErrorTemplate, choiceFlag.Name, value, strings.Join(uniqueChoices, choiceSeparatorLiteral))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayedChoices := uniqueLowercaseChoices(choices)
	for choiceIndex, choice := range displayedChoices {
		if choice == normalizedDefault {
			displayedChoices[choiceIndex] = strings.ToUpper(choice)
		}
	}

	placeholder := choicePlaceholderPrefix + strings.Join(displayedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func uniqueLowercaseChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		unique = append(unique, normalizedChoice)
	}
	return unique
}
