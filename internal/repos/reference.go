package repos

import (
	"errors"
	"fmt"
	"strings"
)

const (
	repositorySeparatorConstant                = "/"
	missingRepositoryArgumentMessageConstant   = "repository is required (owner/repository or owner repository)"
	invalidRepositoryReferenceTemplateConstant = "invalid repository reference %q (expected owner/repository)"
	unexpectedArgumentCountTemplateConstant    = "expected at most two arguments, received %d"
)

// ErrRepositoryArgumentMissing indicates the command received no repository.
var ErrRepositoryArgumentMissing = errors.New(missingRepositoryArgumentMessageConstant)

// RepositoryReference identifies a repository by owner and name.
type RepositoryReference struct {
	Owner string
	Name  string
}

// String renders the reference as owner/name.
func (reference RepositoryReference) String() string {
	return reference.Owner + repositorySeparatorConstant + reference.Name
}

// ParseRepositoryReference accepts either a single "owner/repository" argument
// or separate owner and repository arguments.
func ParseRepositoryReference(arguments []string) (RepositoryReference, error) {
	switch len(arguments) {
	case 0:
		return RepositoryReference{}, ErrRepositoryArgumentMissing
	case 1:
		return parseCombinedReference(arguments[0])
	case 2:
		return buildReference(arguments[0], arguments[1], strings.Join(arguments, " "))
	default:
		return RepositoryReference{}, fmt.Errorf(unexpectedArgumentCountTemplateConstant, len(arguments))
	}
}

func parseCombinedReference(argument string) (RepositoryReference, error) {
	trimmedArgument := strings.Trim(strings.TrimSpace(argument), repositorySeparatorConstant)
	components := strings.Split(trimmedArgument, repositorySeparatorConstant)
	if len(components) != 2 {
		return RepositoryReference{}, fmt.Errorf(invalidRepositoryReferenceTemplateConstant, argument)
	}
	return buildReference(components[0], components[1], argument)
}

func buildReference(owner string, name string, original string) (RepositoryReference, error) {
	trimmedOwner := strings.TrimSpace(owner)
	trimmedName := strings.TrimSpace(name)
	if len(trimmedOwner) == 0 || len(trimmedName) == 0 {
		return RepositoryReference{}, fmt.Errorf(invalidRepositoryReferenceTemplateConstant, original)
	}
	return RepositoryReference{Owner: trimmedOwner, Name: trimmedName}, nil
}
