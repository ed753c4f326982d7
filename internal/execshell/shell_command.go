package execshell

import (
	"context"
	"strings"
)

const (
	commandArgumentsJoinSeparatorConstant = " "
)

// CommandName identifies an executable.
type CommandName string

// CommandGitHub is the GitHub CLI executable.
const CommandGitHub CommandName = CommandName("gh")

// CommandDetails carries the arguments and extra environment for one invocation.
type CommandDetails struct {
	Arguments            []string
	EnvironmentVariables map[string]string
}

// ShellCommand pairs an executable with its details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line without environment variables.
func (command ShellCommand) String() string {
	components := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(components, commandArgumentsJoinSeparatorConstant)
}

// ExecutionResult captures the process output.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner starts processes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
