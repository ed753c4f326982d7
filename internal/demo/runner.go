package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/ghconnect/internal/githubapi"
	"github.com/temirov/ghconnect/internal/repos"
)

const (
	repositoryStepHeaderTemplateConstant = "\n[1] Fetching repository details for '%s'...\n"
	releaseStepHeaderTemplateConstant    = "\n[2] Fetching latest release for '%s'...\n"
	missingStepHeaderTemplateConstant    = "\n[3] Testing error handling with non-existent repo '%s'...\n"
	errorLineTemplateConstant            = "Error: %s\n"
	apiErrorLineTemplateConstant         = "API Error: %s\n"
	expectedErrorLineTemplateConstant    = "✓ Correctly caught error: %s\n"
	unexpectedErrorLineTemplateConstant  = "Unexpected error: %s\n"
	unexpectedSuccessMessageConstant     = "repository exists but a not-found response was expected"
	stepCompletedMessageConstant         = "Demo step completed"
	logFieldStepConstant                 = "step"
	logFieldTargetConstant               = "target"
	logFieldStatusConstant               = "status"
	clientNotConfiguredMessageConstant   = "demo runner requires a repository client"
	repositoryStepNameConstant           = "repository"
	releaseStepNameConstant              = "release"
	missingStepNameConstant              = "missing"
)

// ErrClientNotConfigured indicates the runner was constructed without a client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// StepStatus classifies the result of one demo step.
type StepStatus string

// Step statuses.
const (
	StepStatusSucceeded       StepStatus = "succeeded"
	StepStatusFailed          StepStatus = "failed"
	StepStatusExpectedFailure StepStatus = "expected_failure"
	StepStatusUnexpected      StepStatus = "unexpected"
)

// StepResult records what one step observed.
type StepResult struct {
	Name    string
	Target  string
	Status  StepStatus
	Message string
}

// Report lists the step results in execution order.
type Report struct {
	Steps []StepResult
}

// Runner executes the demo steps against a repository client.
type Runner struct {
	client repos.RepositoryClient
	writer io.Writer
	logger *zap.Logger
}

// NewRunner constructs a Runner writing human readable progress to writer.
func NewRunner(client repos.RepositoryClient, writer io.Writer, logger *zap.Logger) (*Runner, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if writer == nil {
		writer = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, writer: writer, logger: logger}, nil
}

// Run performs the three steps. Only output failures are returned.
func (runner *Runner) Run(executionContext context.Context, configuration Configuration) (Report, error) {
	targets := configuration.Sanitize()
	report := Report{}
	steps := []func(context.Context, string) (StepResult, error){
		runner.runRepositoryStep,
		runner.runReleaseStep,
		runner.runMissingStep,
	}
	stepTargets := []string{targets.Repository, targets.Release, targets.Missing}

	for stepIndex, step := range steps {
		result, outputError := step(executionContext, stepTargets[stepIndex])
		if outputError != nil {
			return report, outputError
		}
		runner.logger.Info(
			stepCompletedMessageConstant,
			zap.String(logFieldStepConstant, result.Name),
			zap.String(logFieldTargetConstant, result.Target),
			zap.String(logFieldStatusConstant, string(result.Status)),
		)
		report.Steps = append(report.Steps, result)
	}

	return report, nil
}

func (runner *Runner) runRepositoryStep(executionContext context.Context, target string) (StepResult, error) {
	result := StepResult{Name: repositoryStepNameConstant, Target: target}
	if _, writeError := fmt.Fprintf(runner.writer, repositoryStepHeaderTemplateConstant, target); writeError != nil {
		return result, writeError
	}

	payload, lookupError := runner.lookup(executionContext, target, runner.client.GetRepositoryDetails)
	if lookupError == nil {
		summary, decodeError := repos.DecodeRepositorySummary(payload)
		lookupError = decodeError
		if decodeError == nil {
			result.Status = StepStatusSucceeded
			return result, repos.WriteRepositorySummary(runner.writer, summary)
		}
	}

	template := apiErrorLineTemplateConstant
	if githubapi.IsNotFound(lookupError) || githubapi.IsAuthentication(lookupError) {
		template = errorLineTemplateConstant
	}
	return runner.reportFailure(result, StepStatusFailed, template, lookupError.Error())
}

func (runner *Runner) runReleaseStep(executionContext context.Context, target string) (StepResult, error) {
	result := StepResult{Name: releaseStepNameConstant, Target: target}
	if _, writeError := fmt.Fprintf(runner.writer, releaseStepHeaderTemplateConstant, target); writeError != nil {
		return result, writeError
	}

	payload, lookupError := runner.lookup(executionContext, target, runner.client.GetLatestRelease)
	if lookupError == nil {
		summary, decodeError := repos.DecodeReleaseSummary(payload)
		lookupError = decodeError
		if decodeError == nil {
			result.Status = StepStatusSucceeded
			return result, repos.WriteReleaseSummary(runner.writer, summary)
		}
	}

	template := apiErrorLineTemplateConstant
	if githubapi.IsNotFound(lookupError) {
		template = errorLineTemplateConstant
	}
	return runner.reportFailure(result, StepStatusFailed, template, lookupError.Error())
}

func (runner *Runner) runMissingStep(executionContext context.Context, target string) (StepResult, error) {
	result := StepResult{Name: missingStepNameConstant, Target: target}
	if _, writeError := fmt.Fprintf(runner.writer, missingStepHeaderTemplateConstant, target); writeError != nil {
		return result, writeError
	}

	_, lookupError := runner.lookup(executionContext, target, runner.client.GetRepositoryDetails)
	switch {
	case lookupError == nil:
		return runner.reportFailure(result, StepStatusUnexpected, unexpectedErrorLineTemplateConstant, unexpectedSuccessMessageConstant)
	case githubapi.IsNotFound(lookupError):
		return runner.reportFailure(result, StepStatusExpectedFailure, expectedErrorLineTemplateConstant, lookupError.Error())
	default:
		return runner.reportFailure(result, StepStatusUnexpected, unexpectedErrorLineTemplateConstant, lookupError.Error())
	}
}

type lookupOperation func(executionContext context.Context, owner string, repository string) (githubapi.Payload, error)

func (runner *Runner) lookup(executionContext context.Context, target string, operation lookupOperation) (githubapi.Payload, error) {
	reference, referenceError := repos.ParseRepositoryReference([]string{target})
	if referenceError != nil {
		return nil, referenceError
	}
	return operation(executionContext, reference.Owner, reference.Name)
}

func (runner *Runner) reportFailure(result StepResult, status StepStatus, template string, message string) (StepResult, error) {
	result.Status = status
	result.Message = message
	_, writeError := fmt.Fprintf(runner.writer, template, message)
	return result, writeError
}

// Failed reports whether any step ended outside its expected outcome.
func (report Report) Failed() bool {
	for _, step := range report.Steps {
		if step.Status == StepStatusFailed || step.Status == StepStatusUnexpected {
			return true
		}
	}
	return false
}
