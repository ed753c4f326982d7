package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghconnect/cmd/cli"
	"github.com/temirov/ghconnect/internal/demo"
	"github.com/temirov/ghconnect/internal/execshell"
	"github.com/temirov/ghconnect/internal/githubapi"
	"github.com/temirov/ghconnect/internal/utils"
)

const (
	testConfigurationFileNameConstant     = "config.yaml"
	testEnvironmentFileNameConstant       = "test.env"
	testLogFileNameConstant               = "ghconnect.log"
	testConfigurationTemplateConstant     = "github:\n  base_url: %q\n  token_source: %q\n  env_file: %q\n"
	testTokenVariableConstant             = "GHCONNECT_TEST_TOKEN_VALUE"
	testEnvironmentTokenSourceConstant    = "env:" + testTokenVariableConstant
	testGitHubCLITokenSourceConstant      = "gh:"
	testGitHubCLITokenConstant            = "gh-cli-token"
	testExplicitTokenConstant             = "explicit-token"
	testEnvironmentFileTokenConstant      = "dotenv-token"
	testRepositoryPathConstant            = "/repos/octocat/Hello-World"
	testReleasePathConstant               = "/repos/python/cpython/releases/latest"
	testRepositoryPayloadConstant         = `{"full_name":"octocat/Hello-World","description":"My first repository on GitHub!","stargazers_count":80,"forks_count":9,"language":null,"open_issues_count":0}`
	testReleasePayloadConstant            = `{"tag_name":"v3.13.0","name":"Python 3.13.0","published_at":"2024-10-07T17:00:00Z","author":{"login":"Yhg1s"}}`
	testNotFoundPayloadConstant           = `{"message":"Not Found"}`
	testContentTypeHeaderConstant         = "Content-Type"
	testJSONContentTypeConstant           = "application/json"
	testRetryAfterHeaderConstant          = "Retry-After"
	testAuthorizationHeaderConstant       = "Authorization"
	testBearerTemplateConstant            = "Bearer %s"
	testClientInitializedMessageConstant  = "GitHub client initialized"
	testMissingTokenWarningConstant       = "No GitHub token provided"
	testRepositoryCommandConstant         = "repo"
	testReleaseCommandConstant            = "release"
	testDemoCommandConstant               = "demo"
	testConfigFlagConstant                = "--config"
	testTokenFlagConstant                 = "--token"
	testLogLevelFlagConstant              = "--log-level"
	testOutputFlagConstant                = "--output"
	testRepositoryArgumentConstant        = "octocat/Hello-World"
	testMissingRepositoryArgumentConstant = "octocat/missing"
)

type recordedRequest struct {
	path          string
	authorization string
}

type githubStubServer struct {
	server          *httptest.Server
	mutex           sync.Mutex
	requests        []recordedRequest
	rateLimitBudget int
}

func newGitHubStubServer(testInstance *testing.T, rateLimitBudget int) *githubStubServer {
	testInstance.Helper()
	stub := &githubStubServer{rateLimitBudget: rateLimitBudget}
	stub.server = httptest.NewServer(http.HandlerFunc(stub.handle))
	testInstance.Cleanup(stub.server.Close)
	return stub
}

func (stub *githubStubServer) handle(responseWriter http.ResponseWriter, request *http.Request) {
	stub.mutex.Lock()
	stub.requests = append(stub.requests, recordedRequest{path: request.URL.Path, authorization: request.Header.Get(testAuthorizationHeaderConstant)})
	rateLimited := stub.rateLimitBudget > 0
	if rateLimited {
		stub.rateLimitBudget--
	}
	stub.mutex.Unlock()

	responseWriter.Header().Set(testContentTypeHeaderConstant, testJSONContentTypeConstant)
	if rateLimited {
		responseWriter.Header().Set(testRetryAfterHeaderConstant, "2")
		responseWriter.WriteHeader(http.StatusTooManyRequests)
		return
	}

	switch request.URL.Path {
	case testRepositoryPathConstant:
		_, _ = responseWriter.Write([]byte(testRepositoryPayloadConstant))
	case testReleasePathConstant:
		_, _ = responseWriter.Write([]byte(testReleasePayloadConstant))
	default:
		responseWriter.WriteHeader(http.StatusNotFound)
		_, _ = responseWriter.Write([]byte(testNotFoundPayloadConstant))
	}
}

func (stub *githubStubServer) recordedRequests() []recordedRequest {
	stub.mutex.Lock()
	defer stub.mutex.Unlock()
	return append([]recordedRequest{}, stub.requests...)
}

type recordingSleeper struct {
	durations []time.Duration
}

func (sleeper *recordingSleeper) Sleep(_ context.Context, duration time.Duration) error {
	sleeper.durations = append(sleeper.durations, duration)
	return nil
}

type applicationHarness struct {
	application       *cli.Application
	output            *bytes.Buffer
	sleeper           *recordingSleeper
	configurationPath string
	logPath           string
}

type stubCommandRunner struct {
	commands []execshell.ShellCommand
	result   execshell.ExecutionResult
}

func (runner *stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	return runner.result, nil
}

func newApplicationHarness(testInstance *testing.T, baseURL string, environmentFilePath string) applicationHarness {
	testInstance.Helper()
	return newApplicationHarnessWithTokenSource(testInstance, baseURL, testEnvironmentTokenSourceConstant, environmentFilePath, &stubCommandRunner{})
}

func newApplicationHarnessWithTokenSource(testInstance *testing.T, baseURL string, tokenSource string, environmentFilePath string, commandRunner execshell.CommandRunner) applicationHarness {
	testInstance.Helper()
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigurationTemplateConstant, baseURL, tokenSource, environmentFilePath)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	logPath := filepath.Join(temporaryDirectory, testLogFileNameConstant)
	sleeper := &recordingSleeper{}
	application := cli.NewApplicationWithDependencies(cli.ApplicationDependencies{
		LoggerFactory: utils.NewLoggerFactoryWithOutputPaths(logPath),
		Sleeper:       sleeper,
		CommandRunner: commandRunner,
	})
	outputBuffer := &bytes.Buffer{}
	application.SetOutput(outputBuffer)

	return applicationHarness{
		application:       application,
		output:            outputBuffer,
		sleeper:           sleeper,
		configurationPath: configurationPath,
		logPath:           logPath,
	}
}

func (harness applicationHarness) execute(arguments ...string) error {
	harness.application.SetArguments(append([]string{testConfigFlagConstant, harness.configurationPath}, arguments...))
	return harness.application.Execute()
}

func (harness applicationHarness) logContent(testInstance *testing.T) string {
	testInstance.Helper()
	content, readError := os.ReadFile(harness.logPath)
	require.NoError(testInstance, readError)
	return string(content)
}

func isolateCredentials(testInstance *testing.T) {
	testInstance.Helper()
	for _, variableName := range []string{"GH_TOKEN", "GITHUB_TOKEN", "GITHUB_API_TOKEN", testTokenVariableConstant} {
		testInstance.Setenv(variableName, "")
		require.NoError(testInstance, os.Unsetenv(variableName))
	}
}

func TestApplicationRepositoryCommand(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	harness := newApplicationHarness(testInstance, stub.server.URL, "")

	executionError := harness.execute(testRepositoryCommandConstant, testRepositoryArgumentConstant, testTokenFlagConstant, testExplicitTokenConstant)
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, harness.output.String(), "Repository: octocat/Hello-World\n")
	require.Contains(testInstance, harness.output.String(), "Stars: 80\n")

	requests := stub.recordedRequests()
	require.Len(testInstance, requests, 1)
	require.Equal(testInstance, testRepositoryPathConstant, requests[0].path)
	require.Equal(testInstance, fmt.Sprintf(testBearerTemplateConstant, testExplicitTokenConstant), requests[0].authorization)

	logContent := harness.logContent(testInstance)
	require.Contains(testInstance, logContent, testClientInitializedMessageConstant)
	require.NotContains(testInstance, logContent, testMissingTokenWarningConstant)
}

func TestApplicationReleaseCommandRetriesRateLimit(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 1)
	harness := newApplicationHarness(testInstance, stub.server.URL, "")

	executionError := harness.execute(testReleaseCommandConstant, "python", "cpython", testOutputFlagConstant, "yaml")
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, harness.output.String(), "tag_name: v3.13.0\n")
	require.Len(testInstance, stub.recordedRequests(), 2)
	require.Equal(testInstance, []time.Duration{2 * time.Second}, harness.sleeper.durations)
	require.Contains(testInstance, harness.logContent(testInstance), testMissingTokenWarningConstant)
}

func TestApplicationTokenFromEnvironmentFile(testInstance *testing.T) {
	isolateCredentials(testInstance)
	testInstance.Cleanup(func() {
		_ = os.Unsetenv(testTokenVariableConstant)
	})
	stub := newGitHubStubServer(testInstance, 0)

	environmentFilePath := filepath.Join(testInstance.TempDir(), testEnvironmentFileNameConstant)
	environmentFileContent := fmt.Sprintf("%s=%s\n", testTokenVariableConstant, testEnvironmentFileTokenConstant)
	require.NoError(testInstance, os.WriteFile(environmentFilePath, []byte(environmentFileContent), 0o600))

	harness := newApplicationHarness(testInstance, stub.server.URL, environmentFilePath)
	executionError := harness.execute(testRepositoryCommandConstant, testRepositoryArgumentConstant)
	require.NoError(testInstance, executionError)

	requests := stub.recordedRequests()
	require.Len(testInstance, requests, 1)
	require.Equal(testInstance, fmt.Sprintf(testBearerTemplateConstant, testEnvironmentFileTokenConstant), requests[0].authorization)
}

func TestApplicationTokenFromGitHubCLI(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	commandRunner := &stubCommandRunner{result: execshell.ExecutionResult{StandardOutput: testGitHubCLITokenConstant + "\n"}}
	harness := newApplicationHarnessWithTokenSource(testInstance, stub.server.URL, testGitHubCLITokenSourceConstant, "", commandRunner)

	executionError := harness.execute(testRepositoryCommandConstant, testRepositoryArgumentConstant)
	require.NoError(testInstance, executionError)

	require.Len(testInstance, commandRunner.commands, 1)
	require.Equal(testInstance, "gh auth token", commandRunner.commands[0].String())
	requests := stub.recordedRequests()
	require.Len(testInstance, requests, 1)
	require.Equal(testInstance, fmt.Sprintf(testBearerTemplateConstant, testGitHubCLITokenConstant), requests[0].authorization)
}

func TestApplicationRepositoryNotFound(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	harness := newApplicationHarness(testInstance, stub.server.URL, "")

	executionError := harness.execute(testRepositoryCommandConstant, testMissingRepositoryArgumentConstant)
	require.ErrorIs(testInstance, executionError, githubapi.ErrResourceNotFound)
	require.ErrorContains(testInstance, executionError, "repository lookup failed for octocat/missing")
	require.Len(testInstance, stub.recordedRequests(), 1)
	require.Empty(testInstance, harness.sleeper.durations)
}

func TestApplicationDemoCommand(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	harness := newApplicationHarness(testInstance, stub.server.URL, "")

	executionError := harness.execute(testDemoCommandConstant)
	require.NoError(testInstance, executionError)

	output := harness.output.String()
	require.Contains(testInstance, output, "Repository: octocat/Hello-World\n")
	require.Contains(testInstance, output, "Latest Release: v3.13.0\n")
	require.Contains(testInstance, output, "✓ Correctly caught error: Resource not found: /repos/thisdoesnotexist12345/norepo67890\n")
	require.Len(testInstance, stub.recordedRequests(), 3)
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	harness := newApplicationHarness(testInstance, stub.server.URL, "")

	executionError := harness.execute(testLogLevelFlagConstant, "verbose", testRepositoryCommandConstant, testRepositoryArgumentConstant)
	require.ErrorContains(testInstance, executionError, "unable to create logger")
	require.Empty(testInstance, stub.recordedRequests())
}

func TestApplicationEnvironmentOverridesConfiguration(testInstance *testing.T) {
	isolateCredentials(testInstance)
	stub := newGitHubStubServer(testInstance, 0)
	harness := newApplicationHarness(testInstance, "http://127.0.0.1:1", "")
	testInstance.Setenv("GHCONNECT_GITHUB_BASE_URL", stub.server.URL)

	executionError := harness.execute(testRepositoryCommandConstant, testRepositoryArgumentConstant)
	require.NoError(testInstance, executionError)
	require.Len(testInstance, stub.recordedRequests(), 1)
}

func TestEmbeddedDefaultConfigurationMatchesDefaults(testInstance *testing.T) {
	embeddedContent, embeddedType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, embeddedContent)

	loader := utils.NewConfigurationLoader("ghconnect-defaults-absent", embeddedType, "GHCONNECT_EMBEDDED_TEST", []string{testInstance.TempDir()})
	loader.SetEmbeddedConfiguration(embeddedContent, embeddedType)

	var configuration struct {
		Common struct {
			LogLevel  string `mapstructure:"log_level"`
			LogFormat string `mapstructure:"log_format"`
		} `mapstructure:"common"`
		GitHub githubapi.Configuration `mapstructure:"github"`
		Demo   demo.Configuration      `mapstructure:"demo"`
	}
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, string(utils.LogLevelInfo), configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), configuration.Common.LogFormat)
	require.Equal(testInstance, githubapi.DefaultConfiguration(), configuration.GitHub)
	require.Equal(testInstance, demo.DefaultConfiguration(), configuration.Demo)
}
