package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied when ExecutorSettings leaves a value unset.
const (
	DefaultBaseURL        = "https://api.github.com"
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
	DefaultAttemptTimeout = 10 * time.Second
)

const (
	acceptHeaderNameConstant                 = "Accept"
	acceptHeaderValueConstant                = "application/vnd.github+json"
	apiVersionHeaderNameConstant             = "X-GitHub-Api-Version"
	apiVersionHeaderValueConstant            = "2022-11-28"
	authorizationHeaderNameConstant          = "Authorization"
	authorizationHeaderTemplateConstant      = "Bearer %s"
	userAgentHeaderNameConstant              = "User-Agent"
	userAgentHeaderValueConstant             = "ghconnect"
	discardedBodyLimitConstant               = 4096
	methodFieldNameConstant                  = "method"
	pathFieldNameConstant                    = "path"
	invalidBaseURLTemplateConstant           = "invalid base URL %q: %w"
	unsupportedBaseURLSchemeTemplateConstant = "unsupported base URL scheme %q"
	requestMethodRequiredMessageConstant     = "request method is required"
	requestPathInvalidTemplateConstant       = "request path %q must start with /"
	missingTokenWarningMessageConstant       = "No GitHub token provided. Rate limits will be severely restricted."
	executorInitializedMessageConstant       = "GitHub client initialized"
	requestStartMessageConstant              = "Making request"
	requestSucceededMessageConstant          = "Request successful"
	resourceNotFoundLogMessageConstant       = "Resource not found"
	authenticationFailedLogMessageConstant   = "Authentication failed"
	rateLimitRetryMessageConstant            = "Rate limit hit, retrying"
	rateLimitExhaustedMessageConstant        = "Rate limit exceeded and max retries reached"
	networkRetryMessageConstant              = "Network error, retrying"
	networkExhaustedMessageConstant          = "Network error after max attempts"
	requestFailedLogMessageConstant          = "Request failed"
	backoffInterruptedMessageConstant        = "Backoff interrupted"
	retriesExhaustedLogMessageConstant       = "Max retries exceeded"
	logFieldCallIdentifierConstant           = "call_id"
	logFieldMethodConstant                   = "method"
	logFieldURLConstant                      = "url"
	logFieldPathConstant                     = "path"
	logFieldAttemptConstant                  = "attempt"
	logFieldMaxAttemptsConstant              = "max_attempts"
	logFieldStatusCodeConstant               = "status_code"
	logFieldBackoffConstant                  = "backoff"
	logFieldBaseURLConstant                  = "base_url"
	logFieldAuthenticatedConstant            = "authenticated"
)

// HTTPClient is the transport used for every attempt.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ExecutorSettings configures a RequestExecutor.
type ExecutorSettings struct {
	BaseURL        string
	Token          string
	MaxRetries     int
	InitialBackoff time.Duration
	AttemptTimeout time.Duration
}

// ExecutorDependencies supplies optional collaborators. Nil values fall back
// to http.DefaultClient, a timer sleeper, a no-op logger and random UUIDs.
type ExecutorDependencies struct {
	HTTPClient              HTTPClient
	Sleeper                 Sleeper
	Logger                  *zap.Logger
	CallIdentifierGenerator func() string
}

// RequestExecutor runs one logical GitHub API call with bounded retries. It
// holds no mutable state, so concurrent calls are safe.
type RequestExecutor struct {
	baseURL                 string
	token                   string
	maxRetries              int
	attemptTimeout          time.Duration
	backoffPolicy           BackoffPolicy
	httpClient              HTTPClient
	sleeper                 Sleeper
	logger                  *zap.Logger
	callIdentifierGenerator func() string
}

// NewRequestExecutor validates settings and wires collaborators.
func NewRequestExecutor(settings ExecutorSettings, dependencies ExecutorDependencies) (*RequestExecutor, error) {
	baseURL, baseURLError := normalizeBaseURL(settings.BaseURL)
	if baseURLError != nil {
		return nil, baseURLError
	}

	maxRetries := settings.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	initialBackoff := settings.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = DefaultInitialBackoff
	}

	attemptTimeout := settings.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}

	httpClient := dependencies.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = NewTimerSleeper()
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	callIdentifierGenerator := dependencies.CallIdentifierGenerator
	if callIdentifierGenerator == nil {
		callIdentifierGenerator = uuid.NewString
	}

	token := strings.TrimSpace(settings.Token)
	if len(token) == 0 {
		logger.Warn(missingTokenWarningMessageConstant)
	}

	logger.Info(
		executorInitializedMessageConstant,
		zap.String(logFieldBaseURLConstant, baseURL),
		zap.Bool(logFieldAuthenticatedConstant, len(token) > 0),
	)

	return &RequestExecutor{
		baseURL:                 baseURL,
		token:                   token,
		maxRetries:              maxRetries,
		attemptTimeout:          attemptTimeout,
		backoffPolicy:           BackoffPolicy{InitialBackoff: initialBackoff},
		httpClient:              httpClient,
		sleeper:                 sleeper,
		logger:                  logger,
		callIdentifierGenerator: callIdentifierGenerator,
	}, nil
}

// HasCredential reports whether requests carry an Authorization header.
func (executor *RequestExecutor) HasCredential() bool {
	return len(executor.token) > 0
}

// MaxAttempts reports the attempt budget of one logical call.
func (executor *RequestExecutor) MaxAttempts() int {
	return executor.maxRetries
}

// Execute issues method against baseURL+path and returns the decoded JSON
// object. Failures are always *APIError values.
func (executor *RequestExecutor) Execute(executionContext context.Context, method string, path string) (Payload, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	normalizedMethod := strings.ToUpper(strings.TrimSpace(method))
	if validationError := validateRequestTarget(normalizedMethod, path); validationError != nil {
		return nil, newRequestFailedError(0, validationError)
	}

	targetURL := executor.baseURL + path
	callLogger := executor.logger.With(
		zap.String(logFieldCallIdentifierConstant, executor.callIdentifierGenerator()),
		zap.String(logFieldMethodConstant, normalizedMethod),
		zap.String(logFieldURLConstant, targetURL),
	)
	callLogger.Info(requestStartMessageConstant)

	for attemptIndex := 0; attemptIndex < executor.maxRetries; attemptIndex++ {
		outcome := executor.attempt(executionContext, normalizedMethod, targetURL, attemptIndex)
		finalAttempt := attemptIndex >= executor.maxRetries-1
		attemptLogger := callLogger.With(
			zap.Int(logFieldAttemptConstant, attemptIndex+1),
			zap.Int(logFieldMaxAttemptsConstant, executor.maxRetries),
		)

		switch outcome.Kind {
		case OutcomeSuccess:
			attemptLogger.Info(requestSucceededMessageConstant, zap.Int(logFieldStatusCodeConstant, outcome.StatusCode))
			return outcome.Payload, nil
		case OutcomeNotFound:
			attemptLogger.Error(resourceNotFoundLogMessageConstant, zap.String(logFieldPathConstant, path))
			return nil, newResourceNotFoundError(path)
		case OutcomeUnauthorized:
			attemptLogger.Error(authenticationFailedLogMessageConstant)
			return nil, newAuthenticationError()
		case OutcomeRateLimited:
			if finalAttempt {
				attemptLogger.Error(rateLimitExhaustedMessageConstant, zap.Int(logFieldStatusCodeConstant, outcome.StatusCode))
				return nil, newRateLimitExceededError(outcome.RetryAfter)
			}
			attemptLogger.Warn(
				rateLimitRetryMessageConstant,
				zap.Int(logFieldStatusCodeConstant, outcome.StatusCode),
				zap.Duration(logFieldBackoffConstant, outcome.RetryAfter),
			)
			if sleepError := executor.sleeper.Sleep(executionContext, outcome.RetryAfter); sleepError != nil {
				attemptLogger.Error(backoffInterruptedMessageConstant, zap.Error(sleepError))
				return nil, newRequestFailedError(0, sleepError)
			}
		case OutcomeTransientNetworkFailure:
			if finalAttempt {
				attemptLogger.Error(networkExhaustedMessageConstant, zap.Error(outcome.Cause))
				return nil, newNetworkError(outcome.Cause)
			}
			backoff := executor.backoffPolicy.Exponential(attemptIndex)
			attemptLogger.Warn(networkRetryMessageConstant, zap.Error(outcome.Cause), zap.Duration(logFieldBackoffConstant, backoff))
			if sleepError := executor.sleeper.Sleep(executionContext, backoff); sleepError != nil {
				attemptLogger.Error(backoffInterruptedMessageConstant, zap.Error(sleepError))
				return nil, newRequestFailedError(0, sleepError)
			}
		default:
			attemptLogger.Error(requestFailedLogMessageConstant, zap.Int(logFieldStatusCodeConstant, outcome.StatusCode), zap.Error(outcome.Cause))
			return nil, newRequestFailedError(outcome.StatusCode, outcome.Cause)
		}
	}

	callLogger.Error(retriesExhaustedLogMessageConstant)
	return nil, newMaxRetriesExceededError()
}

func (executor *RequestExecutor) attempt(callContext context.Context, method string, targetURL string, attemptIndex int) Outcome {
	attemptContext, cancelAttempt := context.WithTimeout(callContext, executor.attemptTimeout)
	defer cancelAttempt()

	request, requestError := http.NewRequestWithContext(attemptContext, method, targetURL, nil)
	if requestError != nil {
		return Outcome{Kind: OutcomeFatalRequestFailure, Cause: requestError}
	}
	executor.applyHeaders(request.Header)

	response, transportError := executor.httpClient.Do(request)
	if transportError != nil {
		return classifyTransportError(callContext, transportError)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		_, _ = io.CopyN(io.Discard, response.Body, discardedBodyLimitConstant)
		return classifyResponse(response.StatusCode, response.Header, nil, targetURL, attemptIndex, executor.backoffPolicy)
	}

	body, readError := io.ReadAll(response.Body)
	if readError != nil {
		return classifyTransportError(callContext, readError)
	}

	return classifyResponse(response.StatusCode, response.Header, body, targetURL, attemptIndex, executor.backoffPolicy)
}

func (executor *RequestExecutor) applyHeaders(header http.Header) {
	header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	header.Set(apiVersionHeaderNameConstant, apiVersionHeaderValueConstant)
	header.Set(userAgentHeaderNameConstant, userAgentHeaderValueConstant)
	if executor.HasCredential() {
		header.Set(authorizationHeaderNameConstant, fmt.Sprintf(authorizationHeaderTemplateConstant, executor.token))
	}
}

func normalizeBaseURL(rawBaseURL string) (string, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(rawBaseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return DefaultBaseURL, nil
	}

	parsedURL, parseError := url.Parse(trimmedBaseURL)
	if parseError != nil {
		return "", fmt.Errorf(invalidBaseURLTemplateConstant, rawBaseURL, parseError)
	}
	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return "", fmt.Errorf(invalidBaseURLTemplateConstant, rawBaseURL, fmt.Errorf(unsupportedBaseURLSchemeTemplateConstant, parsedURL.Scheme))
	}

	return trimmedBaseURL, nil
}

func validateRequestTarget(method string, path string) error {
	if len(method) == 0 {
		return InvalidInputError{FieldName: methodFieldNameConstant, Message: requestMethodRequiredMessageConstant}
	}
	if !strings.HasPrefix(path, "/") {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: fmt.Sprintf(requestPathInvalidTemplateConstant, path)}
	}
	return nil
}
