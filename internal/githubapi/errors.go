package githubapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	resourceNotFoundTemplateConstant        = "Resource not found: %s"
	authenticationFailedMessageConstant     = "Authentication failed. Check your GITHUB_TOKEN"
	rateLimitExceededMessageConstant        = "GitHub API rate limit exceeded"
	rateLimitRetryAfterSuffixConstant       = ". Retry after %d seconds"
	networkErrorTemplateConstant            = "Network error: %s"
	requestFailedTemplateConstant           = "Request failed: %s"
	maxRetriesExceededMessageConstant       = "Max retries exceeded"
	invalidInputErrorTemplateConstant       = "%s: %s"
	resourceNotFoundSentinelMessageConstant = "github resource not found"
	authenticationSentinelMessageConstant   = "github authentication failed"
	rateLimitSentinelMessageConstant        = "github rate limit exceeded"
	networkSentinelMessageConstant          = "github network failure"
	genericAPISentinelMessageConstant       = "github api error"
	requesterNotConfiguredMessageConstant   = "github requester not configured"
)

// ErrorKind tags the classification carried by an APIError.
type ErrorKind int

// Error kinds surfaced by the request executor.
const (
	ErrorKindAPI ErrorKind = iota
	ErrorKindNotFound
	ErrorKindAuthentication
	ErrorKindRateLimit
	ErrorKindNetwork
)

var (
	// ErrGitHubAPI matches every APIError regardless of kind.
	ErrGitHubAPI = errors.New(genericAPISentinelMessageConstant)
	// ErrResourceNotFound matches 404 responses.
	ErrResourceNotFound = errors.New(resourceNotFoundSentinelMessageConstant)
	// ErrAuthentication matches 401 responses.
	ErrAuthentication = errors.New(authenticationSentinelMessageConstant)
	// ErrRateLimitExceeded matches rate limited calls that ran out of attempts.
	ErrRateLimitExceeded = errors.New(rateLimitSentinelMessageConstant)
	// ErrNetwork matches connectivity failures that ran out of attempts.
	ErrNetwork = errors.New(networkSentinelMessageConstant)
	// ErrRequesterNotConfigured indicates the client was constructed without a requester.
	ErrRequesterNotConfigured = errors.New(requesterNotConfiguredMessageConstant)
)

var errorKindSentinels = map[ErrorKind]error{
	ErrorKindNotFound:       ErrResourceNotFound,
	ErrorKindAuthentication: ErrAuthentication,
	ErrorKindRateLimit:      ErrRateLimitExceeded,
	ErrorKindNetwork:        ErrNetwork,
}

// APIError is the single error type returned by the executor. Kind selects the
// specialization; StatusCode is zero when no HTTP response was involved and
// RetryAfter is zero when the server did not declare one.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Cause      error
}

// Error returns the human-readable message.
func (apiError *APIError) Error() string {
	return apiError.Message
}

// Unwrap exposes the underlying transport or decoding failure.
func (apiError *APIError) Unwrap() error {
	return apiError.Cause
}

// Is matches the kind sentinels. ErrGitHubAPI matches every kind.
func (apiError *APIError) Is(target error) bool {
	if target == ErrGitHubAPI {
		return true
	}
	sentinel, known := errorKindSentinels[apiError.Kind]
	return known && target == sentinel
}

// RetryAfterSeconds reports the declared backoff in whole seconds.
func (apiError *APIError) RetryAfterSeconds() int {
	return int(apiError.RetryAfter / time.Second)
}

func newResourceNotFoundError(path string) *APIError {
	return &APIError{
		Kind:       ErrorKindNotFound,
		Message:    fmt.Sprintf(resourceNotFoundTemplateConstant, path),
		StatusCode: http.StatusNotFound,
	}
}

func newAuthenticationError() *APIError {
	return &APIError{
		Kind:       ErrorKindAuthentication,
		Message:    authenticationFailedMessageConstant,
		StatusCode: http.StatusUnauthorized,
	}
}

func newRateLimitExceededError(retryAfter time.Duration) *APIError {
	message := rateLimitExceededMessageConstant
	retryAfterSeconds := int(retryAfter / time.Second)
	if retryAfterSeconds > 0 {
		message += fmt.Sprintf(rateLimitRetryAfterSuffixConstant, retryAfterSeconds)
	}
	return &APIError{
		Kind:       ErrorKindRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

func newNetworkError(cause error) *APIError {
	return &APIError{
		Kind:    ErrorKindNetwork,
		Message: fmt.Sprintf(networkErrorTemplateConstant, cause),
		Cause:   cause,
	}
}

func newRequestFailedError(statusCode int, cause error) *APIError {
	return &APIError{
		Kind:       ErrorKindAPI,
		Message:    fmt.Sprintf(requestFailedTemplateConstant, cause),
		StatusCode: statusCode,
		Cause:      cause,
	}
}

func newMaxRetriesExceededError() *APIError {
	return &APIError{Kind: ErrorKindAPI, Message: maxRetriesExceededMessageConstant}
}

// IsNotFound reports whether err is a ResourceNotFound failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsRateLimited reports whether err is a RateLimitExceeded failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsNetwork reports whether err is a NetworkError failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// InvalidInputError surfaces validation issues for client operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}
