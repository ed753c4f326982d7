package githubapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

const (
	unexpectedStatusTemplateConstant = "%d %s for url: %s"
	payloadDecodingTemplateConstant  = "decoding response payload: %w"
)

// OutcomeKind enumerates the classifications of a single attempt.
type OutcomeKind int

// Attempt classifications.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeUnauthorized
	OutcomeRateLimited
	OutcomeTransientNetworkFailure
	OutcomeFatalRequestFailure
)

// Payload is a decoded JSON object returned by the GitHub API.
type Payload map[string]any

// Outcome is the classification of one completed attempt. Only the fields
// relevant to Kind are populated.
type Outcome struct {
	Kind       OutcomeKind
	Payload    Payload
	StatusCode int
	RetryAfter time.Duration
	Cause      error
}

// classifyResponse maps a completed HTTP exchange onto an Outcome. The body is
// only inspected for 2xx responses.
func classifyResponse(statusCode int, header http.Header, body []byte, targetURL string, attemptIndex int, policy BackoffPolicy) Outcome {
	switch {
	case statusCode == http.StatusNotFound:
		return Outcome{Kind: OutcomeNotFound, StatusCode: statusCode}
	case statusCode == http.StatusUnauthorized:
		return Outcome{Kind: OutcomeUnauthorized, StatusCode: statusCode}
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusForbidden:
		return Outcome{
			Kind:       OutcomeRateLimited,
			StatusCode: statusCode,
			RetryAfter: policy.RateLimitDelay(header, attemptIndex),
		}
	case statusCode < 200 || statusCode >= 300:
		return Outcome{
			Kind:       OutcomeFatalRequestFailure,
			StatusCode: statusCode,
			Cause:      fmt.Errorf(unexpectedStatusTemplateConstant, statusCode, http.StatusText(statusCode), targetURL),
		}
	}

	payload := Payload{}
	if decodingError := json.Unmarshal(body, &payload); decodingError != nil {
		return Outcome{
			Kind:       OutcomeFatalRequestFailure,
			StatusCode: statusCode,
			Cause:      fmt.Errorf(payloadDecodingTemplateConstant, decodingError),
		}
	}

	return Outcome{Kind: OutcomeSuccess, StatusCode: statusCode, Payload: payload}
}

// classifyTransportError separates connectivity failures, which are retried,
// from request failures that no retry can fix. A cancelled caller context is
// always fatal.
func classifyTransportError(callContext context.Context, transportError error) Outcome {
	if callContext.Err() != nil {
		return Outcome{Kind: OutcomeFatalRequestFailure, Cause: callContext.Err()}
	}
	if isConnectivityFailure(transportError) {
		return Outcome{Kind: OutcomeTransientNetworkFailure, Cause: transportError}
	}
	return Outcome{Kind: OutcomeFatalRequestFailure, Cause: transportError}
}

func isConnectivityFailure(transportError error) bool {
	underlyingError := transportError
	var urlError *url.Error
	if errors.As(transportError, &urlError) {
		underlyingError = urlError.Err
	}

	if isCertificateFailure(underlyingError) {
		return false
	}
	if errors.Is(underlyingError, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(underlyingError, io.EOF) || errors.Is(underlyingError, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(underlyingError, syscall.ECONNREFUSED) || errors.Is(underlyingError, syscall.ECONNRESET) {
		return true
	}

	var networkError net.Error
	return errors.As(underlyingError, &networkError)
}

func isCertificateFailure(transportError error) bool {
	var verificationError *tls.CertificateVerificationError
	var unknownAuthorityError x509.UnknownAuthorityError
	var hostnameError x509.HostnameError
	var invalidCertificateError x509.CertificateInvalidError
	var recordHeaderError tls.RecordHeaderError
	return errors.As(transportError, &verificationError) ||
		errors.As(transportError, &unknownAuthorityError) ||
		errors.As(transportError, &hostnameError) ||
		errors.As(transportError, &invalidCertificateError) ||
		errors.As(transportError, &recordHeaderError)
}
