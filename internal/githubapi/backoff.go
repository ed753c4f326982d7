package githubapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	retryAfterHeaderNameConstant = "Retry-After"
	maximumBackoffShiftConstant  = 30
)

// BackoffPolicy computes delays between attempts of one logical call.
type BackoffPolicy struct {
	InitialBackoff time.Duration
}

// Exponential returns InitialBackoff * 2^attemptIndex.
func (policy BackoffPolicy) Exponential(attemptIndex int) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}
	if attemptIndex > maximumBackoffShiftConstant {
		attemptIndex = maximumBackoffShiftConstant
	}
	return policy.InitialBackoff * time.Duration(1<<uint(attemptIndex))
}

// RateLimitDelay prefers the server-declared Retry-After seconds and falls back
// to the exponential schedule when the header is absent or not an integer.
func (policy BackoffPolicy) RateLimitDelay(header http.Header, attemptIndex int) time.Duration {
	if declaredDelay, declared := parseRetryAfter(header); declared {
		return declaredDelay
	}
	return policy.Exponential(attemptIndex)
}

func parseRetryAfter(header http.Header) (time.Duration, bool) {
	if header == nil {
		return 0, false
	}
	headerValue := strings.TrimSpace(header.Get(retryAfterHeaderNameConstant))
	if len(headerValue) == 0 {
		return 0, false
	}
	seconds, parseError := strconv.Atoi(headerValue)
	if parseError != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
