package githubapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghconnect/internal/githubapi"
)

func TestBackoffPolicyExponential(testInstance *testing.T) {
	policy := githubapi.BackoffPolicy{InitialBackoff: time.Second}

	require.Equal(testInstance, time.Second, policy.Exponential(0))
	require.Equal(testInstance, 2*time.Second, policy.Exponential(1))
	require.Equal(testInstance, 4*time.Second, policy.Exponential(2))
	require.Equal(testInstance, time.Second, policy.Exponential(-1))
}

func TestBackoffPolicyRateLimitDelay(testInstance *testing.T) {
	policy := githubapi.BackoffPolicy{InitialBackoff: time.Second}

	testCases := []struct {
		name          string
		retryAfter    string
		attemptIndex  int
		expectedDelay time.Duration
	}{
		{name: "declared_seconds", retryAfter: "60", attemptIndex: 0, expectedDelay: 60 * time.Second},
		{name: "declared_zero", retryAfter: "0", attemptIndex: 2, expectedDelay: 0},
		{name: "declared_with_whitespace", retryAfter: " 5 ", attemptIndex: 1, expectedDelay: 5 * time.Second},
		{name: "absent_first_attempt", retryAfter: "", attemptIndex: 0, expectedDelay: time.Second},
		{name: "absent_second_attempt", retryAfter: "", attemptIndex: 1, expectedDelay: 2 * time.Second},
		{name: "http_date_falls_back", retryAfter: "Wed, 21 Oct 2015 07:28:00 GMT", attemptIndex: 1, expectedDelay: 2 * time.Second},
		{name: "negative_falls_back", retryAfter: "-3", attemptIndex: 0, expectedDelay: time.Second},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			header := http.Header{}
			if len(testCase.retryAfter) > 0 {
				header.Set("Retry-After", testCase.retryAfter)
			}
			require.Equal(testInstance, testCase.expectedDelay, policy.RateLimitDelay(header, testCase.attemptIndex))
		})
	}
}
