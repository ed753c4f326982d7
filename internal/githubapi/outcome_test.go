package githubapi

import (
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	outcomeTestRequestURLConstant = "https://api.github.com/repos/octocat/hello-world"
)

func TestIsConnectivityFailure(testInstance *testing.T) {
	testCases := []struct {
		name           string
		transportError error
		expected       bool
	}{
		{
			name:           "connection_refused",
			transportError: &url.Error{Op: "Get", URL: outcomeTestRequestURLConstant, Err: syscall.ECONNREFUSED},
			expected:       true,
		},
		{
			name:           "unexpected_eof",
			transportError: &url.Error{Op: "Get", URL: outcomeTestRequestURLConstant, Err: io.ErrUnexpectedEOF},
			expected:       true,
		},
		{
			name:           "attempt_deadline",
			transportError: &url.Error{Op: "Get", URL: outcomeTestRequestURLConstant, Err: context.DeadlineExceeded},
			expected:       true,
		},
		{
			name:           "unknown_authority",
			transportError: &url.Error{Op: "Get", URL: outcomeTestRequestURLConstant, Err: x509.UnknownAuthorityError{}},
			expected:       false,
		},
		{
			name:           "unrelated_error",
			transportError: errors.New("unsupported protocol scheme"),
			expected:       false,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expected, isConnectivityFailure(testCase.transportError))
		})
	}
}
