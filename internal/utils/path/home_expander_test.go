package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/ghconnect/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/octocat"

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "tilde_only", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidate: "~/.config/ghconnect/config.yaml", expectedPath: filepath.Join(testHomeDirectoryConstant, ".config/ghconnect/config.yaml")},
		{name: "absolute_path", candidate: "/etc/ghconnect.yaml", expectedPath: "/etc/ghconnect.yaml"},
		{name: "relative_path", candidate: ".env", expectedPath: ".env"},
		{name: "other_user", candidate: "~someone/.env", expectedPath: "~someone/.env"},
		{name: "empty", candidate: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderWithoutHomeDirectory(testInstance *testing.T) {
	providerCalls := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		providerCalls++
		return "", errors.New("no home")
	})

	require.Equal(testInstance, "~/.env", expander.Expand("~/.env"))
	require.Equal(testInstance, "~", expander.Expand("~"))
	require.Equal(testInstance, 1, providerCalls)

	var nilExpander *pathutils.HomeExpander
	require.Equal(testInstance, "~/.env", nilExpander.Expand("~/.env"))
}
