package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

const (
	environmentFileReadErrorTemplateConstant  = "failed to read environment file %s: %w"
	environmentFileApplyErrorTemplateConstant = "failed to apply environment variable %s: %w"
)

// EnvironmentFileLoader applies KEY=VALUE assignments from a dotenv file to
// the process environment. Variables that are already set are left untouched.
type EnvironmentFileLoader struct {
	lookupEnvironment func(key string) (string, bool)
	setEnvironment    func(key string, value string) error
	pathExpander      func(string) string
}

// EnvironmentFileResult reports which variables were applied.
type EnvironmentFileResult struct {
	FilePath     string
	Found        bool
	AppliedKeys  []string
	RetainedKeys []string
}

// NewEnvironmentFileLoader constructs a loader bound to the process environment.
func NewEnvironmentFileLoader(pathExpander func(string) string) *EnvironmentFileLoader {
	return &EnvironmentFileLoader{
		lookupEnvironment: os.LookupEnv,
		setEnvironment:    os.Setenv,
		pathExpander:      pathExpander,
	}
}

// NewEnvironmentFileLoaderWithEnvironment constructs a loader with custom environment accessors.
func NewEnvironmentFileLoaderWithEnvironment(lookupEnvironment func(string) (string, bool), setEnvironment func(string, string) error) *EnvironmentFileLoader {
	loader := NewEnvironmentFileLoader(nil)
	if lookupEnvironment != nil {
		loader.lookupEnvironment = lookupEnvironment
	}
	if setEnvironment != nil {
		loader.setEnvironment = setEnvironment
	}
	return loader
}

// Load reads filePath when it exists. A blank path or a missing file is not an error.
func (loader *EnvironmentFileLoader) Load(filePath string) (EnvironmentFileResult, error) {
	resolvedFilePath := strings.TrimSpace(filePath)
	if len(resolvedFilePath) == 0 {
		return EnvironmentFileResult{}, nil
	}
	if loader.pathExpander != nil {
		resolvedFilePath = loader.pathExpander(resolvedFilePath)
	}

	result := EnvironmentFileResult{FilePath: resolvedFilePath}
	environment, readError := gotenv.Read(resolvedFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf(environmentFileReadErrorTemplateConstant, resolvedFilePath, readError)
	}
	result.Found = true

	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, alreadySet := loader.lookupEnvironment(key); alreadySet {
			result.RetainedKeys = append(result.RetainedKeys, key)
			continue
		}
		if setError := loader.setEnvironment(key, environment[key]); setError != nil {
			return result, fmt.Errorf(environmentFileApplyErrorTemplateConstant, key, setError)
		}
		result.AppliedKeys = append(result.AppliedKeys, key)
	}

	return result, nil
}
