// Package execshell runs external tools such as the GitHub CLI. ShellExecutor
// logs each invocation and converts non-zero exit codes into typed errors;
// OSCommandRunner is the os/exec backed runner used outside tests.
package execshell
