// Package demo implements the three step walk-through of the GitHub client:
// a repository lookup, a latest release lookup and a lookup that is expected
// to fail with a not-found error. API failures are reported, never returned.
package demo
