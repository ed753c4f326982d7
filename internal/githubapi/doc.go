// Package githubapi is a small read-only client for the GitHub REST API.
//
// RequestExecutor issues each logical call with a bounded retry loop: rate
// limited responses (429/403) back off using Retry-After or an exponential
// schedule, connectivity failures back off exponentially, and 404/401 fail
// immediately. Every failure is an *APIError whose kind can be matched with
// errors.Is against the package sentinels. Client layers the repository and
// latest release lookups on top of the executor.
package githubapi
