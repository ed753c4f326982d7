// Package githubauth resolves the GitHub credential used by the API client.
//
// Resolution order is an explicit value, then the configured token source
// (env:NAME or file:/path), then the GH_TOKEN, GITHUB_TOKEN and
// GITHUB_API_TOKEN environment variables. Absence of a credential is not an
// error; the client falls back to unauthenticated access.
package githubauth
