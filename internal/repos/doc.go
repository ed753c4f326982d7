// Package repos implements the repository and release lookup commands.
//
// Payloads returned by the GitHub client are rendered either raw (json, yaml)
// or as a short text summary decoded from the payload with mapstructure.
package repos
