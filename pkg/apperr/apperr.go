// Package apperr defines the error kinds surfaced across the service
// boundary. Errors are wrapped with context via fmt.Errorf("%w: ...") and
// classified with errors.Is at the HTTP layer.
package apperr

import "errors"

var (
	// ErrInvalidInput marks malformed vectors or parameters. Caller error,
	// never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing node or graph id. Surfaced as 404.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks an embedding or content-source call that failed
	// after its bounded retry. Surfaced as 500.
	ErrUpstream = errors.New("upstream failure")

	// ErrBuildConflict marks a rebuild requested while another build is in
	// flight. Surfaced as 409.
	ErrBuildConflict = errors.New("build already in progress")
)
