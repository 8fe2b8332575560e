package util

import gonanoid "github.com/matoous/go-nanoid/v2"

// NewCorrelationID returns a url-safe id used to trace a build job across
// the API server, the queue, and the worker logs.
func NewCorrelationID() string {
	id, err := gonanoid.New()
	if err != nil {
		// gonanoid only fails when the OS entropy source does.
		return "correlation-unavailable"
	}
	return id
}
