package core

import "errors"

var (
	// ErrSessionNotFound is returned for operations referencing an unknown
	// session id. Not retryable.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInactive is returned for joins on a session whose participant
	// set has emptied. Callers typically translate it into a boolean failure
	// and decide whether to create a new session.
	ErrSessionInactive = errors.New("session inactive")

	// ErrNoModel is returned when mockup generation is requested without a
	// configured model.
	ErrNoModel = errors.New("no model configured")
)
