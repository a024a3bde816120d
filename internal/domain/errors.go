// Package domain holds the sentinel errors shared across the service so that
// handlers can map failures to HTTP statuses with errors.Is.
package domain

import "errors"

var (
	// ErrRequestRunning rejects a new generation while one is in flight.
	ErrRequestRunning = errors.New("a request is already running")
	// ErrSceneIncomplete rejects a run the scene cannot support yet.
	ErrSceneIncomplete = errors.New("scene is not ready")
	// ErrProviderFailure wraps errors from the image provider.
	ErrProviderFailure = errors.New("provider failure")
)
