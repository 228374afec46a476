package syncengine

import "errors"

// Run rejection errors. A run that starts but fails inside the provider is
// not an error return; it completes with status=error and a written log.
var (
	// ErrBusy means a sync for this connection is already in flight
	ErrBusy = errors.New("sync already in progress for this connection")

	// ErrDisabled means the connection's kill-switch is off
	ErrDisabled = errors.New("connection is disabled")

	// ErrNotFound means no connection exists with the given id
	ErrNotFound = errors.New("connection not found")
)
