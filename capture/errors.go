package capture

import "errors"

// Sentinel errors for the capture lifecycle.
var (
	// ErrAlreadyCapturing is returned by Start while a capture is running.
	ErrAlreadyCapturing = errors.New("capture: window capture was already started")

	// ErrNotCapturing is returned by Stop when capture was never started.
	ErrNotCapturing = errors.New("capture: window capture cannot be stopped since it was never started")

	// ErrStopTimeout is returned when no frame arrived to observe the stop request in time.
	ErrStopTimeout = errors.New("capture: no new frames captured within the timeout period to properly stop")

	// ErrNoDisplay is returned when the requested display does not exist.
	ErrNoDisplay = errors.New("capture: display not found")

	// ErrWindowNotFound is returned when no window matches the configured name.
	ErrWindowNotFound = errors.New("capture: window not found")

	// ErrSourceClosed is returned when running a source that was closed.
	ErrSourceClosed = errors.New("capture: source closed")
)
