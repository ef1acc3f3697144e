package domain

import "errors"

var (
	// ErrCommunication is returned when a snapshot could not be exchanged with the aggregator.
	ErrCommunication = errors.New("communication error")
	// ErrTimeout indicates the aggregator did not answer within the allowed wait.
	ErrTimeout = errors.New("snapshot query timed out")
	// ErrInvalidConfig marks configuration values that cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrAlreadyRunning is returned when a single-run component is started twice.
	ErrAlreadyRunning = errors.New("already running")
)
