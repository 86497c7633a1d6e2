package oracle

import "errors"

var (
	// ErrUninitialized is returned when a config slot is read before initialize
	ErrUninitialized = errors.New("contract is not initialized")

	// ErrUnauthorized is returned when the admin did not authorize the invocation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyInitialized accompanies ErrUnauthorized on a re-initialize attempt
	ErrAlreadyInitialized = errors.New("contract is already initialized")

	// ErrInvalidArgument is returned for malformed assets, prices or addresses
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNonMonotonicTimestamp is returned when an append would break timestamp order
	ErrNonMonotonicTimestamp = errors.New("timestamp is older than the last observation")

	// ErrCorruptState is returned when a stored slot cannot be decoded
	ErrCorruptState = errors.New("corrupt contract state")
)
