package command

import "errors"

var (
	// ErrUnknownCommand is returned for a command outside the routing
	// table. No state is mutated.
	ErrUnknownCommand = errors.New("command: unknown command")

	// ErrUnknownAction is returned for an unrecognized action within a
	// known command.
	ErrUnknownAction = errors.New("command: unknown action")

	// ErrHardwareUnavailable is returned when the routed collaborator
	// failed to initialize at startup.
	ErrHardwareUnavailable = errors.New("command: hardware unavailable")
)
