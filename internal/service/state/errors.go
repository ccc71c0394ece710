package state

import "errors"

var (
	// ErrNoActiveUser means the operation needs a logged-in user and the scope has none
	ErrNoActiveUser = errors.New("no authenticated user")

	// ErrInvalidCredentials is a terminal authentication rejection
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput rejects blank required fields
	ErrInvalidInput = errors.New("invalid input")

	// ErrTeamExists means the user already leads a team
	ErrTeamExists = errors.New("team already created")

	// ErrStorage wraps session store failures
	ErrStorage = errors.New("session storage failure")

	// ErrPaymentFailed wraps payment provider failures
	ErrPaymentFailed = errors.New("payment failed")

	// ErrClosed is returned by operations on a State after Close
	ErrClosed = errors.New("state is closed")
)
