package engine

import "errors"

// Typed engine errors. Every operation fails with exactly one of these,
// wrapped with request context; callers branch with errors.Is.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotWinner              = errors.New("not a winning wager")
	ErrAlreadyClaimed         = errors.New("winnings already claimed")
	ErrNotFound               = errors.New("not found")
	ErrNotEmpty               = errors.New("funds still in play")
)
