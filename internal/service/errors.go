package service

import "errors"

// Action errors returned synchronously to the caller. None of them mutate
// game state.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidPhase       = errors.New("action not allowed in current game phase")
	ErrConflict           = errors.New("conflicting request")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// ErrorCode maps an action error to the stable code sent to clients
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidPhase):
		return "INVALID_PHASE_TRANSITION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrPreconditionFailed):
		return "PRECONDITION_FAILED"
	default:
		return "INTERNAL"
	}
}
