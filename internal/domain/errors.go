package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotParticipant    = errors.New("not a participant")
	ErrCallNotFound      = errors.New("call not found")
	ErrCallNotActive     = errors.New("call is not active")
	ErrUnavailable       = errors.New("user is not available for calls")
	ErrUserOffline       = errors.New("user is not online")
	ErrSelfCall          = errors.New("cannot call yourself")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrIllegalTransition = errors.New("illegal call status transition")
)
