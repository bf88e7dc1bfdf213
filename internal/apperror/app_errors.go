package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room does not exist")
	ErrRoomFull        = errors.New("room is full")
	ErrNotInRoom       = errors.New("connection is not in the room")
	ErrMalformedEvent  = errors.New("malformed event")
	ErrUnknownAction   = errors.New("unknown action")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidScore    = errors.New("invalid score")
)
