package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrMalformedRecord = errors.New("malformed room record")
)

// UserMessage is the text shown to a player for a join failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found. Please check the code and try again."
	case errors.Is(err, ErrRoomFull):
		return "This room is already full."
	case errors.Is(err, ErrMalformedRecord):
		return "Room data could not be loaded."
	case err == nil:
		return ""
	default:
		return "Something went wrong. Please try again."
	}
}
