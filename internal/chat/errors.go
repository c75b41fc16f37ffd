package chat

import "errors"

// ErrRoomClosed is returned when submitting to a room whose Run loop has
// stopped.
var ErrRoomClosed = errors.New("room closed")
