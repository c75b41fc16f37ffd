package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/johndosdos/murmur/internal/chat"
	"github.com/johndosdos/murmur/internal/model"
	"github.com/johndosdos/murmur/internal/session"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event")
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent maps a client frame to a room event for conn.
func DecodeEvent(conn session.ConnID, p []byte) (chat.Event, error) {
	var in inbound
	if err := json.Unmarshal(p, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch in.Event {
	case model.EventJoin:
		return chat.Join{Conn: conn}, nil

	case model.EventChatMessage:
		// A payload without a usable text field becomes an empty message,
		// which the room drops silently.
		var body model.ChatInput
		if err := json.Unmarshal(in.Data, &body); err != nil {
			body.Text = ""
		}
		return chat.ChatMessage{Conn: conn, Text: body.Text}, nil

	case model.EventTyping:
		return chat.Typing{Conn: conn}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, in.Event)
	}
}
