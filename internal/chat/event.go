package chat

import "github.com/johndosdos/murmur/internal/session"

// Event is an inbound room event. The implementations in this file are the
// complete set; Room.handle switches over all of them.
type Event interface {
	conn() session.ConnID
	isEvent()
}

// Join asks for a display name, the recent history and membership.
type Join struct {
	Conn session.ConnID
}

// ChatMessage submits raw user text.
type ChatMessage struct {
	Conn session.ConnID
	Text string
}

// Typing signals that the sender is composing.
type Typing struct {
	Conn session.ConnID
}

// Disconnect is raised by the transport when a connection goes away.
type Disconnect struct {
	Conn session.ConnID
}

func (e Join) conn() session.ConnID { return e.Conn }
func (e ChatMessage) conn() session.ConnID { return e.Conn }
func (e Typing) conn() session.ConnID { return e.Conn }
func (e Disconnect) conn() session.ConnID { return e.Conn }

func (Join) isEvent() {}
func (ChatMessage) isEvent() {}
func (Typing) isEvent() {}
func (Disconnect) isEvent() {}
