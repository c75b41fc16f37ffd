package model

// Outbound event names.
const (
	EventSetUsername = "set_username"
	EventHistory     = "history"
	EventSystem      = "system"
	EventChatMessage = "chat_message"
	EventTyping      = "typing"
)

// Inbound event names.
const (
	EventJoin = "join"
)

// Envelope is a single frame exchanged over the websocket, in both
// directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// SetUsername tells a connection which display name it was assigned.
type SetUsername struct {
	Username string `json:"username"`
}

// System is a presence notice broadcast to the room.
type System struct {
	Msg string    `json:"msg"`
	TS  Timestamp `json:"ts"`
}

// Typing announces that a member is composing a message.
type Typing struct {
	Username string `json:"username"`
}

// ChatInput is the client payload of a chat_message event.
type ChatInput struct {
	Text string `json:"text"`
}
