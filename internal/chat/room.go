// Package chat implements the single chat room: identity, history, duplicate
// suppression, sanitization and fan-out of room events.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johndosdos/murmur/internal/dedupe"
	"github.com/johndosdos/murmur/internal/history"
	"github.com/johndosdos/murmur/internal/model"
	"github.com/johndosdos/murmur/internal/sanitize"
	"github.com/johndosdos/murmur/internal/session"
)

// Placeholder names for connections that send before joining.
const (
	UnknownAuthor = "anonymous"
	UnknownTypist = "someone"
)

// Member is the outbound side of one connection. Deliver must not block; it
// reports false when the frame was dropped.
type Member interface {
	Deliver(env model.Envelope) bool
}

// Recorder observes room activity.
type Recorder interface {
	MessageAccepted()
	MessageSuppressed(reason string)
	DeliveryDropped()
	ConnectionsChanged(n int)
}

type nopRecorder struct{}

func (nopRecorder) MessageAccepted() {}
func (nopRecorder) MessageSuppressed(string) {}
func (nopRecorder) DeliveryDropped() {}
func (nopRecorder) ConnectionsChanged(int) {}

// Registration attaches a transport connection to the room. Done is closed
// once the room has recorded it.
type Registration struct {
	Conn   session.ConnID
	Member Member
	Done   chan struct{}
}

// Room contains the state of the single chat room. Connection and
// membership maps are owned by the Run goroutine; every event is handled
// there in the order it was admitted, which fixes the emission order seen by
// all members.
type Room struct {
	log      *slog.Logger
	sessions *session.Registry
	history  *history.Buffer
	dedupe   *dedupe.Suppressor
	renderer sanitize.TextRenderer
	recorder Recorder
	now      func() time.Time
	newID    func() string

	conns   map[session.ConnID]Member
	members map[session.ConnID]struct{}

	register chan Registration
	events   chan Event
	done     chan struct{}
}

// Option configures a Room.
type Option func(*Room)

// WithRecorder reports room activity to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Room) { r.recorder = rec }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Room) { r.now = now }
}

// WithIDs replaces the message id generator.
func WithIDs(newID func() string) Option {
	return func(r *Room) { r.newID = newID }
}

// WithInboundBuffer sets how many events may queue before Submit blocks.
func WithInboundBuffer(n int) Option {
	return func(r *Room) { r.events = make(chan Event, n) }
}

// NewRoom returns a new instance of Room.
func NewRoom(log *slog.Logger, renderer sanitize.TextRenderer, opts ...Option) *Room {
	r := &Room{
		log:      log,
		sessions: session.NewRegistry(),
		history:  history.NewBuffer(history.Capacity),
		dedupe:   dedupe.NewSuppressor(),
		renderer: renderer,
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
		conns:    make(map[session.ConnID]Member),
		members:  make(map[session.ConnID]struct{}),
		register: make(chan Registration),
		events:   make(chan Event, 1024),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run manages room traffic until ctx is cancelled.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case reg := <-r.register:
			r.attach(reg.Conn, reg.Member)
			close(reg.Done)

		case ev := <-r.events:
			r.handle(ev)

		case <-ctx.Done():
			r.log.Info("room stopped", "reason", ctx.Err())
			return
		}
	}
}

// Attach registers the outbound side of conn and waits until the room has
// recorded it.
func (r *Room) Attach(ctx context.Context, conn session.ConnID, m Member) error {
	reg := Registration{Conn: conn, Member: m, Done: make(chan struct{})}

	select {
	case r.register <- reg:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case <-reg.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomClosed
	}
}

// Submit admits ev to the room.
func (r *Room) Submit(ctx context.Context, ev Event) error {
	select {
	case r.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) attach(conn session.ConnID, m Member) {
	r.conns[conn] = m
	r.recorder.ConnectionsChanged(len(r.conns))
}

func (r *Room) handle(ev Event) {
	switch e := ev.(type) {
	case Join:
		r.onJoin(e)
	case ChatMessage:
		r.onChatMessage(e)
	case Typing:
		r.onTyping(e)
	case Disconnect:
		r.onDisconnect(e)
	default:
		r.log.Warn("unhandled room event", "conn", ev.conn())
	}
}

func (r *Room) onJoin(e Join) {
	name := r.sessions.ResolveOrAssign(e.Conn)
	r.members[e.Conn] = struct{}{}

	r.send(e.Conn, model.Envelope{
		Event: model.EventSetUsername,
		Data:  model.SetUsername{Username: name},
	})
	r.send(e.Conn, model.Envelope{
		Event: model.EventHistory,
		Data:  r.history.Snapshot(),
	})

	r.broadcast(model.Envelope{
		Event: model.EventSystem,
		Data: model.System{
			Msg: name + " entered the chat",
			TS:  model.NewTimestamp(r.now()),
		},
	}, "")

	r.log.Info("session joined", "conn", e.Conn, "username", name)
}

func (r *Room) onChatMessage(e ChatMessage) {
	name, ok := r.sessions.Lookup(e.Conn)
	if !ok {
		name = UnknownAuthor
	}

	text := strings.TrimSpace(e.Text)
	if text == "" {
		r.recorder.MessageSuppressed("empty")
		return
	}

	now := r.now()
	if !r.dedupe.ShouldAccept(e.Conn, text, now) {
		r.recorder.MessageSuppressed("duplicate")
		r.log.Debug("duplicate submission suppressed", "username", name, "text", text)
		return
	}

	msg := model.Message{
		ID:       r.newID(),
		Username: name,
		Text:     text,
		HTML:     r.renderer.Render(text),
		TS:       model.NewTimestamp(now),
	}
	r.history.Append(msg)

	r.broadcast(model.Envelope{Event: model.EventChatMessage, Data: msg}, "")
	r.recorder.MessageAccepted()

	r.log.Debug("message received", "username", name, "text", text)
}

func (r *Room) onTyping(e Typing) {
	name, ok := r.sessions.Lookup(e.Conn)
	if !ok {
		name = UnknownTypist
	}

	r.broadcast(model.Envelope{
		Event: model.EventTyping,
		Data:  model.Typing{Username: name},
	}, e.Conn)
}

func (r *Room) onDisconnect(e Disconnect) {
	name, ok := r.sessions.Remove(e.Conn)
	r.dedupe.Forget(e.Conn)
	delete(r.members, e.Conn)
	if _, attached := r.conns[e.Conn]; attached {
		delete(r.conns, e.Conn)
		r.recorder.ConnectionsChanged(len(r.conns))
	}

	if !ok {
		return
	}

	r.broadcast(model.Envelope{
		Event: model.EventSystem,
		Data: model.System{
			Msg: name + " left the chat",
			TS:  model.NewTimestamp(r.now()),
		},
	}, "")

	r.log.Info("session left", "conn", e.Conn, "username", name)
}

// send delivers env to conn alone, whether or not it has joined.
func (r *Room) send(conn session.ConnID, env model.Envelope) {
	m, ok := r.conns[conn]
	if !ok {
		return
	}
	if !m.Deliver(env) {
		r.dropped(conn, env)
	}
}

// broadcast delivers env to every member except the one named by skip.
func (r *Room) broadcast(env model.Envelope, skip session.ConnID) {
	for conn := range r.members {
		if conn == skip {
			continue
		}
		r.send(conn, env)
	}
}

func (r *Room) dropped(conn session.ConnID, env model.Envelope) {
	r.recorder.DeliveryDropped()
	r.log.Warn("skipping payload - channel full or client slow",
		"conn", conn,
		"event", env.Event)
}
